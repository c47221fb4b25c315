package user

import (
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"taskManager/internal/models"

	"github.com/google/uuid"
)

const MaxUsernameLength = 150

type User struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	Username  string    `json:"username" db:"username"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

func (u *User) Validate() models.FieldErrors {
	var errs models.FieldErrors

	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.Username = strings.TrimSpace(u.Username)

	if u.Email == "" {
		errs.Add("email", "Email is required.")
	} else if addr, err := mail.ParseAddress(u.Email); err != nil || addr.Address != u.Email {
		errs.Add("email", "Enter a valid email address.")
	}

	switch {
	case u.Username == "":
		errs.Add("username", "Username is required.")
	case utf8.RuneCountInString(u.Username) > MaxUsernameLength:
		errs.Add("username", "Username is too long (maximum 150 characters).")
	}
	return errs
}
