package tag

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"taskManager/internal/models"

	"github.com/google/uuid"
)

const MaxNameLength = 50

const DefaultColor = "#4ECDC4"

var hexColorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

type Tag struct {
	ID        uuid.UUID `json:"id" db:"id"`
	OwnerID   uuid.UUID `json:"-" db:"owner_id"`
	Name      string    `json:"name" db:"name"`
	Color     string    `json:"color" db:"color"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// TaskCount is filled by list queries only.
	TaskCount int `json:"task_count" db:"-"`
}

func IsHexColor(color string) bool {
	return hexColorPattern.MatchString(color)
}

func NormalizeName(name string) string {
	return strings.TrimSpace(name)
}

// Validate checks the fields a tag owns by itself. Uniqueness needs the store
// and is checked by the tag service.
func (t *Tag) Validate() models.FieldErrors {
	var errs models.FieldErrors

	t.Name = NormalizeName(t.Name)
	switch {
	case t.Name == "":
		errs.Add("name", "Tag name cannot be empty.")
	case utf8.RuneCountInString(t.Name) > MaxNameLength:
		errs.Add("name", "Tag name is too long (maximum 50 characters).")
	}

	if !IsHexColor(t.Color) {
		errs.Add("color", "Color must be a valid hex code (e.g., #FF6B6B).")
	}
	return errs
}

// CompareNames orders names case-insensitively, falling back to byte order
// so the result is total. PostgreSQL queries sort with
// lower(name) COLLATE "C", name COLLATE "C" to match.
func CompareNames(a, b string) int {
	if c := strings.Compare(strings.ToLower(a), strings.ToLower(b)); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

// SameName reports a case-insensitive name match.
func SameName(a, b string) bool {
	return strings.EqualFold(NormalizeName(a), NormalizeName(b))
}
