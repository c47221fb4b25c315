package postgres

import (
	"context"
	"fmt"
	"time"

	"taskManager/internal/models/user"
	repo "taskManager/internal/repository"

	"github.com/google/uuid"
)

func (s *Storage) CreateUser(ctx context.Context, u *user.User) error {
	start := time.Now()
	defer observe("create_user", start)

	_, err := s.pool.Exec(ctx, `INSERT INTO users (id, email, username, created_at) VALUES ($1, $2, $3, $4)`,
		u.ID, u.Email, u.Username, u.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating user: %w", mapError(err))
	}
	return nil
}

func (s *Storage) GetUser(ctx context.Context, id uuid.UUID) (*user.User, error) {
	u := &user.User{}
	err := s.pool.QueryRow(ctx, `SELECT id, email, username, created_at FROM users WHERE id = $1`, id).
		Scan(&u.ID, &u.Email, &u.Username, &u.CreatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return u, nil
}

func (s *Storage) UserTaken(ctx context.Context, email, username string) (bool, bool, error) {
	var emailTaken, usernameTaken bool
	err := s.pool.QueryRow(ctx, `SELECT
			EXISTS (SELECT 1 FROM users WHERE LOWER(email) = LOWER($1)),
			EXISTS (SELECT 1 FROM users WHERE username = $2)`, email, username).
		Scan(&emailTaken, &usernameTaken)
	if err != nil {
		return false, false, fmt.Errorf("checking user: %w", err)
	}
	return emailTaken, usernameTaken, nil
}

// DeleteUser relies on ON DELETE CASCADE for the user's tags and tasks.
func (s *Storage) DeleteUser(ctx context.Context, id uuid.UUID) error {
	start := time.Now()
	defer observe("delete_user", start)

	cmd, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}
