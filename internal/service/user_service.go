package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskManager/internal/logger"
	"taskManager/internal/models"
	"taskManager/internal/models/user"
	rep "taskManager/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UserService struct {
	repo UserRepository
	now  func() time.Time
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{repo: repo, now: time.Now}
}

func (s *UserService) Register(ctx context.Context, email, username string) (*user.User, error) {
	u := &user.User{
		ID:        uuid.New(),
		Email:     email,
		Username:  username,
		CreatedAt: s.now(),
	}
	if errs := u.Validate(); !errs.Empty() {
		return nil, NewValidationErrors(errs)
	}

	emailTaken, usernameTaken, err := s.repo.UserTaken(ctx, u.Email, u.Username)
	if err != nil {
		return nil, fmt.Errorf("checking user: %w", err)
	}
	if errs := takenErrors(emailTaken, usernameTaken); !errs.Empty() {
		return nil, NewValidationErrors(errs)
	}

	if err := s.repo.CreateUser(ctx, u); err != nil {
		if errors.Is(err, rep.ErrConflict) {
			return nil, NewValidationError("username", "A user with that email or username already exists.")
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	logger.Info("Service: user registered", zap.String("user_id", u.ID.String()))
	return u, nil
}

func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*user.User, error) {
	u, err := s.repo.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return nil, NewNotFound(ResourceUser, id.String())
		}
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return u, nil
}

// DeleteUser removes the user together with every tag and task they own.
func (s *UserService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return NewNotFound(ResourceUser, id.String())
		}
		return fmt.Errorf("deleting user: %w", err)
	}
	logger.Info("Service: user deleted", zap.String("user_id", id.String()))
	return nil
}

func takenErrors(emailTaken, usernameTaken bool) models.FieldErrors {
	var errs models.FieldErrors
	if emailTaken {
		errs.Add("email", "A user with that email already exists.")
	}
	if usernameTaken {
		errs.Add("username", "A user with that username already exists.")
	}
	return errs
}
