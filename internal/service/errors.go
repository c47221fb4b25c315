package service

import (
	"fmt"

	"taskManager/internal/models"
)

const (
	CodeNotFound     = "NOT_FOUND"
	CodeValidation   = "VALIDATION_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
)

type Resource string

const (
	ResourceTask Resource = "task"
	ResourceTag  Resource = "tag"
	ResourceUser Resource = "user"
)

type BusinessError struct {
	Code    string
	Message string
	Details map[string]any
	Err     error
}

func (b *BusinessError) Error() string {
	if b.Err != nil {
		return fmt.Sprintf("[%s] %s: %s", b.Code, b.Message, b.Err.Error())
	}
	return fmt.Sprintf("[%s] %s", b.Code, b.Message)
}

func (b *BusinessError) Unwrap() error {
	return b.Err
}

// NewNotFound is also used for records owned by someone else, so callers
// cannot probe for other users' ids.
func NewNotFound(resource Resource, id string) *BusinessError {
	return &BusinessError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s %s not found", resource, id),
		Details: map[string]any{
			"resource": resource,
			"id":       id,
		},
	}
}

func NewValidationError(field, reason string) *BusinessError {
	var errs models.FieldErrors
	errs.Add(field, reason)
	return NewValidationErrors(errs)
}

func NewValidationErrors(errs models.FieldErrors) *BusinessError {
	return &BusinessError{
		Code:    CodeValidation,
		Message: "invalid input",
		Details: map[string]any{
			"fields": errs.ByField(),
		},
		Err: errs,
	}
}

func NewUnauthorized(reason string) *BusinessError {
	return &BusinessError{
		Code:    CodeUnauthorized,
		Message: reason,
		Details: map[string]any{},
	}
}
