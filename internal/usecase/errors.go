package usecase

import (
	"errors"
	"fmt"

	"service-marketplace/pkg/utils"

	"github.com/google/uuid"
)

var (
	ErrDuplicateReview      = errors.New("booking has already been reviewed")
	ErrProviderNotFound     = errors.New("provider not found")
	ErrBookingNotFound      = errors.New("booking not found")
	ErrServiceNotFound      = errors.New("service not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrReviewNotFound       = errors.New("review not found")
	ErrBookingNotReviewable = errors.New("booking is not completed")
	ErrInvalidTransition    = errors.New("status transition not allowed")
	ErrForbidden            = errors.New("not allowed to act on this resource")
	ErrConflict             = errors.New("resource already exists")
)

// ValidationError reports malformed input, keyed by JSON field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + utils.FormatValidationErrors(e.Fields)
}

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// validate runs the struct tags and wraps any failures.
func validate(req any) error {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

func parseID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, newValidationError(field, fmt.Sprintf("Must be a valid UUID, got %q", raw))
	}
	return id, nil
}
