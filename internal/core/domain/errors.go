package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Operational errors. The HTTP error handler maps each one to a status code
// and a message that is safe to show to clients.
var (
	ErrNotFound                 = errors.New("no document found with that id")
	ErrInvalidID                = errors.New("invalid id")
	ErrForbidden                = errors.New("access forbidden")
	ErrUserNotFound             = errors.New("user not found")
	ErrMissingCredentials       = errors.New("email and password are required")
	ErrInvalidCredentials       = errors.New("invalid credentials")
	ErrIncorrectPassword        = errors.New("current password is wrong")
	ErrPasswordMismatch         = errors.New("passwords are not the same")
	ErrPasswordUpdateNotAllowed = errors.New("password updates are not allowed on this route")
	ErrUnauthenticated          = errors.New("not logged in")
	ErrInvalidToken             = errors.New("invalid token")
	ErrExpiredToken             = errors.New("token has expired")
	ErrTokenUserGone            = errors.New("user belonging to this token no longer exists")
	ErrPasswordChanged          = errors.New("user recently changed password")
	ErrInvalidResetToken        = errors.New("token is invalid or has expired")
	ErrNotificationFailed       = errors.New("notification delivery failed")
	ErrInvalidWebhookSignature  = errors.New("invalid webhook signature")
	ErrCheckoutSessionNotFound  = errors.New("checkout session not found")
)

// ValidationError carries one message per offending field.
type ValidationError struct {
	Messages []string
}

func NewValidationError(msgs ...string) *ValidationError {
	return &ValidationError{Messages: msgs}
}

func (e *ValidationError) Error() string {
	return "invalid input data: " + strings.Join(e.Messages, "; ")
}

// DuplicateError reports a unique-index violation.
type DuplicateError struct {
	Field string
	Value string
}

func (e *DuplicateError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("duplicate value for %s", e.Field)
	}
	return fmt.Sprintf("duplicate value for %s: %s", e.Field, e.Value)
}
