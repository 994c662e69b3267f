package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the stable failure kinds every operation can yield.
var (
	ErrUnauthenticated    = errors.New("authentication required")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("access forbidden")
	ErrNoteNotFound       = errors.New("note not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrShareNotFound      = errors.New("share entry not found")
	ErrUserExists         = errors.New("user already exists")
)

// ValidationError reports malformed input, naming the offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validationf builds a ValidationError for a field.
func Validationf(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// BannedError is the Forbidden variant for banned callers. It carries the ban
// reason so the client can display it, plus the machine code USER_BANNED.
type BannedError struct {
	Reason string
}

func (e *BannedError) Error() string {
	if e.Reason == "" {
		return "account is banned"
	}
	return "account is banned: " + e.Reason
}

// Code returns the stable machine-readable code for this failure.
func (e *BannedError) Code() string { return "USER_BANNED" }
