package reputation

import "errors"

var (
	ErrPlayerNotFound = errors.New("player not found")
	// ErrNotSaved signals a report that was folded in memory but whose state
	// could not be persisted.
	ErrNotSaved = errors.New("state not saved")
)

// FieldError rejects a report naming the offending field
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}

func fieldError(field, message string) *FieldError {
	return &FieldError{Field: field, Message: message}
}
