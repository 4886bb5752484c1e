package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ErrValidation is matched by every *ValidationError.
var ErrValidation = errors.New("input validation failed")

// Issue describes one mismatched field.
type Issue struct {
	// Path is a JSON pointer to the offending value ("" for the root).
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ValidationError reports input that does not match a schema.
type ValidationError struct {
	SchemaID string
	Issues   []Issue
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return fmt.Sprintf("%s: %s", e.SchemaID, ErrValidation)
	}

	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		path := issue.Path
		if path == "" {
			path = "/"
		}
		parts = append(parts, path+": "+issue.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.SchemaID, ErrValidation, strings.Join(parts, "; "))
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError builds a ValidationError with a single issue.
func NewValidationError(schemaID, path, message string) *ValidationError {
	return &ValidationError{
		SchemaID: schemaID,
		Issues:   []Issue{{Path: path, Message: message}},
	}
}

// IsValidationError reports whether err is, or wraps, a validation failure.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}
