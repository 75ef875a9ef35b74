package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrProductNotFound is returned when no product matches the requested id.
var ErrProductNotFound = errors.New("product not found")

// FailureKind classifies a single field validation failure.
type FailureKind string

const (
	KindRequired        FailureKind = "Required"
	KindTooLong         FailureKind = "TooLong"
	KindDuplicate       FailureKind = "Duplicate"
	KindInvalidCategory FailureKind = "InvalidCategory"
	KindOutOfRange      FailureKind = "OutOfRange"
	KindInvalidURL      FailureKind = "InvalidUrl"
)

// FieldError is one failed rule for one field.
type FieldError struct {
	Field   string
	Kind    FailureKind
	Message string
}

// ValidationError collects every failed rule of a submission in rule order.
type ValidationError struct {
	Errors []FieldError
}

// Error implements the error interface for ValidationError
func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Fields returns the failing field names in the order they first failed.
func (e *ValidationError) Fields() []string {
	var fields []string
	seen := make(map[string]bool)
	for _, fe := range e.Errors {
		if !seen[fe.Field] {
			seen[fe.Field] = true
			fields = append(fields, fe.Field)
		}
	}
	return fields
}

// Messages groups failure messages by field.
func (e *ValidationError) Messages() map[string][]string {
	out := make(map[string][]string)
	for _, fe := range e.Errors {
		out[fe.Field] = append(out[fe.Field], fe.Message)
	}
	return out
}

// Has reports whether field failed with kind.
func (e *ValidationError) Has(field string, kind FailureKind) bool {
	for _, fe := range e.Errors {
		if fe.Field == field && fe.Kind == kind {
			return true
		}
	}
	return false
}

// DatabaseError wraps a store failure together with the category being queried.
type DatabaseError struct {
	Category string
	Err      error
}

// Error implements the error interface for DatabaseError
func (e *DatabaseError) Error() string {
	return fmt.Sprintf("database failure (category=%s): %v", e.Category, e.Err)
}

func (e *DatabaseError) Unwrap() error {
	return e.Err
}

// IsValidationError checks if an error is a ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsDatabaseError checks if an error is a DatabaseError
func IsDatabaseError(err error) bool {
	var de *DatabaseError
	return errors.As(err, &de)
}
