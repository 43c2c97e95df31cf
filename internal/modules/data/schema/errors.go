package schema

import "strings"

// FieldError names one offending field on a rejected constructor call.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationError collects every FieldError a constructor found in one
// pass, so a caller sees all offending fields instead of only the first.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Error())
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add appends a field error and returns the receiver for chaining.
func (e *ValidationError) Add(field, message string) *ValidationError {
	e.Errors = append(e.Errors, FieldError{Field: field, Message: message})
	return e
}

// HasErrors reports whether any field errors were collected.
func (e *ValidationError) HasErrors() bool {
	return e != nil && len(e.Errors) > 0
}

// OrNil returns e as an error, or nil if it collected no field errors --
// the pattern every constructor in this package ends on.
func (e *ValidationError) OrNil() error {
	if !e.HasErrors() {
		return nil
	}
	return e
}
