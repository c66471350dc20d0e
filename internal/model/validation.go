package model

import "strings"

// ValidationError reports a malformed or missing request field. It is always
// detected before any storage mutation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return invalid(field, field+" required")
	}
	return nil
}

// Page limits list queries. A zero Limit means no limit.
type Page struct {
	Limit  int
	Offset int
}

// MaxPageSize caps the page size a client can request.
const MaxPageSize = 500
