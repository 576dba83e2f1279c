package api

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Error carries the human-readable message plus whatever diagnostic context
// the server supplied. Transport failures and application-level rejections
// both surface through it, per the single-error-taxonomy policy.
type Error struct {
	Message string
	Status  int
	Details json.RawMessage
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
	}
	return e.Message
}

// IsNotFound reports whether err is an API error with a 404 status
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == 404
}
