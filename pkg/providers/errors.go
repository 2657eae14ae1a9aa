package providers

import (
	"fmt"
	"strings"
)

// APIError is returned when the provider answers with an explicit error
// envelope ({"type": "ERROR", "message": ...}).
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("trenitalia api error (status %d): %s", e.Status, e.Message)
}

// DecodeError reports a response record that lacks a required field or
// carries a malformed one.
type DecodeError struct {
	Record string
	Field  string
	Err    error
}

func (e *DecodeError) Error() string {
	var b strings.Builder
	b.WriteString("decode ")
	b.WriteString(e.Record)
	if e.Field != "" {
		fmt.Fprintf(&b, ": field %q", e.Field)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *DecodeError) Unwrap() error { return e.Err }
