package apiclient

import (
	"errors"
	"net/http"
)

// ErrUnauthorized is matched by any error caused by a 401 response.
var ErrUnauthorized = errors.New("apiclient: unauthorized")

const unexpectedMessage = "An unexpected error occurred"

// Kind classifies a failed call.
type Kind string

const (
	KindNetwork    Kind = "network"
	KindResponse   Kind = "response"
	KindValidation Kind = "validation"
)

// Error is the single error type returned by Client methods.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return "apiclient: " + string(e.Kind) + " " + http.StatusText(e.Status) + ": " + e.Message
	}
	return "apiclient: " + string(e.Kind) + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// UserMessage returns the message shown to the user.
func (e *Error) UserMessage() string { return e.Message }

func validationError(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func networkError(err error) *Error {
	msg := unexpectedMessage
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return &Error{Kind: KindNetwork, Message: msg, Err: err}
}

func responseError(status int, msg string) *Error {
	if msg == "" {
		msg = http.StatusText(status)
	}
	if msg == "" {
		msg = unexpectedMessage
	}
	e := &Error{Kind: KindResponse, Status: status, Message: msg}
	if status == http.StatusUnauthorized {
		e.Err = ErrUnauthorized
	}
	return e
}

// IsUnauthorized reports whether err was caused by a 401 response.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// Message returns the human-readable message for any error.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return unexpectedMessage
}
