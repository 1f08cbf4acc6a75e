package client

import (
	"errors"
	"fmt"
)

var (
	// ErrUnexpectedStatusCode is wrapped by the [Error] returned when the
	// configured status validator rejects a response.
	ErrUnexpectedStatusCode = errors.New("unexpected status code")
	// ErrAuthFailure is joined with [ErrUnexpectedStatusCode] when the server
	// responds with 401 Unauthorized or 403 Forbidden.
	ErrAuthFailure = errors.New("auth failure")
	// ErrTimeout is wrapped when a request exceeded its configured timeout.
	ErrTimeout = errors.New("timeout exceeded")
	// ErrMaxContentLength is wrapped when a response body exceeds MaxContentLength.
	ErrMaxContentLength = errors.New("max content length exceeded")
	// ErrMaxBodyLength is wrapped when a request body exceeds MaxBodyLength.
	ErrMaxBodyLength = errors.New("max body length exceeded")
	// ErrInvalidBody is wrapped when transformed request data cannot be sent.
	ErrInvalidBody = errors.New("invalid request body")
	// ErrNilConfig is returned when a request interceptor yields no configuration.
	ErrNilConfig = errors.New("nil request config")
	// ErrHandlerPanic is wrapped when an interceptor panics.
	ErrHandlerPanic = errors.New("interceptor panic")
)

// Error codes set on [Error.Code].
const (
	CodeAborted     = "ECONNABORTED"
	CodeBadResponse = "ERR_BAD_RESPONSE"
	CodeNetwork     = "ERR_NETWORK"
	CodeBadRequest  = "ERR_BAD_REQUEST"
)

// Error is a transport failure. Response is set when the failure
// originates from a received response.
type Error struct {
	Message  string
	Code     string
	Config   *Config
	Response *Response
	Err      error
}

func (e *Error) Error() string {
	if e.Err == nil || e.Message == e.Err.Error() {
		return e.Message
	}

	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ResponseFromError returns the response embedded in err, if any.
func ResponseFromError(err error) (*Response, bool) {
	var e *Error
	if errors.As(err, &e) && e.Response != nil {
		return e.Response, true
	}

	return nil, false
}
