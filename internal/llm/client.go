// Package llm talks to the external generative text service.
//
// A Client performs exactly one outbound call per Generate. It never retries
// and never caches: every completion is sampled, so two identical requests are
// not interchangeable. Retry policy lives with the caller.
package llm

import (
	"context"
	"errors"
	"fmt"
)

// Client sends a prompt to a generative text service and returns raw text.
type Client interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Request is one completion call. Build a fresh Request per attempt.
type Request struct {
	SystemInstruction string
	UserPrompt        string
	Model             string
	// Temperature is optional; nil leaves the provider default.
	Temperature *float64
}

// Temperature returns a pointer for Request.Temperature.
func Temperature(t float64) *float64 {
	return &t
}

// TransportError reports a network or HTTP failure talking to the service.
// StatusCode is zero when no response was received.
type TransportError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Body != "":
		return fmt.Sprintf("generative service returned status %d: %s", e.StatusCode, e.Body)
	case e.StatusCode != 0:
		return fmt.Sprintf("generative service returned status %d", e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("generative service request failed: %v", e.Err)
	}
	return "generative service request failed"
}

func (e *TransportError) Unwrap() error { return e.Err }

// UnexpectedError covers everything that is not a transport failure:
// undecodable bodies, empty choices, provider-side error payloads.
type UnexpectedError struct {
	Err error
}

func (e *UnexpectedError) Error() string {
	return fmt.Sprintf("unexpected generative service failure: %v", e.Err)
}

func (e *UnexpectedError) Unwrap() error { return e.Err }

// IsTransport reports whether err is (or wraps) a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// transportFromContext turns a context expiry into a TransportError so
// per-attempt deadlines are handled like any other transport failure.
func transportFromContext(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return &TransportError{Err: ctxErr}
	}
	return &TransportError{Err: err}
}
