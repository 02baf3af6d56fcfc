package persona

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptySeed is returned when the caller supplies a blank seed.
	ErrEmptySeed = errors.New("seed persona is empty")

	// ErrTransport wraps a *llm.TransportError that aborted a generation.
	// Transport failures are never retried by the core.
	ErrTransport = errors.New("generative service transport failure")

	// ErrGenerationExhausted means no attempt produced any usable content.
	ErrGenerationExhausted = errors.New("generation exhausted without a result")

	// ErrValidationDegraded marks a best-effort document returned after the
	// attempt budget ran out.
	ErrValidationDegraded = errors.New("document failed validation; best-effort result returned")
)

// ParseError means the candidate payload was not a JSON object.
type ParseError struct {
	Attempt int
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("attempt %d: candidate is not a JSON object: %v", e.Attempt, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// SchemaIncompleteError means valid JSON was missing required structure.
type SchemaIncompleteError struct {
	Attempt int
	Outcome ValidationOutcome
}

func (e *SchemaIncompleteError) Error() string {
	return fmt.Sprintf("attempt %d: %s: %s", e.Attempt, e.Outcome.FailurePath, e.Outcome.Reason)
}
