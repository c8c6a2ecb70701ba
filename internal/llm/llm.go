package llm

import (
	"context"
	"errors"
	"fmt"
)

// Request is a single prompt exchange with a language model.
type Request struct {
	Prompt          string
	MaxOutputTokens int
	Model           string
}

// Response carries the model's reply text.
type Response struct {
	Content string
}

// Client is a minimal LLM interface to allow pluggable providers.
// Implementations report an oversized input as *CapacityError; every other
// failure is returned as-is.
type Client interface {
	Complete(ctx context.Context, req Request) (Response, error)
}

// ErrCapacityExceeded matches any *CapacityError through errors.Is.
var ErrCapacityExceeded = errors.New("llm: input exceeds model capacity")

// CapacityError reports that the prompt exceeded the model's input limit.
// RequestedTokens is the size the service said it received, or 0 if unknown.
type CapacityError struct {
	RequestedTokens int
	Err             error
}

func (e *CapacityError) Error() string {
	if e.RequestedTokens > 0 {
		return fmt.Sprintf("%s (requested %d tokens)", ErrCapacityExceeded, e.RequestedTokens)
	}
	return ErrCapacityExceeded.Error()
}

func (e *CapacityError) Unwrap() error { return e.Err }

func (e *CapacityError) Is(target error) bool { return target == ErrCapacityExceeded }

// AsCapacity extracts a *CapacityError from err's chain.
func AsCapacity(err error) (*CapacityError, bool) {
	var capErr *CapacityError
	if errors.As(err, &capErr) {
		return capErr, true
	}
	return nil, false
}
