package summarize

import (
	"errors"
	"fmt"
)

// Kind classifies an unrecoverable summarization failure.
type Kind string

const (
	KindInvalidSettings Kind = "invalid_settings"
	KindSingleShot      Kind = "single_shot_failed"
	KindAllChunksFailed Kind = "all_chunks_failed"
	KindFinalCombine    Kind = "final_combine_failed"
)

var (
	// ErrNoChunkSummaries is the cause when every chunk request failed.
	ErrNoChunkSummaries = errors.New("no chunk summaries produced")
	// ErrEmptySummary is the cause when the model answered with nothing usable.
	ErrEmptySummary = errors.New("empty or placeholder summary")
)

// Error is the only failure Summarize returns. Capacity errors and single
// chunk failures are recovered internally and never surface here.
type Error struct {
	Kind  Kind
	Cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("summarization failed (%s): %v", e.Kind, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// IsError reports whether err is a summarization failure and returns it.
func IsError(err error) (*Error, bool) {
	var sumErr *Error
	if errors.As(err, &sumErr) {
		return sumErr, true
	}
	return nil, false
}
