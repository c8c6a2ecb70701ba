// Package pipeline runs the caption → transcript → summary flow for single
// videos and for sequential batches.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"caption-digest/internal/captions"
	"caption-digest/internal/summarize"
	"caption-digest/internal/transcript"
)

// Summarizer produces a summary for a cleaned transcript.
type Summarizer interface {
	Summarize(ctx context.Context, transcript string, s summarize.Settings) (summarize.Result, error)
}

// Outcome is the result of processing one video. Failed outcomes carry the
// placeholder summary and the error that caused it.
type Outcome struct {
	VideoID      string
	Transcript   string
	Summary      string
	Degraded     bool
	Chunks       int
	FailedChunks []int
	Failed       bool
	Err          error
}

// Runner takes videos from captions to a summary.
type Runner struct {
	source     captions.Source
	summarizer Summarizer
	settings   summarize.Settings
	log        *slog.Logger
}

// NewRunner builds a Runner. A nil logger discards output.
func NewRunner(source captions.Source, summarizer Summarizer, settings summarize.Settings, log *slog.Logger) *Runner {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Runner{source: source, summarizer: summarizer, settings: settings, log: log}
}

// Process fetches, cleans and summarizes one video. It never returns an
// error; failures are reported in the Outcome.
func (r *Runner) Process(ctx context.Context, videoID string) Outcome {
	log := r.log.With("video_id", videoID)
	out := Outcome{VideoID: videoID}

	items, err := r.source.Captions(ctx, videoID)
	if err != nil {
		return r.fail(log, out, fmt.Errorf("fetch captions: %w", err))
	}
	out.Transcript = transcript.Prepare(items)
	if out.Transcript == "" {
		return r.fail(log, out, captions.ErrNoCaptions)
	}

	res, err := r.summarizer.Summarize(ctx, out.Transcript, r.settings)
	if err != nil {
		return r.fail(log, out, err)
	}
	out.Summary = res.Text
	out.Degraded = res.Degraded
	out.Chunks = res.Chunks
	out.FailedChunks = res.FailedChunks
	log.Info("video summarized", "degraded", res.Degraded, "chunks", res.Chunks)
	return out
}

func (r *Runner) fail(log *slog.Logger, out Outcome, err error) Outcome {
	log.Error("video failed, substituting placeholder", "err", err)
	out.Summary = summarize.Placeholder
	out.Failed = true
	out.Err = err
	return out
}

// ProcessBatch handles videos strictly one after another. A failed video
// never stops the batch. each, when set, is called after every video.
func (r *Runner) ProcessBatch(ctx context.Context, videoIDs []string, each func(Outcome)) []Outcome {
	outcomes := make([]Outcome, 0, len(videoIDs))
	for i, id := range videoIDs {
		r.log.Debug("processing video", "video_id", id, "position", i+1, "total", len(videoIDs))
		out := r.Process(ctx, id)
		if each != nil {
			each(out)
		}
		outcomes = append(outcomes, out)
	}
	return outcomes
}

// Failures counts failed outcomes.
func Failures(outcomes []Outcome) int {
	n := 0
	for _, o := range outcomes {
		if o.Failed {
			n++
		}
	}
	return n
}
