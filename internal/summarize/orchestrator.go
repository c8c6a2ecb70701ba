package summarize

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"caption-digest/internal/chunker"
	"caption-digest/internal/llm"
)

const (
	// DefaultPacingDelay separates consecutive chunk requests.
	DefaultPacingDelay = time.Second
	// DefaultChunkTokenBudget keeps each chunk prompt well under common
	// model input limits.
	DefaultChunkTokenBudget = 3000
	// DefaultChunkOutputCeiling caps the output budget of a chunk summary.
	DefaultChunkOutputCeiling = 500

	chunkInstruction   = "Summarize part %d of %d of a video transcript in a few terse sentences. Keep only the key facts."
	combineInstruction = "The text below is a series of summaries of consecutive parts of one video. Combine them into a single cohesive summary."
)

// Options tune the chunked fallback. Zero values select the defaults.
type Options struct {
	PacingDelay        time.Duration
	ChunkTokenBudget   int
	ChunkOutputCeiling int
	CharsPerToken      int
	Estimator          chunker.TokenEstimator
	// Sleep waits between chunk requests. It returns early when ctx is done.
	Sleep func(ctx context.Context, d time.Duration)
}

func (o Options) withDefaults() Options {
	if o.PacingDelay <= 0 {
		o.PacingDelay = DefaultPacingDelay
	}
	if o.ChunkTokenBudget <= 0 {
		o.ChunkTokenBudget = DefaultChunkTokenBudget
	}
	if o.ChunkOutputCeiling <= 0 {
		o.ChunkOutputCeiling = DefaultChunkOutputCeiling
	}
	if o.CharsPerToken <= 0 {
		o.CharsPerToken = chunker.CharsPerToken
	}
	if o.Estimator == nil {
		o.Estimator = chunker.RatioEstimator(o.CharsPerToken)
	}
	if o.Sleep == nil {
		o.Sleep = sleep
	}
	return o
}

// Result is a produced summary. Degraded is set when the chunked fallback
// was used, which yields lower fidelity than a single-shot summary.
type Result struct {
	Text         string
	Degraded     bool
	Chunks       int
	FailedChunks []int
}

// Orchestrator summarizes cleaned transcripts, falling back to
// chunk-then-combine when the model rejects the input as too large.
type Orchestrator struct {
	llm  llm.Client
	log  *slog.Logger
	opts Options
}

// New builds an orchestrator around an LLM client.
func New(client llm.Client, log *slog.Logger, opts Options) *Orchestrator {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Orchestrator{llm: client, log: log, opts: opts.withDefaults()}
}

// Summarize tries a single request first and only chunks after a capacity
// failure. Every unrecoverable outcome is returned as *Error.
func (o *Orchestrator) Summarize(ctx context.Context, transcript string, s Settings) (Result, error) {
	if err := s.Validate(); err != nil {
		return Result{}, &Error{Kind: KindInvalidSettings, Cause: err}
	}

	text, err := o.complete(ctx, llm.Request{
		Prompt:          buildPrompt(s.PromptTemplate, transcript),
		MaxOutputTokens: s.MaxOutputTokens,
		Model:           s.Model,
	})
	if err == nil {
		return Result{Text: text, Chunks: 1}, nil
	}
	capErr, ok := llm.AsCapacity(err)
	if !ok {
		return Result{}, &Error{Kind: KindSingleShot, Cause: err}
	}
	o.log.Info("transcript exceeds model capacity, summarizing in chunks",
		"requested_tokens", capErr.RequestedTokens,
		"transcript_chars", len(transcript),
	)
	return o.summarizeChunked(ctx, transcript, s, capErr.RequestedTokens)
}

func (o *Orchestrator) summarizeChunked(ctx context.Context, transcript string, s Settings, requestedTokens int) (Result, error) {
	chunks := chunker.Plan(transcript, chunker.Options{
		CharBudget: chunker.CharBudget(o.opts.ChunkTokenBudget, o.opts.CharsPerToken),
		MinSize:    chunker.CharBudget(requestedTokens, o.opts.CharsPerToken),
		Estimator:  o.opts.Estimator,
	})
	outputTokens := chunkOutputTokens(s.MaxOutputTokens, o.opts.ChunkOutputCeiling)

	summaries := make([]string, 0, len(chunks))
	var failed []int
	sent := 0
	for _, c := range chunks {
		if c.Text == "" {
			continue
		}
		if sent > 0 {
			o.opts.Sleep(ctx, o.opts.PacingDelay)
		}
		sent++
		text, err := o.complete(ctx, llm.Request{
			Prompt:          buildPrompt(fmt.Sprintf(chunkInstruction, c.Index+1, len(chunks)), c.Text),
			MaxOutputTokens: outputTokens,
			Model:           s.Model,
		})
		if err != nil {
			o.log.Warn("chunk summary failed, skipping", "chunk", c.Index, "chunks", len(chunks), "err", err)
			failed = append(failed, c.Index)
			continue
		}
		o.log.Debug("chunk summarized", "chunk", c.Index, "chunks", len(chunks), "tokens", c.TokenCount)
		summaries = append(summaries, text)
	}
	if len(summaries) == 0 {
		return Result{}, &Error{Kind: KindAllChunksFailed, Cause: ErrNoChunkSummaries}
	}

	text, err := o.complete(ctx, llm.Request{
		Prompt:          buildPrompt(s.PromptTemplate+"\n"+combineInstruction, strings.Join(summaries, "\n\n")),
		MaxOutputTokens: s.MaxOutputTokens,
		Model:           s.Model,
	})
	if err != nil {
		return Result{}, &Error{Kind: KindFinalCombine, Cause: err}
	}
	return Result{
		Text:         text,
		Degraded:     true,
		Chunks:       len(chunks),
		FailedChunks: failed,
	}, nil
}

func (o *Orchestrator) complete(ctx context.Context, req llm.Request) (string, error) {
	resp, err := o.llm.Complete(ctx, req)
	if err != nil {
		return "", err
	}
	if IsPlaceholder(resp.Content) {
		return "", ErrEmptySummary
	}
	return strings.TrimSpace(resp.Content), nil
}

// buildPrompt places the preamble before the content, separated by a blank line.
func buildPrompt(preamble, content string) string {
	return preamble + "\n\n" + content
}

func chunkOutputTokens(maxOutput, ceiling int) int {
	return max(1, min(maxOutput/2, ceiling))
}

func sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
