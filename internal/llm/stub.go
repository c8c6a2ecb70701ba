package llm

import (
	"context"
	"strings"
	"unicode/utf8"

	"caption-digest/internal/chunker"
)

// StubClient is an offline extractive stand-in for a real model. It drops the
// prompt preamble (everything up to the first blank line) and returns the
// leading sentences that fit in the output budget. Prompts estimated above
// MaxInputTokens fail with *CapacityError, like a real service would.
type StubClient struct {
	MaxInputTokens int
}

// NewStubClient returns a stub that rejects prompts above maxInputTokens.
// Zero disables the limit.
func NewStubClient(maxInputTokens int) *StubClient {
	return &StubClient{MaxInputTokens: maxInputTokens}
}

func (s *StubClient) Complete(ctx context.Context, req Request) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}
	if tokens := chunker.EstimateTokens(req.Prompt); s.MaxInputTokens > 0 && tokens > s.MaxInputTokens {
		return Response{}, &CapacityError{RequestedTokens: tokens}
	}
	body := req.Prompt
	if i := strings.Index(body, "\n\n"); i >= 0 {
		body = body[i+2:]
	}
	budget := len(body)
	if req.MaxOutputTokens > 0 {
		budget = chunker.CharBudget(req.MaxOutputTokens, chunker.CharsPerToken)
	}
	return Response{Content: leadingSentences(strings.Join(strings.Fields(body), " "), budget)}, nil
}

func leadingSentences(text string, budget int) string {
	if len(text) <= budget {
		return text
	}
	for budget > 0 && !utf8.RuneStart(text[budget]) {
		budget--
	}
	cut := text[:budget]
	if i := strings.LastIndexAny(cut, ".!?"); i > 0 {
		return cut[:i+1]
	}
	if i := strings.LastIndex(cut, " "); i > 0 {
		return cut[:i]
	}
	return cut
}
