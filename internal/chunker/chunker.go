package chunker

import (
	"strings"
	"unicode/utf8"
)

const (
	// DefaultCharBudget applies when Options.CharBudget is not positive.
	DefaultCharBudget = 12000

	// snapWindow is how far either side of an even split a boundary may move
	// to land on a sentence end.
	snapWindow = 100
)

// Options controls how text is planned into chunks.
type Options struct {
	// CharBudget is the target size of one chunk in bytes.
	CharBudget int
	// MinSize lower-bounds the size estimate used for the chunk count, e.g.
	// when the model reported a larger input than len(text) suggests.
	MinSize int
	// Estimator fills Chunk.TokenCount. Defaults to EstimateTokens.
	Estimator TokenEstimator
}

// Chunk represents a contiguous slice of the transcript.
// text[Start:End] is the untrimmed span; Text is that span trimmed.
type Chunk struct {
	Index      int
	Start      int
	End        int
	Text       string
	TokenCount int
}

// Plan splits text into sentence-aligned chunks of roughly CharBudget bytes.
// The untrimmed spans are ordered, non-overlapping and concatenate back to
// text. At least one chunk is always returned.
func Plan(text string, opts Options) []Chunk {
	budget := opts.CharBudget
	if budget <= 0 {
		budget = DefaultCharBudget
	}
	estimate := opts.Estimator
	if estimate == nil {
		estimate = EstimateTokens
	}

	size := max(len(text), opts.MinSize)
	count := max(1, (size+budget-1)/budget)
	target := max(1, len(text)/count)

	chunks := make([]Chunk, 0, count)
	start := 0
	for i := 0; i < count-1; i++ {
		split := start + target
		if split >= len(text) {
			break
		}
		end := snapBoundary(text, start, split)
		if end >= len(text) {
			break
		}
		chunks = append(chunks, newChunk(text, len(chunks), start, end, estimate))
		start = end
	}
	return append(chunks, newChunk(text, len(chunks), start, len(text), estimate))
}

// snapBoundary returns the offset just past the last sentence terminator
// followed by a space within snapWindow of split. Without one, split itself
// is used, moved forward to the next rune start.
func snapBoundary(text string, start, split int) int {
	lo := max(start+1, split-snapWindow)
	hi := min(len(text)-1, split+snapWindow)
	for j := hi - 1; j >= lo; j-- {
		if isTerminator(text[j]) && text[j+1] == ' ' {
			return j + 1
		}
	}
	for split < len(text) && !utf8.RuneStart(text[split]) {
		split++
	}
	return split
}

func isTerminator(b byte) bool {
	return b == '.' || b == '!' || b == '?'
}

func newChunk(text string, index, start, end int, estimate TokenEstimator) Chunk {
	trimmed := strings.TrimSpace(text[start:end])
	return Chunk{
		Index:      index,
		Start:      start,
		End:        end,
		Text:       trimmed,
		TokenCount: estimate(trimmed),
	}
}
