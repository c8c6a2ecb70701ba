package summarize

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// DefaultPromptTemplate is the preamble placed before the transcript.
const DefaultPromptTemplate = "Summarize the following video transcript. Lead with a one-sentence overview, then list the key points in the order they appear."

// Placeholder is what callers store in place of a summary that could not be
// produced. Model output equal to it is treated as no summary at all.
const Placeholder = "Summary not available."

var placeholders = []string{
	Placeholder,
	"Summary not available",
	"No summary available.",
	"No summary available",
	"N/A",
}

var validate = validator.New()

// Settings are the per-call summarization parameters. They are passed into
// every call; nothing is cached between calls.
type Settings struct {
	Model           string `validate:"required"`
	MaxOutputTokens int    `validate:"gt=0"`
	PromptTemplate  string `validate:"required"`
}

// Validate checks the settings are usable.
func (s Settings) Validate() error {
	return validate.Struct(s)
}

// IsPlaceholder reports whether a model reply carries no usable summary.
func IsPlaceholder(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return true
	}
	for _, p := range placeholders {
		if strings.EqualFold(text, p) {
			return true
		}
	}
	return false
}
