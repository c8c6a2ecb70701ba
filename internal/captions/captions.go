package captions

import (
	"context"
	"errors"
	"strings"
)

// ErrNoCaptions is returned when a video has no caption track.
var ErrNoCaptions = errors.New("no captions available")

// Item is one timed caption fragment. Timing is carried through but never used
// by transcript cleaning.
type Item struct {
	Text       string `json:"text" validate:"required"`
	OffsetMs   int64  `json:"offset_ms" validate:"gte=0"`
	DurationMs int64  `json:"duration_ms" validate:"gte=0"`
}

// Source supplies the ordered caption items for a video.
type Source interface {
	Captions(ctx context.Context, videoID string) ([]Item, error)
}

// JoinText concatenates item texts in order, separated by single spaces.
// Blank items are skipped.
func JoinText(items []Item) string {
	var builder strings.Builder
	for _, item := range items {
		text := strings.TrimSpace(item.Text)
		if text == "" {
			continue
		}
		if builder.Len() > 0 {
			builder.WriteByte(' ')
		}
		builder.WriteString(text)
	}
	return builder.String()
}
