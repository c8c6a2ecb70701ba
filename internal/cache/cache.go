package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"
)

// Cache stores finished summaries keyed by transcript and settings.
type Cache interface {
	// GetSummary returns nil on a cache miss.
	GetSummary(ctx context.Context, key string) (*Entry, error)

	// SetSummary stores an entry with TTL.
	SetSummary(ctx context.Context, key string, entry *Entry, ttl time.Duration) error

	Close() error
}

// Entry is a cached summary.
type Entry struct {
	Text         string `json:"text"`
	Degraded     bool   `json:"degraded"`
	Chunks       int    `json:"chunks"`
	FailedChunks []int  `json:"failed_chunks,omitempty"`
}

// GenerateCacheKey hashes everything that influences a summary, so a change
// of model, budget or template never serves a stale entry.
func GenerateCacheKey(model string, maxOutputTokens int, template, transcript string) string {
	h := sha256.New()
	for _, part := range []string{model, strconv.Itoa(maxOutputTokens), template, transcript} {
		h.Write([]byte(strconv.Itoa(len(part))))
		h.Write([]byte{':'})
		h.Write([]byte(part))
	}
	return hex.EncodeToString(h.Sum(nil))
}
