package cache

import (
	"context"
	"testing"
	"time"
)

func TestNoOpCache(t *testing.T) {
	cache := NewNoOpCache()
	ctx := context.Background()

	entry, err := cache.GetSummary(ctx, "key")
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if entry != nil {
		t.Errorf("Expected cache miss, got %v", entry)
	}

	if err := cache.SetSummary(ctx, "key", &Entry{Text: "A summary."}, time.Hour); err != nil {
		t.Errorf("Expected no error on SetSummary, got %v", err)
	}

	entry, err = cache.GetSummary(ctx, "key")
	if err != nil || entry != nil {
		t.Errorf("no-op cache must not store entries, got %v, %v", entry, err)
	}

	if err := cache.Close(); err != nil {
		t.Errorf("Expected no error on Close, got %v", err)
	}
}
