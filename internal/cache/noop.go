package cache

import (
	"context"
	"time"
)

// NoOpCache is used when Redis is disabled or unreachable. Every lookup
// misses and every write succeeds.
type NoOpCache struct{}

func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

func (c *NoOpCache) GetSummary(context.Context, string) (*Entry, error) {
	return nil, nil
}

func (c *NoOpCache) SetSummary(context.Context, string, *Entry, time.Duration) error {
	return nil
}

func (c *NoOpCache) Close() error {
	return nil
}
