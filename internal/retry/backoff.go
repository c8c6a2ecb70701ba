package retry

import "time"

// ExponentialBackoff returns base * 2^attempt.
func ExponentialBackoff(attempt int, base time.Duration) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	return base * (1 << attempt)
}

// CappedBackoff is ExponentialBackoff limited to ceiling. Large attempt
// counts return ceiling instead of overflowing.
func CappedBackoff(attempt int, base, ceiling time.Duration) time.Duration {
	if attempt >= 30 {
		return ceiling
	}
	return min(ExponentialBackoff(attempt, base), ceiling)
}
