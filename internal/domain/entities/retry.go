package entities

import (
	"math"
	"time"
)

// RetryPolicy controls retry behavior for remote calls. The same policy is
// applied by the boundary gateway and the catalog gateway; whether an error
// is retryable is decided at the call site.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  float64
	MaxDelay    time.Duration
}

// DefaultRetryPolicy returns the standard policy for remote calls
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   1 * time.Second,
		Multiplier:  2.0,
		MaxDelay:    32 * time.Second,
	}
}

// Backoff returns the delay before the given retry attempt (0-based)
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	backoff := float64(p.BaseDelay) * math.Pow(p.Multiplier, float64(attempt))
	if p.MaxDelay > 0 && backoff > float64(p.MaxDelay) {
		backoff = float64(p.MaxDelay)
	}
	return time.Duration(backoff)
}
