package domain

import (
	"fmt"
	"math"
	"time"
)

// RateLimit describes an exhausted provider quota and when it lifts.
type RateLimit struct {
	Reset             time.Time `json:"reset"`
	RetryAfterMinutes int       `json:"retryAfterMinutes"`
}

// NewRateLimit builds a RateLimit from the provider's reset instant.
// The reported wait is floored at one minute so an imminent or
// already-past reset never reads as "retry in 0 minutes".
func NewRateLimit(reset, now time.Time) RateLimit {
	minutes := int(math.Ceil(reset.Sub(now).Minutes()))
	if minutes < 1 {
		minutes = 1
	}
	return RateLimit{Reset: reset, RetryAfterMinutes: minutes}
}

// Message renders the user-facing wait notice.
func (r RateLimit) Message() string {
	plural := "s"
	if r.RetryAfterMinutes == 1 {
		plural = ""
	}
	return fmt.Sprintf("GitHub API rate limit exceeded. Try again in %d minute%s.", r.RetryAfterMinutes, plural)
}

// Outcome is a tagged result: either data, or a rate-limit condition.
// Rate limiting is an expected state that every layer passes through
// as a value; errors are reserved for unexpected local faults.
type Outcome[T any] struct {
	Data      T
	RateLimit *RateLimit
}

// OK builds a successful outcome.
func OK[T any](data T) Outcome[T] {
	return Outcome[T]{Data: data}
}

// RateLimited builds a rate-limited outcome.
func RateLimited[T any](rl RateLimit) Outcome[T] {
	return Outcome[T]{RateLimit: &rl}
}

// Ok reports whether the outcome carries data.
func (o Outcome[T]) Ok() bool {
	return o.RateLimit == nil
}
