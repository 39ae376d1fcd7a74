package server

import (
	"fmt"
	"sync"
	"time"
)

// RateLimitConfig configures per-client limits on the scan endpoints.
// Zero values disable the individual limit.
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerMinute int
	MaxBytesPerDay    int64
}

// RateLimiter counts scan requests and uploaded bytes per client.
type RateLimiter struct {
	mu sync.Mutex

	requestsPerMinute int
	maxBytesPerDay    int64

	clients map[string]*clientUsage
	now     func() time.Time
}

type clientUsage struct {
	windowStart time.Time
	requests    int

	day   time.Time
	bytes int64
}

// NewRateLimiter creates a limiter with the given per-client limits.
func NewRateLimiter(requestsPerMinute int, maxBytesPerDay int64) *RateLimiter {
	return &RateLimiter{
		requestsPerMinute: requestsPerMinute,
		maxBytesPerDay:    maxBytesPerDay,
		clients:           make(map[string]*clientUsage),
		now:               time.Now,
	}
}

// Allow records a request of dataSize bytes from client, or returns a
// *RateLimitError when a limit would be exceeded. Rejected requests are not counted.
func (rl *RateLimiter) Allow(client string, dataSize int64) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	usage, ok := rl.clients[client]
	if !ok {
		usage = &clientUsage{windowStart: now, day: startOfDay(now)}
		rl.clients[client] = usage
	}

	if now.Sub(usage.windowStart) >= time.Minute {
		usage.windowStart = now
		usage.requests = 0
	}
	if today := startOfDay(now); !today.Equal(usage.day) {
		usage.day = today
		usage.bytes = 0
	}

	if rl.requestsPerMinute > 0 && usage.requests >= rl.requestsPerMinute {
		return &RateLimitError{
			Type:       "minute",
			Limit:      int64(rl.requestsPerMinute),
			RetryAfter: time.Minute - now.Sub(usage.windowStart),
		}
	}
	if rl.maxBytesPerDay > 0 && usage.bytes+dataSize > rl.maxBytesPerDay {
		return &RateLimitError{
			Type:       "data",
			Limit:      rl.maxBytesPerDay,
			RetryAfter: usage.day.AddDate(0, 0, 1).Sub(now),
		}
	}

	usage.requests++
	usage.bytes += dataSize
	return nil
}

// Usage returns the requests in the current minute window and the bytes
// accepted today for client.
func (rl *RateLimiter) Usage(client string) (requests int, bytes int64) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if usage, ok := rl.clients[client]; ok {
		return usage.requests, usage.bytes
	}
	return 0, 0
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// RateLimitError represents a rate limit violation.
type RateLimitError struct {
	Type       string // "minute" or "data"
	Limit      int64
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s (limit: %d, retry after: %v)", e.Type, e.Limit, e.RetryAfter)
}
