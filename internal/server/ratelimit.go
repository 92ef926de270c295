package server

import (
	"fmt"
	"sync"
	"time"
)

// RateLimiter enforces per-client request rates and daily upload quotas.
// Clients are keyed by IP address. A zero limit disables that check.
type RateLimiter struct {
	mu sync.Mutex

	perMinute int
	perHour   int
	perDay    int
	bytesDay  int64

	clients map[string]*clientUsage
}

// clientUsage tracks one client's windows and daily totals.
type clientUsage struct {
	minuteStart time.Time
	minuteCount int

	hourStart time.Time
	hourCount int

	dayStart time.Time
	dayCount int
	dayBytes int64
}

// NewRateLimiter creates a rate limiter with the given limits.
func NewRateLimiter(perMinute, perHour, perDay int, bytesDay int64) *RateLimiter {
	return &RateLimiter{
		perMinute: perMinute,
		perHour:   perHour,
		perDay:    perDay,
		bytesDay:  bytesDay,
		clients:   make(map[string]*clientUsage),
	}
}

// Allow reports whether a request carrying uploadBytes of payload may
// proceed for the given client, counting it if so.
func (rl *RateLimiter) Allow(clientID string, uploadBytes int64) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	u, ok := rl.clients[clientID]
	if !ok {
		u = &clientUsage{minuteStart: now, hourStart: now, dayStart: now}
		rl.clients[clientID] = u
	}
	u.roll(now)

	if rl.perMinute > 0 && u.minuteCount >= rl.perMinute {
		return &RateLimitError{
			Type:       "requests_per_minute",
			Limit:      rl.perMinute,
			RetryAfter: u.minuteStart.Add(time.Minute).Sub(now),
		}
	}
	if rl.perHour > 0 && u.hourCount >= rl.perHour {
		return &RateLimitError{
			Type:       "requests_per_hour",
			Limit:      rl.perHour,
			RetryAfter: u.hourStart.Add(time.Hour).Sub(now),
		}
	}
	if rl.perDay > 0 && u.dayCount >= rl.perDay {
		return &QuotaExceededError{
			Type:   "max_requests_per_day",
			Limit:  int64(rl.perDay),
			Used:   int64(u.dayCount),
			Resets: nextMidnight(now),
		}
	}
	if rl.bytesDay > 0 && u.dayBytes+uploadBytes > rl.bytesDay {
		return &QuotaExceededError{
			Type:   "max_data_per_day",
			Limit:  rl.bytesDay,
			Used:   u.dayBytes,
			Resets: nextMidnight(now),
		}
	}

	u.minuteCount++
	u.hourCount++
	u.dayCount++
	u.dayBytes += uploadBytes
	return nil
}

// Usage returns a snapshot of today's counters for a client.
func (rl *RateLimiter) Usage(clientID string) (requests int, bytes int64) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	u, ok := rl.clients[clientID]
	if !ok {
		return 0, 0
	}
	u.roll(time.Now())
	return u.dayCount, u.dayBytes
}

// roll resets any window that has elapsed.
func (u *clientUsage) roll(now time.Time) {
	if now.Sub(u.minuteStart) >= time.Minute {
		u.minuteStart = now
		u.minuteCount = 0
	}
	if now.Sub(u.hourStart) >= time.Hour {
		u.hourStart = now
		u.hourCount = 0
	}
	if now.YearDay() != u.dayStart.YearDay() || now.Year() != u.dayStart.Year() {
		u.dayStart = now
		u.dayCount = 0
		u.dayBytes = 0
	}
}

func nextMidnight(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())
}

// RateLimitError reports a per-minute or per-hour rate violation.
type RateLimitError struct {
	Type       string
	Limit      int
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s (limit: %d, retry after: %v)", e.Type, e.Limit, e.RetryAfter)
}

// QuotaExceededError reports a daily request or data quota violation.
type QuotaExceededError struct {
	Type   string
	Limit  int64
	Used   int64
	Resets time.Time
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("quota exceeded for %s (used: %d, limit: %d, resets: %s)",
		e.Type, e.Used, e.Limit, e.Resets.Format(time.RFC3339))
}
