package strava

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Strava allows 100 requests per 15 minutes and 1000 per day by default.
// The response headers carry the actual limits and usage.
const (
	defaultShortLimit = 100
	defaultDailyLimit = 1000
	shortWindow       = 15 * time.Minute
	minInterval       = 150 * time.Millisecond
)

// window is one usage counter with its reset time
type window struct {
	limit    int
	usage    int
	resetsAt time.Time
	next     func(now time.Time) time.Time
}

func (w *window) roll(now time.Time) {
	if now.After(w.resetsAt) {
		w.usage = 0
		w.resetsAt = w.next(now)
	}
}

// RateLimiter spaces requests to stay inside both Strava windows
type RateLimiter struct {
	mu          sync.Mutex
	short       window
	daily       window
	lastRequest time.Time
	now         func() time.Time
}

// NewRateLimiter creates a limiter with Strava's default limits
func NewRateLimiter() *RateLimiter {
	r := &RateLimiter{now: time.Now}
	now := r.now()
	r.short = window{
		limit: defaultShortLimit,
		next:  func(now time.Time) time.Time { return now.Add(shortWindow) },
	}
	r.daily = window{
		limit: defaultDailyLimit,
		next:  func(now time.Time) time.Time { return now.Truncate(24 * time.Hour).Add(24 * time.Hour) },
	}
	r.short.resetsAt = r.short.next(now)
	r.daily.resetsAt = r.daily.next(now)
	return r
}

// Wait blocks until a request can be made without exceeding either limit
func (r *RateLimiter) Wait(ctx context.Context) error {
	for {
		delay := r.reserve()
		if delay <= 0 {
			return nil
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// reserve counts a request and returns zero, or returns how long to wait
// before trying again.
func (r *RateLimiter) reserve() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.short.roll(now)
	r.daily.roll(now)

	for _, w := range []*window{&r.short, &r.daily} {
		if w.usage >= w.limit {
			return w.resetsAt.Sub(now) + time.Millisecond
		}
	}
	if elapsed := now.Sub(r.lastRequest); elapsed < minInterval {
		return minInterval - elapsed
	}

	r.short.usage++
	r.daily.usage++
	r.lastRequest = now
	return 0
}

// UpdateFromHeaders syncs limits and usage with the X-RateLimit headers,
// which carry "short,daily" pairs.
func (r *RateLimiter) UpdateFromHeaders(h http.Header) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if short, daily, ok := parsePair(h.Get("X-RateLimit-Usage")); ok {
		r.short.usage, r.daily.usage = short, daily
	}
	if short, daily, ok := parsePair(h.Get("X-RateLimit-Limit")); ok {
		r.short.limit, r.daily.limit = short, daily
	}
}

// Status returns the remaining requests in each window
func (r *RateLimiter) Status() (shortRemaining, dailyRemaining int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.short.limit - r.short.usage, r.daily.limit - r.daily.usage
}

func parsePair(v string) (int, int, bool) {
	parts := strings.Split(v, ",")
	if len(parts) != 2 {
		return 0, 0, false
	}
	a, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, false
	}
	b, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, false
	}
	return a, b, true
}
