package strava

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Strava allows 100 requests per 15 minutes and 1000 per day

// quota tracks usage of one rate limit window
type quota struct {
	limit    int
	usage    int
	resetsAt time.Time
	period   func(now time.Time) time.Time // next reset after now
}

func (q *quota) rollover(now time.Time) {
	if now.After(q.resetsAt) {
		q.usage = 0
		q.resetsAt = q.period(now)
	}
}

func (q *quota) exhausted() bool {
	return q.usage >= q.limit
}

// RateLimiter paces requests against Strava's short and daily quotas
type RateLimiter struct {
	mu sync.Mutex

	short quota
	daily quota

	// pace spaces consecutive requests out
	pace *rate.Limiter
	now  func() time.Time
}

// NewRateLimiter creates a new rate limiter with Strava's limits
func NewRateLimiter() *RateLimiter {
	now := time.Now()
	shortPeriod := func(t time.Time) time.Time { return t.Add(15 * time.Minute) }
	dailyPeriod := func(t time.Time) time.Time { return t.Truncate(24 * time.Hour).Add(24 * time.Hour) }

	return &RateLimiter{
		short: quota{limit: 100, resetsAt: shortPeriod(now), period: shortPeriod},
		daily: quota{limit: 1000, resetsAt: dailyPeriod(now), period: dailyPeriod},
		pace:  rate.NewLimiter(rate.Every(150*time.Millisecond), 1),
		now:   time.Now,
	}
}

// Wait blocks until a request can be made without exceeding rate limits
func (r *RateLimiter) Wait(ctx context.Context) error {
	if err := r.reserveQuota(ctx); err != nil {
		return err
	}
	return r.pace.Wait(ctx)
}

// reserveQuota waits out exhausted windows and counts the request
func (r *RateLimiter) reserveQuota(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, q := range []*quota{&r.short, &r.daily} {
		q.rollover(r.now())
		if !q.exhausted() {
			continue
		}
		if err := r.sleep(ctx, q.resetsAt.Sub(r.now())); err != nil {
			return err
		}
		q.usage = 0
		q.resetsAt = q.period(r.now())
	}

	r.short.usage++
	r.daily.usage++
	return nil
}

// sleep releases the lock while waiting. Called with r.mu held.
func (r *RateLimiter) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	r.mu.Unlock()
	defer r.mu.Lock()

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// UpdateFromHeaders syncs usage and limits with Strava's response headers,
// e.g. X-RateLimit-Limit: "100,1000" and X-RateLimit-Usage: "34,512"
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

func parsePair(v string) (int, int, bool) {
	parts := strings.Split(v, ",")
	if len(parts) < 2 {
		return 0, 0, false
	}
	a, errA := strconv.Atoi(strings.TrimSpace(parts[0]))
	b, errB := strconv.Atoi(strings.TrimSpace(parts[1]))
	if errA != nil || errB != nil {
		return 0, 0, false
	}
	return a, b, true
}

// Status returns the remaining requests in the short and daily windows
func (r *RateLimiter) Status() (shortRemaining, dailyRemaining int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.short.limit - r.short.usage, r.daily.limit - r.daily.usage
}
