package core

import (
	"log"
	"sync"
	"time"
)

// DefaultDailyLimit is a conservative ceiling on external AI calls per day.
const DefaultDailyLimit = 1000

// UsageLimiter tracks external AI calls per UTC calendar day. The counter is
// reset lazily on the first attempt of a new day; there is no background timer.
type UsageLimiter struct {
	mu        sync.Mutex
	limit     int
	calls     int
	lastReset time.Time // date of last reset, UTC midnight
	now       func() time.Time
}

func NewUsageLimiter(limit int) *UsageLimiter {
	if limit <= 0 {
		limit = DefaultDailyLimit
	}
	l := &UsageLimiter{limit: limit, now: time.Now}
	l.lastReset = dateOf(l.now())
	return l
}

// Allow reports whether another AI call may be attempted today, resetting the
// counter first if the wall-clock date has rolled over since the last attempt.
func (l *UsageLimiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.maybeReset()
	return l.calls < l.limit
}

// Record counts one completed AI call.
func (l *UsageLimiter) Record() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.maybeReset()
	l.calls++
}

// Usage returns today's call count and the configured ceiling.
func (l *UsageLimiter) Usage() (calls, limit int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.maybeReset()
	return l.calls, l.limit
}

func (l *UsageLimiter) maybeReset() {
	today := dateOf(l.now())
	if today.After(l.lastReset) {
		l.calls = 0
		l.lastReset = today
		log.Printf("AI usage counter reset for %s", today.Format("2006-01-02"))
	}
}

func dateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
