// Package costcontrol caps how many agent runs may start per day. Each
// run fans out into many LLM calls, so the run count is the knob that
// bounds spend.
package costcontrol

import (
	"log"
	"sync"
	"time"
)

// Tracker counts run starts against a daily limit. A limit of zero
// disables the cap.
type Tracker struct {
	mu         sync.Mutex
	dailyLimit int

	runsStarted int
	resetTime   time.Time
}

// NewTracker creates a tracker that resets at local midnight.
func NewTracker(dailyLimit int) *Tracker {
	return &Tracker{
		dailyLimit: dailyLimit,
		resetTime:  nextMidnight(time.Now()),
	}
}

// Reserve claims one run slot. It returns a LimitError when the daily
// budget is exhausted.
func (t *Tracker) Reserve() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.resetIfNeeded()

	if t.dailyLimit > 0 && t.runsStarted >= t.dailyLimit {
		return &LimitError{Limit: t.dailyLimit, Current: t.runsStarted}
	}

	t.runsStarted++
	if t.dailyLimit > 0 && t.runsStarted == t.dailyLimit {
		log.Printf("[CostControl] Daily run budget reached (%d); further runs rejected until %s",
			t.dailyLimit, t.resetTime.Format("2006-01-02 15:04:05"))
	}
	return nil
}

// Release returns a slot, for runs that were reserved but never started.
func (t *Tracker) Release() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.runsStarted > 0 {
		t.runsStarted--
	}
}

// Stats reports the current day's usage.
func (t *Tracker) Stats() DailyStats {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.resetIfNeeded()
	return DailyStats{
		RunsStarted:   t.runsStarted,
		DailyLimit:    t.dailyLimit,
		NextResetTime: t.resetTime,
	}
}

func (t *Tracker) resetIfNeeded() {
	now := time.Now()
	if now.After(t.resetTime) {
		t.runsStarted = 0
		t.resetTime = nextMidnight(now)
		log.Printf("[CostControl] Daily run budget reset. Next reset: %s", t.resetTime.Format("2006-01-02 15:04:05"))
	}
}

func nextMidnight(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())
}

// DailyStats is the budget snapshot exposed by the service API.
type DailyStats struct {
	RunsStarted   int       `json:"runs_started"`
	DailyLimit    int       `json:"daily_limit"`
	NextResetTime time.Time `json:"next_reset_time"`
}

// LimitError indicates the daily run budget is exhausted.
type LimitError struct {
	Limit   int
	Current int
}

func (e *LimitError) Error() string {
	return "daily run limit reached"
}
