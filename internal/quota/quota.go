// Package quota enforces the daily cap on calls to the external inference
// service. The counter lives for the process lifetime only and resets on the
// first observation of a new UTC calendar day.
package quota

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Guard holds the (day, count) pair behind a mutex so check-and-increment
// stays atomic across concurrent callers.
type Guard struct {
	mu    sync.Mutex
	day   string // UTC date in 2006-01-02 form
	count int
	limit int
	now   func() time.Time
}

// NewGuard creates a Guard with the given daily limit. A limit <= 0 means
// every TryConsume fails, forcing the heuristic path.
func NewGuard(limit int) *Guard {
	return &Guard{
		limit: limit,
		now:   time.Now,
	}
}

// WithClock overrides the clock. Test hook.
func (g *Guard) WithClock(now func() time.Time) *Guard {
	g.now = now
	return g
}

// TryConsume reserves one request against today's quota. It returns false
// when the quota is exhausted; the caller must then fall back to heuristic
// scoring. The day rolls over on the first call that observes a new UTC date.
func (g *Guard) TryConsume() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	today := g.now().UTC().Format("2006-01-02")
	if today != g.day {
		if g.day != "" {
			zap.L().Info("quota: daily window reset",
				zap.String("previous_day", g.day),
				zap.Int("previous_count", g.count),
			)
		}
		g.day = today
		g.count = 0
	}

	if g.count >= g.limit {
		return false
	}
	g.count++
	return true
}

// Remaining returns how many requests are left in today's window. The day
// check mirrors TryConsume so a stale counter from yesterday never leaks.
func (g *Guard) Remaining() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	today := g.now().UTC().Format("2006-01-02")
	if today != g.day {
		return g.limit
	}
	left := g.limit - g.count
	if left < 0 {
		return 0
	}
	return left
}

// Used returns today's consumed count.
func (g *Guard) Used() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	today := g.now().UTC().Format("2006-01-02")
	if today != g.day {
		return 0
	}
	return g.count
}

// Limit returns the configured daily limit.
func (g *Guard) Limit() int {
	return g.limit
}
