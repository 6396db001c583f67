// Package ratelimit throttles MCP tool calls with one token bucket per tool.
package ratelimit

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ErrRateLimited is returned when a tool has used up its budget.
var ErrRateLimited = errors.New("rate limit exceeded")

// Budget is the sustained rate and burst allowed for one tool.
type Budget struct {
	PerMinute float64
	Burst     int
}

// DefaultBudgets returns the per-tool budgets used by the MCP server.
// Experiments are the expensive call and get the tightest budget.
func DefaultBudgets() map[string]Budget {
	return map[string]Budget{
		"sweep_simulate":   {PerMinute: 60, Burst: 10},
		"sweep_experiment": {PerMinute: 10, Burst: 3},
		"sweep_relation":   {PerMinute: 60, Burst: 10},
		"sweep_history":    {PerMinute: 30, Burst: 5},
	}
}

// ToolLimiters holds a token bucket per tool name. It is safe for concurrent
// use. Tools without a budget are never limited.
type ToolLimiters struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	now      func() time.Time
}

// NewToolLimiters creates limiters for DefaultBudgets.
func NewToolLimiters() *ToolLimiters {
	return New(DefaultBudgets())
}

// New creates limiters for the given budgets. Each bucket starts full.
func New(budgets map[string]Budget) *ToolLimiters {
	t := &ToolLimiters{
		limiters: make(map[string]*rate.Limiter, len(budgets)),
		now:      time.Now,
	}
	for tool, b := range budgets {
		t.limiters[tool] = rate.NewLimiter(rate.Limit(b.PerMinute/60), b.Burst)
	}
	return t
}

// Len returns the number of limited tools.
func (t *ToolLimiters) Len() int {
	if t == nil {
		return 0
	}
	return len(t.limiters)
}

// Check takes one token for tool. When the bucket is empty it returns an
// error wrapping ErrRateLimited that says how long to wait.
func (t *ToolLimiters) Check(tool string) error {
	if t == nil {
		return nil
	}

	t.mu.Lock()
	l, ok := t.limiters[tool]
	now := t.now()
	t.mu.Unlock()
	if !ok {
		return nil
	}

	r := l.ReserveN(now, 1)
	if !r.OK() {
		return fmt.Errorf("%w for %s", ErrRateLimited, tool)
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return fmt.Errorf("%w for %s, retry in %s", ErrRateLimited, tool, delay.Round(100*time.Millisecond))
	}
	return nil
}
