// ABOUTME: QueryCounter counts questions asked today; resets when the date changes
// ABOUTME: Held in memory only, so a restart starts from zero
package core

import (
	"sync"
	"time"
)

const dayLayout = "2006-01-02"

// QueryCounter is safe for concurrent use
type QueryCounter struct {
	mu    sync.Mutex
	day   string
	count int
	now   func() time.Time
}

// NewQueryCounter creates a counter keyed on the local date
func NewQueryCounter() *QueryCounter {
	return newQueryCounterWithClock(time.Now)
}

func newQueryCounterWithClock(now func() time.Time) *QueryCounter {
	return &QueryCounter{now: now, day: now().Format(dayLayout)}
}

// Increment adds one question and returns today's total
func (c *QueryCounter) Increment() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rollLocked()
	c.count++
	return c.count
}

// Today returns the number of questions asked today
func (c *QueryCounter) Today() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rollLocked()
	return c.count
}

func (c *QueryCounter) rollLocked() {
	day := c.now().Format(dayLayout)
	if day != c.day {
		c.day = day
		c.count = 0
	}
}
