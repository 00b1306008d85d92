package monotonic

import (
	"sync"
	"time"
)

// Clock returns time.Now shifted by a correction offset.
type Clock struct {
	// offset is added to time.Now(). Protected by mu.
	offset time.Duration
	mu     sync.RWMutex
}

// NewClock creates a new monotonic Clock with zero offset.
func NewClock() *Clock {
	return &Clock{}
}

// Now returns the current time adjusted by the offset. The returned
// time.Time retains Go's monotonic clock reading.
func (c *Clock) Now() time.Time {
	c.mu.RLock()
	offset := c.offset
	c.mu.RUnlock()
	return time.Now().Add(offset)
}

// SetOffset replaces the correction.
func (c *Clock) SetOffset(offset time.Duration) {
	c.mu.Lock()
	c.offset = offset
	c.mu.Unlock()
}

// Offset returns the current correction.
func (c *Clock) Offset() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.offset
}
