package pipeline

import (
	"slices"
	"sync"
)

// Collector keeps every progress event of a run and forwards each one to an
// optional next callback. It is safe for concurrent use.
type Collector struct {
	mu     sync.Mutex
	events []ProgressEvent
	next   ProgressCallback
}

// NewCollector creates a Collector. next may be nil.
func NewCollector(next ProgressCallback) *Collector {
	return &Collector{next: next}
}

// Callback returns the function to install as Deps.OnProgress.
func (c *Collector) Callback() ProgressCallback {
	return func(ev ProgressEvent) {
		c.mu.Lock()
		c.events = append(c.events, ev)
		c.mu.Unlock()
		if c.next != nil {
			c.next(ev)
		}
	}
}

// Events returns a copy of the events seen so far, in emission order.
func (c *Collector) Events() []ProgressEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.events)
}
