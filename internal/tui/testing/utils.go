// Package testing holds helpers for driving the dashboard model in tests.
package testing

import (
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/x/ansi"
)

// StripANSI removes styling so views can be compared as plain text.
func StripANSI(s string) string {
	return ansi.Strip(s)
}

// NormalizeWhitespace collapses runs of whitespace into single spaces.
func NormalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ContainsInOrder reports whether every part appears in output, in order.
func ContainsInOrder(output string, parts ...string) bool {
	rest := output
	for _, p := range parts {
		i := strings.Index(rest, p)
		if i < 0 {
			return false
		}
		rest = rest[i+len(p):]
	}
	return true
}

// Clock is a settable time source for date filters and toasts.
type Clock struct {
	current time.Time
	mu      sync.Mutex
}

// NewClock returns a clock fixed at start.
func NewClock(start time.Time) *Clock {
	return &Clock{current: start}
}

// Now returns the current time of the clock.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Advance moves the clock forward.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.current = c.current.Add(d)
	c.mu.Unlock()
}

// Recorder collects messages the model emits outside of Update, such as
// notifier toasts and poller results.
type Recorder struct {
	msgs []any
	mu   sync.Mutex
}

// Send records msg.
func (r *Recorder) Send(msg any) {
	r.mu.Lock()
	r.msgs = append(r.msgs, msg)
	r.mu.Unlock()
}

// Messages returns a copy of everything recorded so far.
func (r *Recorder) Messages() []any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]any(nil), r.msgs...)
}
