// Package optimistic keeps lists that show a placeholder while a create
// request is in flight and reconcile it with the server's answer.
package optimistic

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// TempPrefix marks identifiers that exist only on this client.
const TempPrefix = "temp-"

// NewTempID returns a placeholder id: the prefix, a millisecond timestamp
// and a short random suffix.
func NewTempID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s%d-%s", TempPrefix, now.UnixMilli(), suffix)
}

// IsTempID reports whether id names a placeholder.
func IsTempID(id string) bool {
	return strings.HasPrefix(id, TempPrefix)
}

// State tags an entry.
type State int

const (
	// Confirmed entries came from the server.
	Confirmed State = iota
	// Pending entries are placeholders awaiting a response.
	Pending
)

func (s State) String() string {
	if s == Pending {
		return "pending"
	}
	return "confirmed"
}

// Entry is either a confirmed value or a pending placeholder.
type Entry[T any] struct {
	Value  T
	TempID string
	State  State
}

// ConfirmedEntry wraps a server value.
func ConfirmedEntry[T any](v T) Entry[T] {
	return Entry[T]{Value: v, State: Confirmed}
}

// PendingEntry wraps a placeholder value under tempID.
func PendingEntry[T any](v T, tempID string) Entry[T] {
	return Entry[T]{Value: v, TempID: tempID, State: Pending}
}

// IsPending reports whether e is a placeholder.
func (e Entry[T]) IsPending() bool {
	return e.State == Pending
}

// Outcome is the server's answer for a pending entry.
type Outcome[T any] struct {
	Value  T
	TempID string
	OK     bool
}

// Merge applies an outcome to entries and returns the new slice. A success
// replaces the placeholder in place; a failure removes it. Entries with
// other ids are untouched and order is preserved. The input is not modified.
func Merge[T any](entries []Entry[T], outcome Outcome[T]) []Entry[T] {
	out := make([]Entry[T], 0, len(entries))
	for _, e := range entries {
		if e.IsPending() && e.TempID == outcome.TempID {
			if outcome.OK {
				out = append(out, ConfirmedEntry(outcome.Value))
			}
			continue
		}
		out = append(out, e)
	}
	return out
}

// List is a concurrency-safe ordered list of entries.
type List[T any] struct {
	entries []Entry[T]
	mu      sync.RWMutex
}

// NewList returns a list holding confirmed values in order.
func NewList[T any](values []T) *List[T] {
	l := &List[T]{}
	l.Reset(values)
	return l
}

// Reset replaces the confirmed contents with values. Placeholders stay at
// the head so a reload during a create does not lose them.
func (l *List[T]) Reset(values []T) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries := make([]Entry[T], 0, len(values)+len(l.entries))
	for _, e := range l.entries {
		if e.IsPending() {
			entries = append(entries, e)
		}
	}
	for _, v := range values {
		entries = append(entries, ConfirmedEntry(v))
	}
	l.entries = entries
}

// Insert puts a placeholder at the head of the list.
func (l *List[T]) Insert(placeholder T, tempID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append([]Entry[T]{PendingEntry(placeholder, tempID)}, l.entries...)
}

// Confirm replaces the placeholder tempID with v. When the placeholder is
// gone, v is put at the head of the list instead.
func (l *List[T]) Confirm(tempID string, v T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if e.IsPending() && e.TempID == tempID {
			l.entries = Merge(l.entries, Outcome[T]{TempID: tempID, Value: v, OK: true})
			return
		}
	}
	l.entries = append([]Entry[T]{ConfirmedEntry(v)}, l.entries...)
}

// Discard removes the placeholder tempID.
func (l *List[T]) Discard(tempID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = Merge(l.entries, Outcome[T]{TempID: tempID})
}

// Update replaces the first value for which match returns true.
func (l *List[T]) Update(match func(T) bool, fn func(T) T) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, e := range l.entries {
		if match(e.Value) {
			l.entries[i].Value = fn(e.Value)
			return true
		}
	}
	return false
}

// Remove drops every value for which match returns true.
func (l *List[T]) Remove(match func(T) bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	kept := l.entries[:0:0]
	for _, e := range l.entries {
		if !match(e.Value) {
			kept = append(kept, e)
		}
	}
	l.entries = kept
}

// Entries returns a copy of the entries in display order.
func (l *List[T]) Entries() []Entry[T] {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Entry[T], len(l.entries))
	copy(out, l.entries)
	return out
}

// Items returns the values in display order.
func (l *List[T]) Items() []T {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]T, 0, len(l.entries))
	for _, e := range l.entries {
		out = append(out, e.Value)
	}
	return out
}

// Len returns the number of entries.
func (l *List[T]) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// PendingCount returns the number of placeholders.
func (l *List[T]) PendingCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	n := 0
	for _, e := range l.entries {
		if e.IsPending() {
			n++
		}
	}
	return n
}
