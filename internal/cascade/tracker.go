// Package cascade tracks option lists that depend on a parent selection, such
// as gewogs per dzongkhag or PEP sub-categories per category.
//
// A fetch is started with Begin while the caller still holds its own state
// lock, performed without any lock, and applied with Resolve. Resolve discards
// the response when the parent recorded for that key has since changed or the
// key was cleared, so a slow response for an old selection can never overwrite
// the options of the current one.
package cascade

import (
	"sync"

	"loanintake/internal/reference"
)

// Ticket identifies one dependent fetch.
type Ticket[K comparable] struct {
	Key    K
	Parent string
}

type entry struct {
	parent  string
	options []reference.Option
}

// Tracker holds the options of every key. The zero value is not usable; use
// New.
type Tracker[K comparable] struct {
	mu      sync.Mutex
	entries map[K]*entry
}

func New[K comparable]() *Tracker[K] {
	return &Tracker[K]{entries: make(map[K]*entry)}
}

// Begin records parent as the live selection for key and empties its options
// until the fetch resolves. ok is false for an empty parent, in which case the
// key is cleared and nothing needs fetching.
func (t *Tracker[K]) Begin(key K, parent string) (ticket Ticket[K], ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if parent == "" {
		delete(t.entries, key)
		return Ticket[K]{}, false
	}
	t.entries[key] = &entry{parent: parent, options: []reference.Option{}}
	return Ticket[K]{Key: key, Parent: parent}, true
}

// Resolve stores options for the ticket's key if the ticket is still current.
// It reports whether the options were applied.
func (t *Tracker[K]) Resolve(ticket Ticket[K], options []reference.Option) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[ticket.Key]
	if !ok || e.parent != ticket.Parent {
		return false
	}
	if options == nil {
		options = []reference.Option{}
	}
	e.options = options
	return true
}

// Options returns the options of key, or an empty list.
func (t *Tracker[K]) Options(key K) []reference.Option {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[key]
	if !ok {
		return []reference.Option{}
	}
	out := make([]reference.Option, len(e.options))
	copy(out, e.options)
	return out
}

// Parent returns the live parent of key.
func (t *Tracker[K]) Parent(key K) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if e, ok := t.entries[key]; ok {
		return e.parent
	}
	return ""
}

// Clear drops key. Responses still in flight for it are discarded.
func (t *Tracker[K]) Clear(key K) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, key)
}

// Prune drops every key for which match returns true.
func (t *Tracker[K]) Prune(match func(K) bool) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for k := range t.entries {
		if match(k) {
			delete(t.entries, k)
			n++
		}
	}
	return n
}

// Len reports the number of tracked keys.
func (t *Tracker[K]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}
