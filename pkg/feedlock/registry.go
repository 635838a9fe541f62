// Package feedlock provides the Feed Lock Registry (spec.md §4.5): a
// per-label mutex so that a scheduled refresh and a forced refresh for the
// same feed never run concurrently, while refreshes for different feeds
// proceed independently.
//
// golang.org/x/sync/singleflight was considered and rejected: singleflight
// coalesces concurrent callers into one shared call and one shared result,
// which is the opposite of what spec.md §8's concurrent-force-fetch
// property requires — two overlapping calls for the same label must run
// one after the other, each doing its own fetch, not share one fetch
// between them. A plain per-label *sync.Mutex gives that serialization
// directly.
package feedlock

import "sync"

// Registry hands out one *sync.Mutex per feed label, created lazily and
// reused for the life of the process.
type Registry struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewRegistry builds an empty Registry.
func NewRegistry() *Registry {
	return &Registry{locks: make(map[string]*sync.Mutex)}
}

// lockFor returns the mutex for label, creating it on first use.
func (r *Registry) lockFor(label string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.locks[label]
	if !ok {
		l = &sync.Mutex{}
		r.locks[label] = l
	}
	return l
}

// Acquire blocks until label's lock is held and returns a function that
// releases it. Callers must defer the release:
//
//	release := registry.Acquire(label)
//	defer release()
func (r *Registry) Acquire(label string) func() {
	l := r.lockFor(label)
	l.Lock()
	return l.Unlock
}
