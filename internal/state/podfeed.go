package state

import "sync"

// PodFeed tracks pod names published by the cluster controller when a
// monster pod comes up. New names accumulate until a consumer drains them,
// at which point they move to the seen list.
type PodFeed struct {
	mu   sync.Mutex
	seen []string
	pending []string
}

// NewPodFeed creates an empty feed.
func NewPodFeed() *PodFeed {
	return &PodFeed{}
}

// Add queues a pod name for the next drain.
func (f *PodFeed) Add(podName string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending = append(f.pending, podName)
}

// Drain returns the queued names and moves them to the seen list.
func (f *PodFeed) Drain() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := append([]string(nil), f.pending...)
	f.seen = append(f.seen, f.pending...)
	f.pending = nil
	return out
}

// Seen returns every name a consumer has drained so far.
func (f *PodFeed) Seen() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.seen...)
}

// Count returns the number of seen names.
func (f *PodFeed) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.seen)
}

// Reset clears both lists.
func (f *PodFeed) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen = nil
	f.pending = nil
}
