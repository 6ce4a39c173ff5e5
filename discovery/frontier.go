// Package discovery implements the concurrent topology-discovery engine: a
// deduplicating work frontier, a fixed worker pool draining it, and the
// orchestration which runs the pool to quiescence.
package discovery

import (
	"sync"
	"time"
)

// Frontier - Deduplicating work queue over device addresses. A device is in
// at most one of enqueued, in-flight (owned by the worker which dequeued it)
// or visited at any instant; once visited it never re-enters the queue.
type Frontier struct {
	mutex       sync.Mutex
	visited     map[string]bool
	enqueued    map[string]bool
	inflight    map[string]bool
	queue       []string
	outstanding int
	wake        chan struct{}
}

// NewFrontier - Create an empty frontier.
func NewFrontier() *Frontier {
	return &Frontier{
		visited:  make(map[string]bool),
		enqueued: make(map[string]bool),
		inflight: make(map[string]bool),
		wake:     make(chan struct{}, 1),
	}
}

// TryEnqueue - Queue a device unless it is already queued, being processed or
// visited. Returns false if the device was already seen. Safe for concurrent
// callers discovering the same neighbor simultaneously.
func (frontier *Frontier) TryEnqueue(host string) bool {
	frontier.mutex.Lock()
	if frontier.visited[host] || frontier.enqueued[host] || frontier.inflight[host] {
		frontier.mutex.Unlock()
		return false
	}
	frontier.enqueued[host] = true
	frontier.queue = append(frontier.queue, host)
	frontier.outstanding++
	metricFrontierDepth.Set(float64(len(frontier.queue)))
	frontier.mutex.Unlock()

	select {
	case frontier.wake <- struct{}{}:
	default:
	}
	return true
}

// Dequeue - Pop the next queued device, blocking up to pollInterval when the
// queue is empty so callers can observe the shutdown signal. The dequeued
// device transitions to in-flight ownership by the caller, who must call
// MarkVisited exactly once for it.
func (frontier *Frontier) Dequeue(pollInterval time.Duration) (string, bool) {
	if host, ok := frontier.pop(); ok {
		return host, true
	}
	select {
	case <-frontier.wake:
		// Another worker may have raced us to the queued device
		return frontier.pop()
	case <-time.After(pollInterval):
		return "", false
	}
}

func (frontier *Frontier) pop() (string, bool) {
	frontier.mutex.Lock()
	defer frontier.mutex.Unlock()
	if len(frontier.queue) == 0 {
		return "", false
	}
	host := frontier.queue[0]
	frontier.queue = frontier.queue[1:]
	delete(frontier.enqueued, host)
	frontier.inflight[host] = true
	metricFrontierDepth.Set(float64(len(frontier.queue)))
	return host, true
}

// MarkVisited - Terminally mark a dequeued device as visited, regardless of
// processing outcome.
func (frontier *Frontier) MarkVisited(host string) {
	frontier.mutex.Lock()
	defer frontier.mutex.Unlock()
	frontier.visited[host] = true
	delete(frontier.inflight, host)
	frontier.outstanding--
	metricVisitedTotal.Inc()
}

// IsQuiescent - True iff no device is queued and none is in flight.
func (frontier *Frontier) IsQuiescent() bool {
	frontier.mutex.Lock()
	defer frontier.mutex.Unlock()
	return len(frontier.queue) == 0 && frontier.outstanding == 0
}

// VisitedCount - Number of devices which finished processing.
func (frontier *Frontier) VisitedCount() int {
	frontier.mutex.Lock()
	defer frontier.mutex.Unlock()
	return len(frontier.visited)
}
