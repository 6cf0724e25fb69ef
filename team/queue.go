package team

import "sync"

// Queue is the FIFO activation queue that decides which role runs next.
// A role can hold at most one pending entry at a time: pushing a role that
// is already queued is a no-op. Popping removes the head and frees the role
// for re-enqueueing, so a role can be activated again later in the run.
type Queue struct {
	mu      sync.Mutex
	order   []string
	pending map[string]bool
}

// NewQueue constructs an empty activation queue.
func NewQueue() *Queue {
	return &Queue{pending: make(map[string]bool)}
}

// Push enqueues the role unless it already has a pending entry. Returns
// whether the role was actually added.
func (q *Queue) Push(role string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.pending[role] {
		return false
	}
	q.pending[role] = true
	q.order = append(q.order, role)
	return true
}

// Pop removes and returns the head of the queue. The second return is false
// when the queue is empty.
func (q *Queue) Pop() (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.order) == 0 {
		return "", false
	}
	role := q.order[0]
	q.order = q.order[1:]
	delete(q.pending, role)
	return role, true
}

// Len returns the number of pending activations.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.order)
}

// Pending reports whether the role currently has a queued activation.
func (q *Queue) Pending(role string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pending[role]
}
