package pool

import (
	"context"
	"sync"
	"time"
)

// Queue is the blocking FIFO contract the pool drains jobs from. The pool
// treats queue implementations as an external collaborator — chanQueue
// below is the concrete implementation this module ships, grounded on the
// same channel-plus-select idiom the teacher's worker.tasks channel used,
// generalized to a single shared bounded queue instead of one channel per
// worker.
type Queue interface {
	// Offer enqueues job without blocking. ok is false if the queue is at
	// capacity (NewQueue gives a non-positive capacity a bounded default).
	Offer(job Job) (ok bool)
	// Take blocks until a job is available or ctx is done.
	Take(ctx context.Context) (job Job, ok bool)
	// Poll blocks up to timeout for a job, or until ctx is done.
	Poll(ctx context.Context, timeout time.Duration) (job Job, ok bool)
	// PollNow returns a job only if one is immediately available.
	PollNow() (job Job, ok bool)
	// Snapshot returns the jobs currently queued, oldest first, without
	// removing them. Best-effort under concurrent mutation.
	Snapshot() []Job
	// Len reports the number of jobs currently queued.
	Len() int
}

// chanQueue is a bounded FIFO (capacity <= 0 becomes 4096 in NewQueue) backed by
// a buffered channel for the fast offer/poll path, with a mutex-guarded
// slice kept only for Snapshot — mirroring the mutex-plus-slice bookkeeping
// style the teacher repo uses elsewhere for anything that needs to be
// iterated (consistencyhash's sorted key slice).
type chanQueue struct {
	ch chan Job

	mu   sync.Mutex
	snap []Job // mirrors the contents of ch, for Snapshot
}

// NewQueue returns a Queue with the given capacity. A non-positive capacity
// is treated as a large-but-bounded default (4096) — the pool's job is to
// manage back-pressure, not to offer a genuinely unbounded queue.
func NewQueue(capacity int) Queue {
	if capacity <= 0 {
		capacity = 4096
	}
	return &chanQueue{
		ch: make(chan Job, capacity),
	}
}

func (q *chanQueue) Offer(job Job) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	select {
	case q.ch <- job:
		q.snap = append(q.snap, job)
		return true
	default:
		return false
	}
}

func (q *chanQueue) Take(ctx context.Context) (Job, bool) {
	select {
	case job := <-q.ch:
		q.popSnap()
		return job, true
	case <-ctx.Done():
		return nil, false
	}
}

func (q *chanQueue) Poll(ctx context.Context, timeout time.Duration) (Job, bool) {
	if timeout <= 0 {
		return q.PollNow()
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case job := <-q.ch:
		q.popSnap()
		return job, true
	case <-timer.C:
		return nil, false
	case <-ctx.Done():
		return nil, false
	}
}

func (q *chanQueue) PollNow() (Job, bool) {
	select {
	case job := <-q.ch:
		q.popSnap()
		return job, true
	default:
		return nil, false
	}
}

func (q *chanQueue) Snapshot() []Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Job, len(q.snap))
	copy(out, q.snap)
	return out
}

func (q *chanQueue) Len() int {
	return len(q.ch)
}

// popSnap drops the oldest entry from the snapshot mirror. Offers always
// append and dequeues always come from the channel in FIFO order, so the
// mirror's head is always the job that was just taken off ch — comparing
// Job values for equality would panic for func-backed jobs (JobFunc),
// so position, not identity, is what keeps the mirror in sync.
func (q *chanQueue) popSnap() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.snap) > 0 {
		q.snap = q.snap[1:]
	}
}
