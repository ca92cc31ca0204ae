package pool

import (
	"reflect"

	"github.com/ecloudclub/elastipool/reflectx"
)

// WorkerSnapshot is one row of a ThreadDump: a live worker's slot and its
// compressed stack tag.
type WorkerSnapshot struct {
	Slot int    `json:"slot"`
	Tag  string `json:"tag"`
}

// DumpReport is the pool-wide diagnostic snapshot rendered by ThreadDump.
type DumpReport struct {
	Threads     int              `json:"threads"`
	IdleThreads int              `json:"idle_threads"`
	BusyThreads int              `json:"busy_threads"`
	QueueSize   int              `json:"queue_size"`
	Workers     []WorkerSnapshot `json:"workers"`
	Queue       []string         `json:"queue,omitempty"`
}

// ThreadDump produces a point-in-time diagnostic snapshot of the pool. When
// includeQueue is set, it also renders a best-effort label for every job
// currently sitting in the queue; label rendering never panics, even for a
// typed-nil JobFunc, because it goes through reflectx.IsNilValue before
// touching the value.
func (p *Pool) ThreadDump(includeQueue bool) DumpReport {
	p.workersMu.Lock()
	workers := make([]WorkerSnapshot, 0, len(p.workers))
	for slot, h := range p.workers {
		workers = append(workers, WorkerSnapshot{Slot: slot, Tag: h.tag.get()})
	}
	p.workersMu.Unlock()

	report := DumpReport{
		Threads:     p.Threads(),
		IdleThreads: p.IdleThreads(),
		BusyThreads: p.BusyThreads(),
		QueueSize:   p.QueueSize(),
		Workers:     workers,
	}

	if includeQueue {
		for _, job := range p.queue.Snapshot() {
			report.Queue = append(report.Queue, labelJob(job))
		}
	}

	return report
}

// labelJob renders a defensive, best-effort label for a queued job, never
// panicking even if job wraps a typed nil.
func labelJob(job Job) string {
	val := reflect.ValueOf(job)
	if reflectx.IsNilValue(val) {
		return "<nil>"
	}
	if _, ok := job.(noopJob); ok {
		return "<shutdown-sentinel>"
	}
	return val.Type().String()
}

// DumpWorker renders a single worker's current tag, or "" if slot isn't
// live.
func (p *Pool) DumpWorker(slot int) string {
	p.workersMu.Lock()
	defer p.workersMu.Unlock()
	h, ok := p.workers[slot]
	if !ok {
		return ""
	}
	return h.tag.get()
}

// InterruptWorker cancels a single live worker's current per-call context,
// unblocking whichever poll/take it is presently waiting on. It does not
// affect the worker beyond that one call: the worker mints a fresh context
// for its next poll cycle and resumes normally. This is a diagnostic escape
// hatch only — the normal shutdown path cancels every worker's current
// context as one step of Stop, not through this method.
func (p *Pool) InterruptWorker(slot int) bool {
	p.workersMu.Lock()
	h, ok := p.workers[slot]
	p.workersMu.Unlock()
	if !ok {
		return false
	}
	return h.interrupt()
}
