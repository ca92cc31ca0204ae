package pool

import (
	"time"

	"go.uber.org/zap"
)

// startWorker spawns exactly one new worker goroutine, pre-registered in
// (T, I) by the caller (Start, Execute or ensureThreads). It acquires a slot,
// inserts it into the live-worker set, resets the shrink baseline for that
// slot, then starts the goroutine — in that order, so a concurrent
// ThreadDump never observes a slot without a handle.
func (p *Pool) startWorker() {
	slot := p.arena.acquire()
	h := &workerHandle{slot: slot, tag: newStackTag(TagSelecting)}

	p.workersMu.Lock()
	p.workers[slot] = h
	p.workersMu.Unlock()

	p.shrink().Init(slot)

	p.wg.Add(1)
	go p.runWorker(h)
}

// runWorker is the loop every worker goroutine executes: poll, run,
// rebalance the (T, I) counters, ask the shrink strategy whether it may
// exit, repeat. See SPEC_FULL.md §4.5 for the line-by-line rationale.
//
// Every poll/take below blocks on a context freshly minted for that one
// call (h.renewCancel). This keeps InterruptWorker's cancellation scoped
// to whichever call is currently in flight — cancelling it never leaves a
// permanently-done context behind for the worker's next iteration to
// immediately (and repeatedly) observe as "done".
func (p *Pool) runWorker(h *workerHandle) {
	defer p.wg.Done()

	pruneOnExit := p.shrink().OnIdle(h.slot)
	wasIdle := true

loop:
	for {
		hi, _ := p.state.get()
		if hi == stopSentinel {
			break
		}

		h.tag.set(TagIdle)
		idleTimeout := time.Duration(p.idleTimeout.Load())
		ctx := h.renewCancel()

		var job Job
		var ok bool
		if idleTimeout > 0 {
			job, ok = p.queue.Poll(ctx, idleTimeout)
		} else {
			job, ok = p.queue.Take(ctx)
		}
		if !ok && ctx.Err() != nil {
			p.log.Debug("worker poll interrupted", zap.Int("slot", h.slot))
		}

		if ok {
			h.tag.set(TagRunning)
			wasIdle = false
			pruneOnExit = p.shrink().OnBusy(h.slot)

			for {
				p.runOne(job)
				if still := p.addCounts(0, 1); !still {
					// Pool is stopping; bail without re-idling further.
					break loop
				}
				wasIdle = true
				job, ok = p.queue.PollNow()
				if !ok {
					break
				}
				h.tag.set(TagRunning)
			}
			pruneOnExit = p.shrink().OnIdle(h.slot)
			wasIdle = true
		}

		if p.shrink().Evict(h.slot, idleTimeout, int(p.maxShrinkCount.Load())) {
			pruneOnExit = false
			break
		}
	}

	if pruneOnExit {
		p.shrink().Prune(h.slot)
	}

	p.workersMu.Lock()
	delete(p.workers, h.slot)
	p.workersMu.Unlock()
	p.arena.release(h.slot)

	dLo := int32(0)
	if wasIdle {
		dLo = -1
	}
	p.addCounts(-1, dLo)

	p.ensureThreads()
}

// runOne executes job through the configured hook, logging (never
// propagating) a panic.
func (p *Pool) runOne(job Job) {
	if err := p.runJobHook(job); err != nil {
		p.log.Warn("job panicked", zap.Error(err))
	}
}
