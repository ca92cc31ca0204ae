package pool

import (
	"context"
	"io"
	"runtime"
	"time"

	"go.uber.org/zap"
)

// Start primes the pool with MinThreads workers and installs the
// reservation facility, if configured. Start may be called only once.
func (p *Pool) Start() error {
	p.lifecycleMu.Lock()
	if p.started {
		p.lifecycleMu.Unlock()
		return ErrAlreadyRunning
	}
	p.started = true
	p.stopped = false
	p.lifecycleMu.Unlock()

	p.state.set(0, 0)

	if p.cfg.ReservedThreads != 0 {
		p.tryExecVal.Store(TryExecutor(newReservedThreadExecutor(p.cfg.ReservedThreads)))
	}

	min := int(p.minThreads.Load())
	for i := 0; i < min; i++ {
		p.addCounts(1, 1)
		p.startWorker()
	}

	p.log.Info("pool started", zap.Int32("min_threads", p.minThreads.Load()), zap.Int32("max_threads", p.maxThreads.Load()))
	return nil
}

// IsStarted reports whether Start has been called (regardless of whether
// the pool has since stopped).
func (p *Pool) IsStarted() bool {
	p.lifecycleMu.Lock()
	defer p.lifecycleMu.Unlock()
	return p.started
}

// IsRunning reports whether the pool is started and has not begun
// stopping.
func (p *Pool) IsRunning() bool {
	hi, _ := p.state.get()
	return p.IsStarted() && hi != stopSentinel
}

// IsStopping reports whether Stop has been invoked (the sentinel is in
// place) but the pool has not yet fully drained.
func (p *Pool) IsStopping() bool {
	hi, _ := p.state.get()
	p.lifecycleMu.Lock()
	defer p.lifecycleMu.Unlock()
	return hi == stopSentinel && !p.stopped
}

// Close stops the pool using the configured StopTimeout. It satisfies
// io.Closer so a Pool can be deferred like any other closable resource.
func (p *Pool) Close() error {
	return p.Stop(time.Duration(p.stopTimeout.Load()))
}

// Stop drains in-flight work, unblocks idle workers, escalates to
// cancellation, and surfaces leftovers, all within timeout. It returns
// once every worker has exited or the grace period elapsed, whichever is
// first; workers still alive past the deadline are logged but not
// force-killed (Go cannot force-kill a goroutine).
func (p *Pool) Stop(timeout time.Duration) error {
	if closer, ok := p.tryExec().(*reservedThreadExecutor); ok {
		// close waits for leased jobs to finish; run it aside so it does
		// not hold Stop past its timeout.
		go closer.close()
	}
	p.tryExecVal.Store(TryExecutor(alwaysFalseExecutor{}))

	n := p.state.getAndSetHi(stopSentinel)

	if timeout > 0 && n > 0 {
		for i := int32(0); i < n; i++ {
			p.queue.Offer(noopJob{})
		}

		half := timeout / 2
		p.waitForWorkers(half)

		p.workersMu.Lock()
		handles := make([]*workerHandle, 0, len(p.workers))
		for _, h := range p.workers {
			handles = append(handles, h)
		}
		p.workersMu.Unlock()
		for _, h := range handles {
			h.interrupt()
		}

		p.waitForWorkers(timeout - half)
	}

	p.workersMu.Lock()
	stuck := len(p.workers)
	p.workersMu.Unlock()
	if stuck > 0 {
		fields := []zap.Field{zap.Int("stuck_workers", stuck)}
		if p.detailedDump.Load() {
			buf := make([]byte, 1<<16)
			buf = buf[:runtime.Stack(buf, true)]
			fields = append(fields, zap.ByteString("stack", buf))
		}
		p.log.Warn(ErrStuckWorker.Error(), fields...)
	}

	p.drainQueue()

	p.lifecycleMu.Lock()
	p.stopped = true
	p.lifecycleCV.Broadcast()
	p.lifecycleMu.Unlock()

	p.log.Info("pool stopped")
	return nil
}

// waitForWorkers polls the live-worker-set size until it reaches zero or
// budget elapses.
func (p *Pool) waitForWorkers(budget time.Duration) {
	deadline := time.Now().Add(budget)
	for time.Now().Before(deadline) {
		p.workersMu.Lock()
		n := len(p.workers)
		p.workersMu.Unlock()
		if n == 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// drainQueue empties whatever is left in the queue after workers have
// exited or been cancelled. A job is either run by a worker that picked it
// up before the stop sentinel went live, or closed here — never both,
// because drain only ever sees what the queue still holds once hi is
// already the sentinel.
func (p *Pool) drainQueue() {
	for {
		job, ok := p.queue.PollNow()
		if !ok {
			return
		}
		if _, isNoop := job.(noopJob); isNoop {
			continue
		}
		if closer, ok := job.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				p.log.Warn(ErrCloseFailed.Error(), zap.Error(err))
			}
		} else {
			p.log.Debug("job stopped without executing")
		}
	}
}

// Join blocks until the pool has finished stopping, or ctx is done.
func (p *Pool) Join(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.lifecycleMu.Lock()
		for p.started && !p.stopped {
			p.lifecycleCV.Wait()
		}
		p.lifecycleMu.Unlock()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
