package pool

import "time"

// Threads reports the current total worker count (T).
func (p *Pool) Threads() int {
	hi, _ := p.state.get()
	if hi == stopSentinel {
		return 0
	}
	return int(hi)
}

// IdleThreads reports the number of workers currently parked waiting for
// work. It never goes negative even though the internal I counter can,
// since a negative I represents unmet demand rather than idle capacity.
func (p *Pool) IdleThreads() int {
	_, lo := p.state.get()
	if lo < 0 {
		return 0
	}
	return int(lo)
}

// ReadyThreads reports the capacity immediately available to run a job
// right now: idle core workers plus idle reserved workers.
func (p *Pool) ReadyThreads() int {
	return p.IdleThreads() + p.AvailableReservedThreads()
}

// BusyThreads reports the number of workers currently running a job.
func (p *Pool) BusyThreads() int {
	busy := p.Threads() - p.IdleThreads()
	if busy < 0 {
		return 0
	}
	return busy
}

// UtilizedThreads reports how many of the pool's threads are doing real
// work right now: every thread that is neither leased out to the
// reservation facility nor immediately ready to pick up a job.
func (p *Pool) UtilizedThreads() int {
	utilized := p.Threads() - p.LeasedThreads() - p.ReadyThreads()
	if utilized < 0 {
		return 0
	}
	return utilized
}

// MaxThreads reports the configured upper bound on worker count.
func (p *Pool) MaxThreads() int {
	return int(p.maxThreads.Load())
}

// MinThreads reports the configured lower bound on worker count.
func (p *Pool) MinThreads() int {
	return int(p.minThreads.Load())
}

// UtilizationRate reports UtilizedThreads / (MaxThreads − LeasedThreads),
// in [0, 1] — the fraction of the pool's non-leased capacity that is
// currently doing real work. Returns 0 if the denominator is not positive
// (e.g. every thread is leased out).
func (p *Pool) UtilizationRate() float64 {
	denom := p.MaxThreads() - p.LeasedThreads()
	if denom <= 0 {
		return 0
	}
	return float64(p.UtilizedThreads()) / float64(denom)
}

// QueueSize reports the number of jobs currently waiting in the queue,
// derived from the (T, I) counters as max(0, -I).
func (p *Pool) QueueSize() int {
	_, lo := p.state.get()
	if lo >= 0 {
		return 0
	}
	return int(-lo)
}

// MaxReservedThreads reports the capacity of the reservation facility
// installed at Start (0 if ReservedThreads == 0 or the pool isn't running).
func (p *Pool) MaxReservedThreads() int {
	return p.tryExec().Capacity()
}

// AvailableReservedThreads reports how many reserved workers are idle.
func (p *Pool) AvailableReservedThreads() int {
	return p.tryExec().Available()
}

// LeasedThreads reports how many reserved workers are currently running a
// job leased through TryExecute.
func (p *Pool) LeasedThreads() int {
	return p.tryExec().Leased()
}

// MaxLeasedThreads reports the upper bound on LeasedThreads, which is the
// same as the reservation facility's capacity.
func (p *Pool) MaxLeasedThreads() int {
	return p.tryExec().Capacity()
}

// IsLowOnThreads reports whether the pool's spare capacity — room left to
// grow, plus threads ready to pick up work right now, minus the jobs
// already queued and waiting — has fallen to or below LowThreadsThreshold.
func (p *Pool) IsLowOnThreads() bool {
	spare := (p.MaxThreads() - p.Threads()) + p.ReadyThreads() - p.QueueSize()
	return spare <= int(p.lowThreadsThreshold.Load())
}

// SetMinThreads adjusts the lower bound on worker count, raising MaxThreads
// to n when n exceeds it. On a running pool it then calls ensureThreads,
// which starts workers right away to reach the new floor.
func (p *Pool) SetMinThreads(n int) error {
	if n < 0 {
		return ErrInvalidConfig
	}
	if n > p.MaxThreads() {
		p.maxThreads.Store(int32(n))
	}
	p.minThreads.Store(int32(n))
	if p.IsRunning() {
		p.ensureThreads()
	}
	return nil
}

// SetMaxThreads adjusts the upper bound on worker count.
func (p *Pool) SetMaxThreads(n int) error {
	if n < 1 || n < p.MinThreads() {
		return ErrInvalidConfig
	}
	p.maxThreads.Store(int32(n))
	return nil
}

// SetIdleTimeout changes how long an idle worker waits before becoming
// eligible for eviction, and re-selects the shrink strategy to match (0
// disables shrink entirely, matching NewShrinkStrategy's own rule).
func (p *Pool) SetIdleTimeout(d time.Duration) {
	p.idleTimeout.Store(int64(d))
	p.shrinkVal.Store(NewShrinkStrategy(d, int(p.maxShrinkCount.Load())))
}

// SetMaxShrinkCount changes how many workers may be evicted per shrink
// window, and re-selects the shrink strategy to match.
func (p *Pool) SetMaxShrinkCount(n int) error {
	if n < 1 {
		return ErrInvalidConfig
	}
	p.maxShrinkCount.Store(int32(n))
	p.shrinkVal.Store(NewShrinkStrategy(time.Duration(p.idleTimeout.Load()), n))
	return nil
}

// SetReservedThreads changes the reservation facility's target capacity.
// Only valid while the pool is not running, since the facility is built
// once at Start.
func (p *Pool) SetReservedThreads(n int) error {
	if n < ReservedHeuristic {
		return ErrInvalidConfig
	}
	if p.IsRunning() {
		return ErrInvalidConfig
	}
	p.cfg.ReservedThreads = n
	return nil
}

// SetStopTimeout changes the grace period Close uses when calling Stop.
func (p *Pool) SetStopTimeout(d time.Duration) {
	p.stopTimeout.Store(int64(d))
}

// SetLowThreadsThreshold changes the spare-capacity threshold IsLowOnThreads
// compares against.
func (p *Pool) SetLowThreadsThreshold(n int) {
	p.lowThreadsThreshold.Store(int32(n))
}

// SetNamePrefix changes the prefix used to label worker goroutines in
// diagnostics. Only valid while the pool is not running.
func (p *Pool) SetNamePrefix(name string) error {
	if p.IsRunning() {
		return ErrInvalidConfig
	}
	p.cfg.NamePrefix = name
	return nil
}

// SetDetailedDump toggles whether Stop logs a full goroutine stack dump
// when workers are still stuck past the grace period.
func (p *Pool) SetDetailedDump(on bool) {
	p.detailedDump.Store(on)
}
