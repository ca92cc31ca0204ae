package pool

// Execute submits job for asynchronous execution. It fails with
// ErrNotRunning if Start has not been called, ErrRejected if the pool is
// stopping/stopped, or if the (bounded) queue refuses the Offer — in the
// latter case the (T, I) growth decision made for this submission is fully
// reversed before returning.
func (p *Pool) Execute(job Job) error {
	if !p.IsStarted() {
		return ErrNotRunning
	}
	for {
		hi, lo := p.state.get()
		if hi == stopSentinel {
			return ErrRejected
		}

		var startWorker int32
		if lo <= 0 && hi < p.maxThreads.Load() {
			startWorker = 1
		}

		if !p.state.compareAndSwap(hi, lo, hi+startWorker, lo+startWorker-1) {
			continue
		}

		if !p.queue.Offer(job) {
			// Reverse the counter change we just made. If the pool is
			// stopping by the time we get here, addCounts reports that
			// and we just log — the sentinel already makes this job
			// irrelevant.
			if !p.addCounts(-startWorker, 1-startWorker) {
				p.log.Debug("offer reversal observed a stopping pool")
			}
			return ErrRejected
		}

		if startWorker == 1 {
			p.startWorker()
		}
		return nil
	}
}

// TryExecute delegates to the external reservation facility. It never
// blocks and never touches the pool's own queue.
func (p *Pool) TryExecute(job Job) bool {
	return p.tryExec().TryExecute(job)
}

// addCounts is the single CAS-loop helper every (T, I) mutation other than
// submission's initial read-decide-CAS goes through. Returns false (doing
// only the lo-half update) once the pool has recorded the stop sentinel in
// hi, telling the caller not to attempt any further growth-related action.
func (p *Pool) addCounts(dT, dI int32) bool {
	for {
		hi, lo := p.state.get()
		if hi == stopSentinel {
			for {
				_, curLo := p.state.get()
				if p.state.compareAndSwap(stopSentinel, curLo, stopSentinel, curLo+dI) {
					return false
				}
			}
		}
		if p.state.compareAndSwap(hi, lo, hi+dT, lo+dI) {
			return true
		}
	}
}

// ensureThreads closes the race between "the last worker just exited" and
// "a new job just arrived": it guarantees T >= min(MinThreads, MaxThreads)
// and starts one more worker if there's unmet demand (I < 0) and room to
// grow.
func (p *Pool) ensureThreads() {
	for {
		hi, lo := p.state.get()
		if hi == stopSentinel {
			return
		}

		floor := p.minThreads.Load()
		maxThreads := p.maxThreads.Load()
		if maxThreads < floor {
			floor = maxThreads
		}

		needsFloor := hi < floor
		needsDemand := lo < 0 && hi < maxThreads

		if !needsFloor && !needsDemand {
			return
		}

		if !p.state.compareAndSwap(hi, lo, hi+1, lo+1) {
			continue
		}
		p.startWorker()
		// Loop again in case more than one worker is needed (e.g. to
		// reach the floor from zero).
	}
}
