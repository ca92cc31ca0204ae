// Package pool implements a bounded, elastic worker pool for the
// request-processing path of a network server. Jobs are submitted
// concurrently by many producers; a dynamically sized set of worker
// goroutines drains them from a blocking FIFO queue and runs them. The
// pool grows on demand up to MaxThreads, shrinks back toward MinThreads
// under a pluggable shrink strategy, and can delegate submissions to an
// external reservation facility via TryExecute.
//
// It is not a futures executor: jobs have no return value and cannot be
// chained, cancelled individually, or prioritized. The only cancellation
// surface is pool-wide, via Stop.
package pool

import (
	"context"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// stopSentinel is the hi-word value that marks the pool as stopping or
// stopped. No further growth is permitted once T reaches this value, and
// every worker loop treats it as the exit signal.
const stopSentinel = int32(math.MinInt32)

// workerHandle is the live-worker-set entry for one running worker
// goroutine: its slot identity, the stack tag rendered by ThreadDump, and
// the cancel func for whichever per-call context the worker is currently
// blocked on. renewCancel replaces it every poll cycle (called from
// runWorker in worker.go), so interrupting it only unblocks the in-flight
// poll/take, never the worker's entire future lifetime.
type workerHandle struct {
	slot int
	tag  *stackTag

	cancelMu sync.Mutex
	cancel   context.CancelFunc
}

// renewCancel installs a fresh cancelable context as the one the worker is
// about to block on, returning it. The previous context (if any) is left
// alone; callers only ever use the returned one.
func (h *workerHandle) renewCancel() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	h.cancelMu.Lock()
	h.cancel = cancel
	h.cancelMu.Unlock()
	return ctx
}

// interrupt cancels whichever per-call context is currently installed, if
// any, and reports whether it found one to cancel.
func (h *workerHandle) interrupt() bool {
	h.cancelMu.Lock()
	cancel := h.cancel
	h.cancelMu.Unlock()
	if cancel == nil {
		return false
	}
	cancel()
	return true
}

// Pool is a bounded, elastic worker pool. The zero value is not usable;
// construct with New.
type Pool struct {
	cfg *Config
	log *zap.Logger

	state biInteger // (T, I) per §3 of the design doc
	queue Queue

	arena     *slotArena
	shrinkVal atomic.Value // holds ShrinkStrategy; swapped by SetIdleTimeout/SetMaxShrinkCount

	// Runtime-tunable knobs mirrored out of cfg into atomics so the hot
	// paths (runWorker, Execute, ensureThreads) never take a lock to read
	// them. cfg itself remains the source of truth for start-time-only
	// fields (QueueCapacity, ReservedThreads, NamePrefix), guarded by
	// lifecycleMu.
	minThreads          atomic.Int32
	maxThreads          atomic.Int32
	idleTimeout         atomic.Int64 // nanoseconds; 0 disables shrink
	maxShrinkCount      atomic.Int32
	stopTimeout         atomic.Int64
	lowThreadsThreshold atomic.Int32
	detailedDump        atomic.Bool

	workersMu sync.Mutex
	workers   map[int]*workerHandle

	runJobHook func(Job) error // overridable for instrumentation; defaults to runJobRecover

	tryExecVal atomic.Value // holds TryExecutor; swapped by Start/Stop

	lifecycleMu sync.Mutex
	lifecycleCV *sync.Cond
	started     bool
	stopped     bool

	wg sync.WaitGroup // counts live worker goroutines; Stop's join phase polls workers instead
}

// New constructs a Pool from cfg. The pool is not started; call Start.
func New(cfg *Config) (*Pool, error) {
	if cfg == nil {
		cfg = NewConfig()
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Pool{
		cfg:     cfg,
		log:     logger,
		queue:   NewQueue(cfg.QueueCapacity),
		arena:   newSlotArena(),
		workers: make(map[int]*workerHandle),
	}
	p.tryExecVal.Store(TryExecutor(alwaysFalseExecutor{}))
	p.shrinkVal.Store(NewShrinkStrategy(cfg.IdleTimeout, cfg.MaxShrinkCount))
	p.minThreads.Store(int32(cfg.MinThreads))
	p.maxThreads.Store(int32(cfg.MaxThreads))
	p.idleTimeout.Store(int64(cfg.IdleTimeout))
	p.maxShrinkCount.Store(int32(cfg.MaxShrinkCount))
	p.stopTimeout.Store(int64(cfg.StopTimeout))
	p.lowThreadsThreshold.Store(int32(cfg.LowThreadsThreshold))
	p.detailedDump.Store(cfg.DetailedDump)
	p.runJobHook = runJobRecover
	p.lifecycleCV = sync.NewCond(&p.lifecycleMu)
	return p, nil
}

// shrink returns the currently installed shrink strategy.
func (p *Pool) shrink() ShrinkStrategy {
	return p.shrinkVal.Load().(ShrinkStrategy)
}

// tryExec returns the currently installed reservation facility.
func (p *Pool) tryExec() TryExecutor {
	return p.tryExecVal.Load().(TryExecutor)
}

// SetRunJobHook overrides the per-job execution hook (default recovers
// panics via runJobRecover). Intended for instrumentation — pre/post
// timing, metrics — not for changing job semantics.
func (p *Pool) SetRunJobHook(hook func(Job) error) {
	if hook == nil {
		hook = runJobRecover
	}
	p.runJobHook = hook
}
