package pool

import (
	"sync"
	"sync/atomic"
	"time"
)

// ShrinkStrategy decides when an idle worker is allowed to exit. The pool
// selects one of three variants based on IdleTimeout/MaxShrinkCount; see
// NewShrinkStrategy.
type ShrinkStrategy interface {
	// OnIdle is called by a worker transitioning to idle. The returned
	// bool tells the worker whether Prune must be called on any
	// non-eviction exit path.
	OnIdle(slot int) (prunesOnExit bool)
	// OnBusy is called when a worker transitions idle -> busy. Always
	// returns false.
	OnBusy(slot int) (prunesOnExit bool)
	// Evict asks whether the worker holding slot may exit now. On true,
	// the strategy has already accounted for the shrinkage and the
	// caller must exit without calling Prune.
	Evict(slot int, idleTimeout time.Duration, maxEvictCount int) (shouldExit bool)
	// Prune cleans up per-slot residue when a worker exits through a path
	// other than a successful Evict (panic, shutdown, spurious wakeup).
	Prune(slot int)
	// Init resets the strategy's baseline for slot. Called whenever a new
	// worker starts (including the MinThreads workers Start primes), to
	// guard against thrash right after spawn. The pool makes no separate
	// call at Start; until the first Init, a strategy's baseline is the
	// time it was constructed.
	Init(slot int)
}

// NewShrinkStrategy selects a strategy by configuration, per spec: no
// shrink when idleTimeout <= 0, a single global rate limit when
// maxShrinkCount == 1, otherwise the linear per-slot/per-window strategy.
func NewShrinkStrategy(idleTimeout time.Duration, maxShrinkCount int) ShrinkStrategy {
	switch {
	case idleTimeout <= 0:
		return noopShrink{}
	case maxShrinkCount <= 1:
		return newDefaultShrink()
	default:
		return newLinearShrink()
	}
}

// noopShrink never authorizes an eviction; used when IdleTimeout <= 0.
type noopShrink struct{}

func (noopShrink) OnIdle(int) bool                   { return false }
func (noopShrink) OnBusy(int) bool                   { return false }
func (noopShrink) Evict(int, time.Duration, int) bool { return false }
func (noopShrink) Prune(int)                         {}
func (noopShrink) Init(int)                          {}

// defaultShrink is a single global rate limiter: at most one eviction per
// idle interval, pool-wide.
type defaultShrink struct {
	lastShrink atomic.Int64 // monotonic nanoseconds
}

func newDefaultShrink() *defaultShrink {
	d := &defaultShrink{}
	d.lastShrink.Store(time.Now().UnixNano())
	return d
}

func (d *defaultShrink) OnIdle(int) bool { return false }
func (d *defaultShrink) OnBusy(int) bool { return false }
func (d *defaultShrink) Prune(int)       {}

func (d *defaultShrink) Init(int) {
	d.lastShrink.Store(time.Now().UnixNano())
}

func (d *defaultShrink) Evict(_ int, idleTimeout time.Duration, _ int) bool {
	itNanos := int64(idleTimeout)
	for {
		last := d.lastShrink.Load()
		now := time.Now().UnixNano()
		if now-last <= itNanos {
			return false
		}
		// Advance the timeline by at least one interval, never further
		// behind than that — a plain "last = now" would let the timeline
		// drift under load and slow shrink artificially.
		next := last + itNanos
		if now-itNanos > next {
			next = now - itNanos
		}
		if d.lastShrink.CompareAndSwap(last, next) {
			return true
		}
	}
}

// linearShrink allows up to maxEvictCount evictions per idle interval,
// tracked per slot via an arena-indexed idle-age array rather than
// goroutine-local storage (Go has none).
type linearShrink struct {
	mu        sync.Mutex
	idleSince []int64 // 0 means "not idle" for that slot

	windowMu    sync.Mutex
	windowStart int64
	count       int32
}

func newLinearShrink() *linearShrink {
	return &linearShrink{windowStart: time.Now().UnixNano()}
}

func (l *linearShrink) ensureLen(slot int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if slot >= len(l.idleSince) {
		grown := make([]int64, slot+1)
		copy(grown, l.idleSince)
		l.idleSince = grown
	}
}

func (l *linearShrink) OnIdle(slot int) bool {
	l.ensureLen(slot)
	l.mu.Lock()
	l.idleSince[slot] = time.Now().UnixNano()
	l.mu.Unlock()
	return true
}

func (l *linearShrink) OnBusy(slot int) bool {
	l.ensureLen(slot)
	l.mu.Lock()
	l.idleSince[slot] = 0
	l.mu.Unlock()
	return false
}

func (l *linearShrink) Init(slot int) {
	l.ensureLen(slot)
	l.mu.Lock()
	l.idleSince[slot] = 0
	l.mu.Unlock()
}

func (l *linearShrink) Prune(slot int) {
	l.ensureLen(slot)
	l.mu.Lock()
	l.idleSince[slot] = 0
	l.mu.Unlock()
}

func (l *linearShrink) Evict(slot int, idleTimeout time.Duration, maxEvictCount int) bool {
	l.ensureLen(slot)

	l.mu.Lock()
	since := l.idleSince[slot]
	l.mu.Unlock()
	if since == 0 || time.Now().UnixNano()-since < int64(idleTimeout) {
		return false
	}

	l.windowMu.Lock()
	defer l.windowMu.Unlock()

	now := time.Now().UnixNano()
	if now-l.windowStart > int64(idleTimeout) {
		l.windowStart = now
		l.count = 0
	}
	if l.count >= int32(maxEvictCount) {
		return false
	}
	l.count++

	l.mu.Lock()
	l.idleSince[slot] = 0
	l.mu.Unlock()
	return true
}
