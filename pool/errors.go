package pool

import "errors"

var (
	// ErrRejected is returned by Execute when the pool is stopping/stopped,
	// or when the bounded queue refuses an Offer.
	ErrRejected = errors.New("pool: job rejected")
	// ErrInvalidConfig is returned by a setter when it would violate a
	// configuration invariant (e.g. max < min) or is called at the wrong
	// point in the pool's lifecycle.
	ErrInvalidConfig = errors.New("pool: invalid config")
	// ErrJobThrew is logged (never returned) when a job panics. The worker
	// that recovered it keeps running.
	ErrJobThrew = errors.New("pool: job panicked")
	// ErrCloseFailed is logged (never returned) when a drained io.Closer
	// job fails to close during Stop.
	ErrCloseFailed = errors.New("pool: job close failed")
	// ErrStuckWorker is logged (never returned) when a worker is still
	// alive after the stop grace period elapses.
	ErrStuckWorker = errors.New("pool: worker did not exit before stop timeout")
	// ErrNotRunning is returned by operations that require a started pool.
	ErrNotRunning = errors.New("pool: not running")
	// ErrAlreadyRunning is returned by Start when called twice.
	ErrAlreadyRunning = errors.New("pool: already running")
)
