package pool

import (
	"time"

	"go.uber.org/zap"

	"github.com/ecloudclub/elastipool/option"
)

// ReservedHeuristic is the sentinel for Config.ReservedThreads that asks the
// pool to size the reservation facility itself.
const ReservedHeuristic = -1

// Config holds the pool's tuning knobs. Most fields are mutable at runtime
// through the Pool setters; a few (marked below) only take effect at Start.
type Config struct {
	MinThreads          int
	MaxThreads          int
	IdleTimeout         time.Duration // 0 disables shrink
	ReservedThreads     int           // >=0, or ReservedHeuristic; start-time only
	MaxShrinkCount      int           // >=1
	StopTimeout         time.Duration
	LowThreadsThreshold int
	QueueCapacity       int // start-time only
	NamePrefix          string
	DetailedDump        bool
	Logger              *zap.Logger
}

// NewConfig builds a Config from sane defaults plus the given options,
// using the same Option[T]/Apply pattern the teacher repo already provides
// as a standalone generic package.
func NewConfig(opts ...option.Option[Config]) *Config {
	cfg := &Config{
		MinThreads:          2,
		MaxThreads:          8,
		IdleTimeout:         60 * time.Second,
		ReservedThreads:     0,
		MaxShrinkCount:      1,
		StopTimeout:         5 * time.Second,
		LowThreadsThreshold: 1,
		QueueCapacity:       1024,
		NamePrefix:          "pool",
		Logger:              zap.NewNop(),
	}
	option.Apply(cfg, opts...)
	return cfg
}

func WithMinMaxThreads(min, max int) option.Option[Config] {
	return func(c *Config) {
		c.MinThreads = min
		c.MaxThreads = max
		if c.MinThreads > c.MaxThreads {
			c.MaxThreads = c.MinThreads
		}
	}
}

func WithIdleTimeout(d time.Duration) option.Option[Config] {
	return func(c *Config) { c.IdleTimeout = d }
}

func WithReservedThreads(n int) option.Option[Config] {
	return func(c *Config) { c.ReservedThreads = n }
}

func WithMaxShrinkCount(n int) option.Option[Config] {
	return func(c *Config) {
		if n < 1 {
			n = 1
		}
		c.MaxShrinkCount = n
	}
}

func WithStopTimeout(d time.Duration) option.Option[Config] {
	return func(c *Config) { c.StopTimeout = d }
}

func WithLowThreadsThreshold(n int) option.Option[Config] {
	return func(c *Config) { c.LowThreadsThreshold = n }
}

func WithQueueCapacity(n int) option.Option[Config] {
	return func(c *Config) { c.QueueCapacity = n }
}

func WithNamePrefix(name string) option.Option[Config] {
	return func(c *Config) { c.NamePrefix = name }
}

func WithDetailedDump(on bool) option.Option[Config] {
	return func(c *Config) { c.DetailedDump = on }
}

func WithLogger(l *zap.Logger) option.Option[Config] {
	return func(c *Config) {
		if l != nil {
			c.Logger = l
		}
	}
}

func (c *Config) validate() error {
	if c.MinThreads < 0 {
		return ErrInvalidConfig
	}
	if c.MaxThreads < c.MinThreads || c.MaxThreads < 1 {
		return ErrInvalidConfig
	}
	if c.MaxShrinkCount < 1 {
		return ErrInvalidConfig
	}
	if c.ReservedThreads < ReservedHeuristic {
		return ErrInvalidConfig
	}
	return nil
}
