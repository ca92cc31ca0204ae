package pool

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()
	assert.Equal(t, 2, cfg.MinThreads)
	assert.Equal(t, 8, cfg.MaxThreads)
	assert.Equal(t, 60*time.Second, cfg.IdleTimeout)
	assert.Equal(t, 0, cfg.ReservedThreads)
	assert.Equal(t, 1, cfg.MaxShrinkCount)
	assert.NoError(t, cfg.validate())
}

func TestWithMinMaxThreads_ClampsMaxUpToMin(t *testing.T) {
	cfg := NewConfig(WithMinMaxThreads(10, 5))
	assert.Equal(t, 10, cfg.MinThreads)
	assert.Equal(t, 10, cfg.MaxThreads)
}

func TestWithMaxShrinkCount_ClampsBelowOne(t *testing.T) {
	cfg := NewConfig(WithMaxShrinkCount(0))
	assert.Equal(t, 1, cfg.MaxShrinkCount)
	cfg = NewConfig(WithMaxShrinkCount(-5))
	assert.Equal(t, 1, cfg.MaxShrinkCount)
}

func TestWithLogger_NilIsIgnored(t *testing.T) {
	cfg := NewConfig(WithLogger(nil))
	assert.NotNil(t, cfg.Logger)
}

func TestConfig_Validate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     *Config
		wantErr bool
	}{
		{"negative min", &Config{MinThreads: -1, MaxThreads: 1, MaxShrinkCount: 1}, true},
		{"max below min", &Config{MinThreads: 5, MaxThreads: 2, MaxShrinkCount: 1}, true},
		{"zero max", &Config{MinThreads: 0, MaxThreads: 0, MaxShrinkCount: 1}, true},
		{"shrink count zero", &Config{MinThreads: 0, MaxThreads: 1, MaxShrinkCount: 0}, true},
		{"reserved below heuristic", &Config{MinThreads: 0, MaxThreads: 1, MaxShrinkCount: 1, ReservedThreads: -2}, true},
		{"valid", &Config{MinThreads: 1, MaxThreads: 2, MaxShrinkCount: 1, ReservedThreads: ReservedHeuristic}, false},
	}
	for _, c := range cases {
		err := c.cfg.validate()
		if c.wantErr {
			assert.ErrorIs(t, err, ErrInvalidConfig, c.name)
		} else {
			assert.NoError(t, err, c.name)
		}
	}
}

func TestNew_DefaultsNilLoggerToNop(t *testing.T) {
	p, err := New(&Config{MinThreads: 1, MaxThreads: 1, MaxShrinkCount: 1})
	assert := assert.New(t)
	assert.NoError(err)
	assert.NotNil(p.log)
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	_, err := New(&Config{MinThreads: 5, MaxThreads: 1})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNew_NilConfigUsesDefaults(t *testing.T) {
	p, err := New(nil)
	assert.NoError(t, err)
	assert.Equal(t, 2, p.MinThreads())
	assert.Equal(t, 8, p.MaxThreads())
}

func TestWithLogger_AppliedLogger(t *testing.T) {
	l := zap.NewExample()
	cfg := NewConfig(WithLogger(l))
	assert.Same(t, l, cfg.Logger)
}
