package pool

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecute_RejectsBeforeStart(t *testing.T) {
	p, err := New(NewConfig())
	require.NoError(t, err)
	err = p.Execute(JobFunc(func() {}))
	assert.ErrorIs(t, err, ErrNotRunning)
}

func TestExecute_RejectsAfterStop(t *testing.T) {
	p, err := New(NewConfig(WithMinMaxThreads(1, 2)))
	require.NoError(t, err)
	require.NoError(t, p.Start())
	require.NoError(t, p.Stop(time.Second))

	err = p.Execute(JobFunc(func() {}))
	assert.ErrorIs(t, err, ErrRejected)
}

func TestExecute_GrowsWorkersUpToMax(t *testing.T) {
	p, err := New(NewConfig(WithMinMaxThreads(0, 3), WithIdleTimeout(0)))
	require.NoError(t, err)
	require.NoError(t, p.Start())
	defer p.Stop(time.Second)

	release := make(chan struct{})
	var started sync.WaitGroup
	started.Add(3)
	for i := 0; i < 3; i++ {
		require.NoError(t, p.Execute(JobFunc(func() {
			started.Done()
			<-release
		})))
	}

	waitOrTimeout(t, &started, time.Second)
	assert.Equal(t, 3, p.Threads())

	close(release)
}

func TestExecute_QueueFullReversesCounts(t *testing.T) {
	p, err := New(NewConfig(WithMinMaxThreads(1, 1), WithQueueCapacity(1), WithIdleTimeout(0)))
	require.NoError(t, err)
	require.NoError(t, p.Start())
	defer p.Stop(time.Second)

	release := make(chan struct{})
	defer close(release)

	require.NoError(t, p.Execute(JobFunc(func() { <-release })))
	require.NoError(t, p.Execute(JobFunc(func() {})))

	beforeHi, beforeLo := p.state.get()
	err = p.Execute(JobFunc(func() {}))
	assert.ErrorIs(t, err, ErrRejected)
	afterHi, afterLo := p.state.get()
	assert.Equal(t, beforeHi, afterHi)
	assert.Equal(t, beforeLo, afterLo)
}

func TestAddCounts_FalseAfterStopSentinel(t *testing.T) {
	p, err := New(NewConfig())
	require.NoError(t, err)
	p.state.set(stopSentinel, 0)

	ok := p.addCounts(5, 3)
	assert.False(t, ok)
	_, lo := p.state.get()
	assert.Equal(t, int32(3), lo)
}

func TestEnsureThreads_ReachesFloorFromZero(t *testing.T) {
	p, err := New(NewConfig(WithMinMaxThreads(2, 4), WithIdleTimeout(0)))
	require.NoError(t, err)
	p.state.set(0, 0)

	p.ensureThreads()
	eventually(t, time.Second, func() bool { return p.Threads() >= 2 })

	require.NoError(t, p.Stop(time.Second))
}

func waitOrTimeout(t *testing.T, wg *sync.WaitGroup, timeout time.Duration) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		t.Fatal("timed out waiting for group")
	}
}

func eventually(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition never became true")
}
