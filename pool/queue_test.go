package pool

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChanQueue_OfferTakeFIFO(t *testing.T) {
	q := NewQueue(4)
	var ran []string
	a := JobFunc(func() { ran = append(ran, "a") })
	b := JobFunc(func() { ran = append(ran, "b") })
	c := JobFunc(func() { ran = append(ran, "c") })

	require.True(t, q.Offer(a))
	require.True(t, q.Offer(b))
	require.True(t, q.Offer(c))
	assert.Equal(t, 3, q.Len())

	ctx := context.Background()
	got, ok := q.Take(ctx)
	require.True(t, ok)
	assert.Equal(t, 2, q.Len())
	got.Run()
	assert.Equal(t, []string{"a"}, ran, "the first job offered is the first taken")
}

func TestChanQueue_OfferAtCapacityFails(t *testing.T) {
	q := NewQueue(1)
	require.True(t, q.Offer(JobFunc(func() {})))
	assert.False(t, q.Offer(JobFunc(func() {})))
}

func TestChanQueue_NonPositiveCapacityDefaults(t *testing.T) {
	q := NewQueue(0).(*chanQueue)
	assert.Equal(t, 4096, cap(q.ch))
}

func TestChanQueue_TakeBlocksUntilOffer(t *testing.T) {
	q := NewQueue(1)
	ctx := context.Background()

	done := make(chan Job, 1)
	go func() {
		job, ok := q.Take(ctx)
		if ok {
			done <- job
		}
	}()

	time.Sleep(10 * time.Millisecond)
	require.True(t, q.Offer(JobFunc(func() {})))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Take never unblocked after Offer")
	}
}

func TestChanQueue_TakeHonorsContextCancellation(t *testing.T) {
	q := NewQueue(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok := q.Take(ctx)
	assert.False(t, ok)
}

func TestChanQueue_PollTimesOut(t *testing.T) {
	q := NewQueue(1)
	start := time.Now()
	_, ok := q.Poll(context.Background(), 20*time.Millisecond)
	assert.False(t, ok)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestChanQueue_PollNonPositiveTimeoutBehavesLikePollNow(t *testing.T) {
	q := NewQueue(1)
	_, ok := q.Poll(context.Background(), 0)
	assert.False(t, ok)

	require.True(t, q.Offer(JobFunc(func() {})))
	_, ok = q.Poll(context.Background(), 0)
	assert.True(t, ok)
}

func TestChanQueue_SnapshotReflectsOrderWithoutRemoving(t *testing.T) {
	q := NewQueue(4)
	require.True(t, q.Offer(JobFunc(func() {})))
	require.True(t, q.Offer(JobFunc(func() {})))

	snap := q.Snapshot()
	assert.Len(t, snap, 2)
	assert.Equal(t, 2, q.Len(), "Snapshot must not drain the queue")
}

func TestChanQueue_PopSnapTracksDequeues(t *testing.T) {
	q := NewQueue(4)
	require.True(t, q.Offer(JobFunc(func() {})))
	require.True(t, q.Offer(JobFunc(func() {})))

	_, ok := q.PollNow()
	require.True(t, ok)
	assert.Len(t, q.Snapshot(), 1)

	_, ok = q.PollNow()
	require.True(t, ok)
	assert.Empty(t, q.Snapshot())

	_, ok = q.PollNow()
	assert.False(t, ok)
}
