package pool

import (
	"sync"

	"github.com/ecloudclub/elastipool/heap"
)

// slotArena hands out the lowest currently-free non-negative integer index,
// giving every worker a small, stable, densely-packed identity. The linear
// shrink strategy indexes its per-worker idle-age bookkeeping by this slot
// instead of goroutine-local storage, which Go does not have.
type slotArena struct {
	mu        sync.Mutex
	free      *heap.MinHeap[int]
	watermark int
}

func newSlotArena() *slotArena {
	return &slotArena{free: heap.NewMinHeap[int]()}
}

// acquire returns the lowest free slot, growing the watermark if none of
// the previously released slots are available.
func (a *slotArena) acquire() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	if v, ok := a.free.Pop(); ok {
		return v
	}
	slot := a.watermark
	a.watermark++
	return slot
}

// release returns slot to the free set for reuse by a future worker.
func (a *slotArena) release(slot int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.free.Push(slot)
}

// capacity reports the highest slot index ever handed out, plus one — the
// size any slot-indexed array must have to safely index every live slot.
func (a *slotArena) capacity() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.watermark
}
