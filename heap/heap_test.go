package heap

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMinHeap_PopOrder(t *testing.T) {
	h := NewMinHeap[int]()
	in := []int{5, 3, 8, 1, 9, 2, 7}
	for _, v := range in {
		h.Push(v)
	}

	want := append([]int(nil), in...)
	sort.Ints(want)

	var got []int
	for h.Len() > 0 {
		v, ok := h.Pop()
		assert.True(t, ok)
		got = append(got, v)
	}
	assert.Equal(t, want, got)
}

func TestMinHeap_PeekDoesNotRemove(t *testing.T) {
	h := NewMinHeap[int]()
	h.Push(4)
	h.Push(1)

	v, ok := h.Peek()
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, 2, h.Len())
}

func TestMinHeap_EmptyPop(t *testing.T) {
	h := NewMinHeap[string]()
	_, ok := h.Pop()
	assert.False(t, ok)
	_, ok = h.Peek()
	assert.False(t, ok)
}

func TestMinHeap_Random(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	h := NewMinHeap[int]()
	var in []int
	for i := 0; i < 200; i++ {
		v := r.Intn(1000)
		in = append(in, v)
		h.Push(v)
	}
	sort.Ints(in)

	for _, want := range in {
		got, ok := h.Pop()
		assert.True(t, ok)
		assert.Equal(t, want, got)
	}
}
