package matrixlib

import (
	"sync"
	"sync/atomic"

	"gonum.org/v1/gonum/mat"
)

// DefaultRetainBytes is the spare-storage budget of the heap used by New.
// It keeps the small coefficient matrices pooled while full-image
// intermediates of any realistic size are returned to the garbage collector.
const DefaultRetainBytes = 256 << 10

// Heap hands out matrices that must be released explicitly with Delete,
// the way native image-library matrices are. Deleted backing storage is kept
// for reuse by later allocations of the same shape, up to a total byte
// budget; the oldest spares are evicted first.
//
// Thread safety: all methods are safe for concurrent use.
type Heap struct {
	mu       sync.Mutex
	spares   []spare // oldest first
	retained int64   // bytes held by spares
	budget   int64

	live   atomic.Int64
	allocs atomic.Int64
}

type shape struct {
	rows, cols int
}

type spare struct {
	key  shape
	data []float64
}

func sizeOf(data []float64) int64 {
	return int64(len(data)) * 8
}

// NewHeap creates a heap that retains at most maxBytes of spare backing
// storage. maxBytes <= 0 disables reuse: Delete frees every matrix.
func NewHeap(maxBytes int64) *Heap {
	return &Heap{budget: max(maxBytes, 0)}
}

// Alloc returns a zeroed rows×cols matrix. The caller owns it and must call
// Delete exactly once.
func (h *Heap) Alloc(rows, cols int) *Mat {
	key := shape{rows: rows, cols: cols}
	data := h.take(key)

	if data == nil {
		data = make([]float64, rows*cols)
	} else {
		clear(data)
	}

	h.live.Add(1)
	h.allocs.Add(1)
	return &Mat{heap: h, key: key, data: data, dense: mat.NewDense(rows, cols, data)}
}

// take removes and returns the newest spare of the given shape, or nil.
func (h *Heap) take(key shape) []float64 {
	h.mu.Lock()
	defer h.mu.Unlock()

	for i := len(h.spares) - 1; i >= 0; i-- {
		if h.spares[i].key != key {
			continue
		}
		data := h.spares[i].data
		h.spares = append(h.spares[:i], h.spares[i+1:]...)
		h.retained -= sizeOf(data)
		return data
	}
	return nil
}

func (h *Heap) put(key shape, data []float64) {
	h.live.Add(-1)

	size := sizeOf(data)
	if size > h.budget {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for h.retained+size > h.budget && len(h.spares) > 0 {
		h.retained -= sizeOf(h.spares[0].data)
		h.spares[0] = spare{}
		h.spares = h.spares[1:]
	}
	h.spares = append(h.spares, spare{key: key, data: data})
	h.retained += size
}

// Retained returns the bytes of spare storage currently held for reuse.
func (h *Heap) Retained() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.retained
}

// Live returns the number of matrices allocated and not yet deleted.
func (h *Heap) Live() int64 {
	return h.live.Load()
}

// Allocs returns the total number of allocations over the heap's lifetime.
func (h *Heap) Allocs() int64 {
	return h.allocs.Load()
}

// Mat is a heap-owned dense matrix.
type Mat struct {
	heap    *Heap
	key     shape
	data    []float64
	dense   *mat.Dense
	deleted atomic.Bool
}

// Dense returns the underlying gonum matrix. It must not be used after Delete.
func (m *Mat) Dense() *mat.Dense {
	return m.dense
}

// Delete returns the matrix to its heap. Calling Delete again is a no-op.
func (m *Mat) Delete() {
	if m == nil || !m.deleted.CompareAndSwap(false, true) {
		return
	}
	m.heap.put(m.key, m.data)
	m.dense, m.data = nil, nil
}

// guard collects matrices allocated during one transform and deletes all of
// them, newest first, when release runs.
type guard struct {
	heap *Heap
	mats []*Mat
}

func (g *guard) alloc(rows, cols int) *Mat {
	m := g.heap.Alloc(rows, cols)
	g.mats = append(g.mats, m)
	return m
}

func (g *guard) release() {
	for i := len(g.mats) - 1; i >= 0; i-- {
		g.mats[i].Delete()
	}
	g.mats = nil
}
