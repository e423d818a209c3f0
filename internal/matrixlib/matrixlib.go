// Package matrixlib implements the sepia strategy as one linear-algebra call:
// every pixel becomes a row of an N×4 float matrix that is multiplied by the
// transposed 4×4 homogeneous sepia matrix with gonum.
package matrixlib

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gogpu/sepia/pixel"
)

// ErrBackend is returned when the matrix library fails during a transform.
var ErrBackend = errors.New("matrixlib: backend failure")

// Option configures a Strategy.
type Option func(*Strategy)

// WithLogger sets the logger for diagnostics. Nil is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(s *Strategy) {
		if l != nil {
			s.log = l
		}
	}
}

// WithHeap makes the strategy allocate its intermediates from h.
func WithHeap(h *Heap) Option {
	return func(s *Strategy) {
		if h != nil {
			s.heap = h
		}
	}
}

// Strategy converts pixels to float rows, transforms them with a single
// matrix product and converts back with pixel.Quantize.
type Strategy struct {
	heap *Heap
	log  *slog.Logger

	// fault, when set, runs after each pipeline stage. Tests use it to
	// simulate library failures.
	fault func(stage string)
}

// New creates a matrix-library strategy with a private heap.
func New(opts ...Option) *Strategy {
	s := &Strategy{heap: NewHeap(DefaultRetainBytes), log: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Transform returns a new sepia-toned buffer. On a library failure it logs a
// diagnostic and returns a nil buffer with an error wrapping ErrBackend.
// Every intermediate matrix is deleted before Transform returns.
func (s *Strategy) Transform(src *pixel.Buffer) (dst *pixel.Buffer, err error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}

	g := &guard{heap: s.heap}
	defer g.release()
	defer func() {
		if r := recover(); r != nil {
			dst, err = nil, fmt.Errorf("%w: %v", ErrBackend, r)
			s.log.Error("matrixlib: transform failed", "err", r, "width", src.Width, "height", src.Height)
		}
	}()

	n := src.Len()

	// 8-bit samples to float rows; values outside [0,255] are possible after
	// the product, so the arithmetic cannot stay in 8 bits.
	floatSrc := g.alloc(n, pixel.Channels)
	data := floatSrc.Dense().RawMatrix().Data
	for i, v := range src.Pix {
		data[i] = float64(v)
	}
	s.check("convert")

	sep := pixel.Sepia()
	h := sep.Homogeneous()
	m := g.alloc(pixel.Channels, pixel.Channels)
	for i := range pixel.Channels {
		for j := range pixel.Channels {
			m.Dense().Set(i, j, h[i][j])
		}
	}
	s.check("matrix")

	floatDst := g.alloc(n, pixel.Channels)
	floatDst.Dense().Mul(floatSrc.Dense(), m.Dense().T())
	s.check("transform")

	out := &pixel.Buffer{Width: src.Width, Height: src.Height, Pix: make([]uint8, len(src.Pix))}
	for i, v := range floatDst.Dense().RawMatrix().Data {
		out.Pix[i] = pixel.Quantize(v)
	}
	s.check("quantize")

	s.log.Debug("matrixlib: transformed", "width", src.Width, "height", src.Height, "mats", len(g.mats))
	return out, nil
}

// Live returns the number of intermediate matrices not yet deleted.
func (s *Strategy) Live() int64 {
	return s.heap.Live()
}

// Close is a no-op; intermediates never outlive Transform.
func (s *Strategy) Close() error {
	return nil
}

func (s *Strategy) check(stage string) {
	if s.fault != nil {
		s.fault(stage)
	}
}
