// Package scalar implements the reference sepia strategy: a direct loop over
// the flat RGBA samples, optionally striped across worker goroutines.
package scalar

import (
	"log/slog"

	"github.com/gogpu/sepia/internal/parallel"
	"github.com/gogpu/sepia/pixel"
)

// Option configures a Strategy.
type Option func(*Strategy)

// WithWorkers stripes rows across n goroutines. n <= 1 keeps the single
// sequential pass that serves as the performance baseline.
func WithWorkers(n int) Option {
	return func(s *Strategy) {
		s.workers = n
	}
}

// WithLogger sets the logger for diagnostics. Nil is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(s *Strategy) {
		if l != nil {
			s.log = l
		}
	}
}

// Strategy applies pixel.Sepia() to every pixel with plain Go loops.
// It has no fallible dependency and fails only on a malformed buffer.
type Strategy struct {
	workers int
	pool    *parallel.WorkerPool
	log     *slog.Logger
}

// New creates a scalar strategy.
func New(opts ...Option) *Strategy {
	s := &Strategy{workers: 1, log: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(s)
	}
	if s.workers > 1 {
		s.pool = parallel.NewWorkerPool(s.workers)
	}
	return s
}

// Transform returns a new buffer holding the sepia-toned copy of src.
// src is only read.
func (s *Strategy) Transform(src *pixel.Buffer) (*pixel.Buffer, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}

	dst := &pixel.Buffer{Width: src.Width, Height: src.Height, Pix: make([]uint8, len(src.Pix))}

	if s.pool == nil {
		apply(dst.Pix, src.Pix)
		s.log.Debug("scalar: transformed", "width", src.Width, "height", src.Height)
		return dst, nil
	}

	stride := src.Stride()
	stripes := parallel.Stripes(src.Height, s.pool.Workers())
	jobs := make([]func(), len(stripes))
	for i, st := range stripes {
		lo, hi := st.Y0*stride, st.Y1*stride
		jobs[i] = func() { apply(dst.Pix[lo:hi], src.Pix[lo:hi]) }
	}
	s.pool.Run(jobs)

	s.log.Debug("scalar: transformed", "width", src.Width, "height", src.Height, "stripes", len(stripes))
	return dst, nil
}

// Close stops the worker pool, if any.
func (s *Strategy) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

// apply walks src in strides of four samples and writes the transformed
// pixels to dst. Alpha is copied unchanged.
func apply(dst, src []uint8) {
	m := pixel.Sepia()
	for i := 0; i+3 < len(src); i += pixel.Channels {
		dst[i], dst[i+1], dst[i+2] = m.Apply(src[i], src[i+1], src[i+2])
		dst[i+3] = src[i+3]
	}
}
