// Package tensorbatch implements the sepia strategy as a batched matrix
// multiplication over a reshaped tensor, using the born tensor library.
//
// The pipeline drops alpha, flattens the image to an N×3 matrix of RGB row
// vectors, multiplies by the transposed sepia matrix, clamps, and reshapes
// back to H×W×3. Computation runs on its own goroutine; the readback into a
// pixel buffer is the only asynchronous step and callers await it with
// Pending.Wait.
package tensorbatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/born-ml/born/backend/cpu"
	"github.com/born-ml/born/tensor"

	"github.com/gogpu/sepia/pixel"
)

// Errors returned by the tensor strategy.
var (
	// ErrBackend is returned when the tensor backend fails during a transform.
	ErrBackend = errors.New("tensorbatch: backend failure")

	// ErrConsumed is returned by a second Wait on the same Pending.
	ErrConsumed = errors.New("tensorbatch: result already consumed")
)

// AlphaPolicy decides the output alpha channel, which the tensor pipeline
// does not compute.
type AlphaPolicy uint8

const (
	// AlphaOpaque writes 255 to every output alpha sample, as rendering a
	// three-channel tensor does.
	AlphaOpaque AlphaPolicy = iota

	// AlphaPreserve copies the source alpha samples.
	AlphaPreserve
)

// String returns the policy name.
func (a AlphaPolicy) String() string {
	switch a {
	case AlphaOpaque:
		return "opaque"
	case AlphaPreserve:
		return "preserve"
	default:
		return fmt.Sprintf("AlphaPolicy(%d)", uint8(a))
	}
}

// ParseAlphaPolicy converts "opaque" or "preserve" to an AlphaPolicy.
func ParseAlphaPolicy(s string) (AlphaPolicy, error) {
	switch s {
	case "opaque":
		return AlphaOpaque, nil
	case "preserve":
		return AlphaPreserve, nil
	default:
		return 0, fmt.Errorf("tensorbatch: unknown alpha policy %q", s)
	}
}

type (
	backend = *cpu.Backend
	result  = *tensor.Tensor[int32, backend]
)

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

// WithAlpha sets the output alpha policy. The default is AlphaOpaque.
func WithAlpha(a AlphaPolicy) Option {
	return func(s *Strategy) {
		s.alpha = a
	}
}

// WithTracker makes the strategy count its tensors in tr.
func WithTracker(tr *Tracker) Option {
	return func(s *Strategy) {
		if tr != nil {
			s.tracker = tr
		}
	}
}

// Strategy runs the sepia transform as tensor operations.
type Strategy struct {
	be      backend
	tracker *Tracker
	alpha   AlphaPolicy
	log     *slog.Logger

	// fault, when set, runs after each pipeline stage. Tests use it to
	// simulate backend failures.
	fault func(stage string)
}

// New creates a tensor strategy on the born CPU backend.
func New(opts ...Option) *Strategy {
	s := &Strategy{
		be:      cpu.New(),
		tracker: &Tracker{},
		alpha:   AlphaOpaque,
		log:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Alpha returns the configured alpha policy.
func (s *Strategy) Alpha() AlphaPolicy {
	return s.alpha
}

// Live returns the number of tensors allocated and not yet released.
func (s *Strategy) Live() int64 {
	return s.tracker.Live()
}

// Close is a no-op; every tensor is released by its scope or by Wait.
func (s *Strategy) Close() error {
	return nil
}

// Transform submits src and waits for the result.
func (s *Strategy) Transform(ctx context.Context, src *pixel.Buffer) (*pixel.Buffer, error) {
	return s.Submit(src).Wait(ctx)
}

// Submit starts the transform of src on a separate goroutine and returns
// immediately. src must not be modified until Wait returns.
func (s *Strategy) Submit(src *pixel.Buffer) *Pending {
	p := &Pending{s: s, src: src, done: make(chan struct{})}

	if err := src.Validate(); err != nil {
		p.err = err
		close(p.done)
		return p
	}

	go func() {
		defer close(p.done)
		p.out, p.err = s.compute(src)
		if p.err != nil {
			s.log.Error("tensorbatch: transform failed", "err", p.err, "width", src.Width, "height", src.Height)
		}
	}()
	return p
}

// compute builds the result tensor. Every intermediate is tracked by the
// scope and released on return; only the H×W×3 int32 result escapes.
func (s *Strategy) compute(src *pixel.Buffer) (result, error) {
	w, h, n := src.Width, src.Height, src.Len()

	return Tidy(s.tracker, func(sc *Scope) (result, error) {
		pix, err := tensor.FromSlice[uint8](src.Pix, tensor.Shape{h, w, pixel.Channels}, s.be)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBackend, err)
		}
		Track(sc, pix)

		// Drop alpha: split the channel axis and keep R, G, B.
		channels := pix.Chunk(pixel.Channels, 2)
		for _, c := range channels {
			Track(sc, c)
		}
		rgb := Track(sc, tensor.Cat(channels[:3], 2))
		s.check("slice")

		rows := Track(sc, Track(sc, rgb.Float64()).Reshape(n, 3))

		weights, err := tensor.FromSlice[float64](flatten(pixel.Sepia()), tensor.Shape{3, 3}, s.be)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBackend, err)
		}
		Track(sc, weights)
		mixed := Track(sc, rows.MatMul(Track(sc, weights.T())))
		s.check("matmul")

		// Lt and Gt on the CPU backend do not broadcast, so the bounds are
		// full size.
		lo := Track(sc, tensor.Full[float64](tensor.Shape{n, 3}, 0, s.be))
		hi := Track(sc, tensor.Full[float64](tensor.Shape{n, 3}, 255, s.be))
		clipped := Track(sc, tensor.Where(Track(sc, mixed.Lt(lo)), lo, mixed))
		clipped = Track(sc, tensor.Where(Track(sc, clipped.Gt(hi)), hi, clipped))
		s.check("clip")

		// The int32 cast truncates; adding one half first gives round-half-up,
		// which equals pixel.Quantize on the non-negative clipped range.
		rounded := Track(sc, clipped.AddScalar(0.5))
		img := Track(sc, rounded.Reshape(h, w, 3))
		s.check("reshape")

		return img.Int32(), nil
	})
}

func (s *Strategy) check(stage string) {
	if s.fault != nil {
		s.fault(stage)
	}
}

func flatten(m pixel.ColorMatrix) []float64 {
	out := make([]float64, 0, 9)
	for _, row := range m {
		out = append(out, row[:]...)
	}
	return out
}
