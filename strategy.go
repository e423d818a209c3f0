package sepia

import (
	"context"
	"fmt"

	"github.com/gogpu/sepia/internal/matrixlib"
	"github.com/gogpu/sepia/internal/scalar"
	"github.com/gogpu/sepia/internal/tensorbatch"
	"github.com/gogpu/sepia/pixel"
)

// Strategy is one implementation of the sepia transform.
//
// Transform never mutates src and returns a new buffer of the same size.
// On failure it returns a nil buffer and an error; the caller should keep
// whatever it displayed before.
type Strategy interface {
	Kind() Kind
	Transform(ctx context.Context, src *pixel.Buffer) (*pixel.Buffer, error)
	Close() error
}

// LeakReporter is implemented by strategies that own native-style
// intermediates. Live reports how many are currently allocated; it returns
// to zero after every completed Transform.
type LeakReporter interface {
	Live() int64
}

// New creates the strategy named by kind.
// The package logger is captured at this point unless WithLogger is given.
func New(kind Kind, opts ...Option) (Strategy, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	switch kind {
	case Scalar:
		return &scalarStrategy{s: scalar.New(
			scalar.WithWorkers(o.workers),
			scalar.WithLogger(o.logger),
		)}, nil
	case MatrixLibrary:
		return &matrixStrategy{s: matrixlib.New(
			matrixlib.WithLogger(o.logger),
		)}, nil
	case TensorBatch:
		return &tensorStrategy{s: tensorbatch.New(
			tensorbatch.WithLogger(o.logger),
			tensorbatch.WithAlpha(o.alpha),
		)}, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, uint8(kind))
	}
}

// scalarStrategy adapts the synchronous scalar loop.
type scalarStrategy struct {
	s *scalar.Strategy
}

func (*scalarStrategy) Kind() Kind { return Scalar }

func (a *scalarStrategy) Transform(_ context.Context, src *pixel.Buffer) (*pixel.Buffer, error) {
	return a.s.Transform(src)
}

func (a *scalarStrategy) Close() error { return a.s.Close() }

// matrixStrategy adapts the gonum strategy.
type matrixStrategy struct {
	s *matrixlib.Strategy
}

func (*matrixStrategy) Kind() Kind { return MatrixLibrary }

func (a *matrixStrategy) Transform(_ context.Context, src *pixel.Buffer) (*pixel.Buffer, error) {
	return a.s.Transform(src)
}

func (a *matrixStrategy) Close() error { return a.s.Close() }

func (a *matrixStrategy) Live() int64 { return a.s.Live() }

// tensorStrategy adapts the born strategy. The context bounds only the
// readback wait.
type tensorStrategy struct {
	s *tensorbatch.Strategy
}

func (*tensorStrategy) Kind() Kind { return TensorBatch }

func (a *tensorStrategy) Transform(ctx context.Context, src *pixel.Buffer) (*pixel.Buffer, error) {
	return a.s.Transform(ctx, src)
}

func (a *tensorStrategy) Close() error { return a.s.Close() }

func (a *tensorStrategy) Live() int64 { return a.s.Live() }
