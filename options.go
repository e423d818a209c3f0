package sepia

import (
	"log/slog"

	"github.com/gogpu/sepia/internal/tensorbatch"
)

// AlphaPolicy decides the alpha channel written by the TensorBatch strategy.
// The other strategies always keep the source alpha.
type AlphaPolicy = tensorbatch.AlphaPolicy

const (
	// AlphaOpaque writes 255 to every output alpha sample. It is the default.
	AlphaOpaque = tensorbatch.AlphaOpaque

	// AlphaPreserve copies the source alpha samples.
	AlphaPreserve = tensorbatch.AlphaPreserve
)

// ParseAlphaPolicy converts "opaque" or "preserve" to an AlphaPolicy.
func ParseAlphaPolicy(s string) (AlphaPolicy, error) {
	return tensorbatch.ParseAlphaPolicy(s)
}

// Option configures a Strategy during creation.
//
// Example:
//
//	s, err := sepia.New(sepia.Scalar, sepia.WithWorkers(runtime.NumCPU()))
type Option func(*options)

// options holds optional configuration for New.
type options struct {
	logger  *slog.Logger
	workers int
	alpha   AlphaPolicy
}

// defaultOptions returns the default strategy options.
func defaultOptions() options {
	return options{
		logger:  Logger(),
		workers: 1,
		alpha:   AlphaOpaque,
	}
}

// WithLogger sets the logger for this strategy instead of the package default.
// Nil is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithWorkers stripes the Scalar strategy across n goroutines.
// The default of 1 keeps the sequential baseline. Other kinds ignore it.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithAlpha sets the alpha policy of the TensorBatch strategy.
// Other kinds ignore it.
func WithAlpha(a AlphaPolicy) Option {
	return func(o *options) {
		o.alpha = a
	}
}
