package sepia

import (
	"errors"
	"fmt"
)

// Kind tags one of the transform strategies.
type Kind uint8

const (
	// Scalar is the plain per-pixel loop and the performance baseline.
	Scalar Kind = iota

	// MatrixLibrary runs the transform as a gonum matrix product.
	MatrixLibrary

	// TensorBatch runs the transform as a batched tensor matmul.
	TensorBatch

	kindCount
)

// ErrUnknownKind is returned when a strategy tag is not recognized.
var ErrUnknownKind = errors.New("sepia: unknown strategy kind")

var kindNames = [kindCount]string{
	Scalar:        "scalar",
	MatrixLibrary: "matrix",
	TensorBatch:   "tensor",
}

// String returns the short name used by the CLI and in reports.
func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Valid reports whether k names a known strategy.
func (k Kind) Valid() bool {
	return k < kindCount
}

// Kinds returns every strategy in display order.
func Kinds() []Kind {
	return []Kind{Scalar, MatrixLibrary, TensorBatch}
}

// ParseKind converts a short name back to its Kind.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}
