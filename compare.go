package sepia

import (
	"fmt"

	"github.com/gogpu/sepia/pixel"
)

// Tolerance is the largest per-channel difference allowed between two
// strategies' outputs for the same input.
const Tolerance = 1

// Compare returns the largest per-sample difference between ref and other.
// Alpha is included only when alpha is true.
func Compare(ref, other *pixel.Buffer, alpha bool) (int, error) {
	if ref == nil || other == nil {
		return 0, fmt.Errorf("sepia: compare: %w", ErrNoResult)
	}
	channels := 3
	if alpha {
		channels = pixel.Channels
	}
	d, err := pixel.MaxDiff(ref, other, channels)
	if err != nil {
		return 0, fmt.Errorf("sepia: compare: %w", err)
	}
	return d, nil
}
