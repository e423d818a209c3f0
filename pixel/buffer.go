// Package pixel provides the RGBA pixel buffer and the sepia color transform
// shared by every execution strategy.
//
// A Buffer holds straight (non-premultiplied) RGBA samples in row-major order,
// four bytes per pixel, exactly as a decoded image hands them over at its
// natural resolution. The package never resamples.
package pixel

import (
	"errors"
	"fmt"
)

// Common errors for buffer operations.
var (
	// ErrInvalidDimensions is returned when width or height is non-positive.
	ErrInvalidDimensions = errors.New("pixel: invalid dimensions")

	// ErrDataSize is returned when the sample slice length is not Width*Height*4.
	ErrDataSize = errors.New("pixel: sample count does not match dimensions")

	// ErrSizeMismatch is returned when two buffers with different dimensions are compared.
	ErrSizeMismatch = errors.New("pixel: buffer dimensions differ")
)

// Channels is the number of samples per pixel (R, G, B, A).
const Channels = 4

// Buffer is a rectangular grid of RGBA samples.
//
// Invariant: len(Pix) == Width*Height*4. Strategies treat a source Buffer as
// read-only and always return a new Buffer that does not alias it.
type Buffer struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewBuffer allocates a zeroed buffer of the given size.
func NewBuffer(width, height int) (*Buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}
	return &Buffer{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*Channels),
	}, nil
}

// FromPix wraps existing samples without copying.
// The caller must not modify pix while the Buffer is in use by a strategy.
func FromPix(pix []uint8, width, height int) (*Buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}
	if len(pix) != width*height*Channels {
		return nil, fmt.Errorf("%w: have %d, want %d", ErrDataSize, len(pix), width*height*Channels)
	}
	return &Buffer{Width: width, Height: height, Pix: pix}, nil
}

// Validate reports whether the buffer satisfies its size invariant.
func (b *Buffer) Validate() error {
	if b == nil || b.Width <= 0 || b.Height <= 0 {
		return ErrInvalidDimensions
	}
	if want := b.Width * b.Height * Channels; len(b.Pix) != want {
		return fmt.Errorf("%w: have %d, want %d", ErrDataSize, len(b.Pix), want)
	}
	return nil
}

// Clone creates a deep copy of the buffer.
func (b *Buffer) Clone() *Buffer {
	pix := make([]uint8, len(b.Pix))
	copy(pix, b.Pix)
	return &Buffer{Width: b.Width, Height: b.Height, Pix: pix}
}

// Len returns the number of pixels.
func (b *Buffer) Len() int {
	return b.Width * b.Height
}

// Stride returns the number of bytes per row.
func (b *Buffer) Stride() int {
	return b.Width * Channels
}

// Offset returns the index of the red sample of pixel (x, y).
// Returns -1 if the coordinates are out of bounds.
func (b *Buffer) Offset(x, y int) int {
	if x < 0 || x >= b.Width || y < 0 || y >= b.Height {
		return -1
	}
	return y*b.Stride() + x*Channels
}

// RGBA returns the samples of pixel (x, y), or zeros if out of bounds.
func (b *Buffer) RGBA(x, y int) (r, g, bl, a uint8) {
	i := b.Offset(x, y)
	if i < 0 {
		return 0, 0, 0, 0
	}
	return b.Pix[i], b.Pix[i+1], b.Pix[i+2], b.Pix[i+3]
}

// SetRGBA sets the samples of pixel (x, y). Out-of-bounds writes are ignored.
func (b *Buffer) SetRGBA(x, y int, r, g, bl, a uint8) {
	i := b.Offset(x, y)
	if i < 0 {
		return
	}
	b.Pix[i], b.Pix[i+1], b.Pix[i+2], b.Pix[i+3] = r, g, bl, a
}

// Equal reports whether both buffers have the same size and samples.
func (b *Buffer) Equal(o *Buffer) bool {
	if b == nil || o == nil {
		return b == o
	}
	if b.Width != o.Width || b.Height != o.Height || len(b.Pix) != len(o.Pix) {
		return false
	}
	for i := range b.Pix {
		if b.Pix[i] != o.Pix[i] {
			return false
		}
	}
	return true
}

// MaxDiff returns the largest absolute sample difference between a and b,
// looking only at the first channels samples of every pixel (3 = RGB, 4 = RGBA).
func MaxDiff(a, b *Buffer, channels int) (int, error) {
	if a.Width != b.Width || a.Height != b.Height || len(a.Pix) != len(b.Pix) {
		return 0, ErrSizeMismatch
	}
	if channels < 1 || channels > Channels {
		channels = Channels
	}

	maxDiff := 0
	for i := 0; i < len(a.Pix); i += Channels {
		for c := range channels {
			d := int(a.Pix[i+c]) - int(b.Pix[i+c])
			if d < 0 {
				d = -d
			}
			if d > maxDiff {
				maxDiff = d
			}
		}
	}
	return maxDiff, nil
}
