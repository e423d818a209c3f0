// Package synth generates deterministic test images.
package synth

import (
	"math/rand/v2"

	"github.com/gogpu/sepia/pixel"
)

// Gradient returns a w×h image whose red rises left to right, green rises top
// to bottom and blue falls along the diagonal. Alpha varies with x so alpha
// handling is observable.
func Gradient(w, h int) *pixel.Buffer {
	buf, err := pixel.NewBuffer(w, h)
	if err != nil {
		return nil
	}
	for y := range h {
		for x := range w {
			buf.SetRGBA(x, y,
				scale(x, w),
				scale(y, h),
				255-scale(x+y, w+h-1),
				128+scale(x, w)/2,
			)
		}
	}
	return buf
}

// Noise returns a w×h image of uniformly random samples. The same seed always
// yields the same image.
func Noise(w, h int, seed uint64) *pixel.Buffer {
	buf, err := pixel.NewBuffer(w, h)
	if err != nil {
		return nil
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	for i := range buf.Pix {
		buf.Pix[i] = uint8(rng.UintN(256))
	}
	return buf
}

// Lattice returns a one-row image holding every (R, G, B) combination on a
// grid with the given step, always including 0 and 255 on each axis.
// Alpha counts up so each pixel carries a distinct value.
func Lattice(step int) *pixel.Buffer {
	levels := axis(step)
	n := len(levels) * len(levels) * len(levels)
	buf, _ := pixel.NewBuffer(n, 1)

	x := 0
	for _, r := range levels {
		for _, g := range levels {
			for _, b := range levels {
				buf.SetRGBA(x, 0, r, g, b, uint8(x))
				x++
			}
		}
	}
	return buf
}

// Solid returns a w×h image filled with one color.
func Solid(w, h int, r, g, b, a uint8) *pixel.Buffer {
	buf, err := pixel.NewBuffer(w, h)
	if err != nil {
		return nil
	}
	for i := 0; i < len(buf.Pix); i += pixel.Channels {
		buf.Pix[i], buf.Pix[i+1], buf.Pix[i+2], buf.Pix[i+3] = r, g, b, a
	}
	return buf
}

func axis(step int) []uint8 {
	if step <= 0 || step > 255 {
		step = 255
	}
	var out []uint8
	for v := 0; v < 255; v += step {
		out = append(out, uint8(v))
	}
	return append(out, 255)
}

func scale(v, n int) uint8 {
	if n <= 1 {
		return 0
	}
	return uint8(v * 255 / (n - 1))
}
