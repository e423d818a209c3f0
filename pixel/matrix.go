package pixel

import "math"

// ColorMatrix is a 3x3 linear map from input (R, G, B) to output (R, G, B).
// Row i holds the weights of output channel i.
type ColorMatrix [3][3]float64

var sepia = ColorMatrix{
	{0.393, 0.769, 0.189},
	{0.349, 0.686, 0.168},
	{0.272, 0.534, 0.131},
}

// Sepia returns a copy of the fixed sepia-tone color mix.
//
// Blue never saturates: its weights sum to 0.937, so white maps to
// (255, 255, 239).
func Sepia() ColorMatrix {
	return sepia
}

// Mix applies the matrix to a color without quantizing the result.
func (m *ColorMatrix) Mix(r, g, b float64) (float64, float64, float64) {
	return r*m[0][0] + g*m[0][1] + b*m[0][2],
		r*m[1][0] + g*m[1][1] + b*m[1][2],
		r*m[2][0] + g*m[2][1] + b*m[2][2]
}

// Apply transforms one RGB triple and quantizes each channel with Quantize.
// It is a total function; alpha is not an input and is left to the caller.
func (m *ColorMatrix) Apply(r, g, b uint8) (uint8, uint8, uint8) {
	outR, outG, outB := m.Mix(float64(r), float64(g), float64(b))
	return Quantize(outR), Quantize(outG), Quantize(outB)
}

// Transpose returns the transposed matrix, used when pixels are row vectors.
func (m *ColorMatrix) Transpose() ColorMatrix {
	var t ColorMatrix
	for i := range 3 {
		for j := range 3 {
			t[j][i] = m[i][j]
		}
	}
	return t
}

// Homogeneous embeds the matrix in a 4x4 form whose alpha row and column
// are the identity, so RGBA vectors can be transformed uniformly.
func (m *ColorMatrix) Homogeneous() [4][4]float64 {
	var h [4][4]float64
	for i := range 3 {
		for j := range 3 {
			h[i][j] = m[i][j]
		}
	}
	h[3][3] = 1
	return h
}

// Quantize maps a channel value to [0, 255]: values below 0 become 0, values
// above 255 become 255, and everything else rounds to the nearest integer with
// halves away from zero. NaN maps to 0. Every strategy uses this rule.
func Quantize(v float64) uint8 {
	switch {
	case math.IsNaN(v), v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(math.Round(v))
}
