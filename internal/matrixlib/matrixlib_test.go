package matrixlib

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/gogpu/sepia/internal/synth"
	"github.com/gogpu/sepia/pixel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransform_KnownPixels(t *testing.T) {
	src, err := pixel.FromPix([]uint8{
		255, 255, 255, 255,
		0, 0, 0, 255,
		100, 150, 200, 255,
		10, 20, 30, 7,
	}, 4, 1)
	require.NoError(t, err)

	dst, err := New().Transform(src)
	require.NoError(t, err)

	assert.Equal(t, []uint8{255, 255, 239, 255}, dst.Pix[0:4])
	assert.Equal(t, []uint8{0, 0, 0, 255}, dst.Pix[4:8])
	assert.Equal(t, []uint8{192, 171}, dst.Pix[8:10])
	assert.Contains(t, []uint8{133, 134}, dst.Pix[10])
	assert.Equal(t, uint8(7), dst.Pix[15])
}

func TestTransform_MatchesReference(t *testing.T) {
	src := synth.Lattice(15)
	s := New()

	got, err := s.Transform(src)
	require.NoError(t, err)

	sep := pixel.Sepia()
	for i := 0; i < len(src.Pix); i += pixel.Channels {
		r, g, b := sep.Apply(src.Pix[i], src.Pix[i+1], src.Pix[i+2])
		want := [3]int{int(r), int(g), int(b)}
		for c := range 3 {
			d := int(got.Pix[i+c]) - want[c]
			if d < -1 || d > 1 {
				t.Fatalf("pixel %d channel %d = %d, want %d±1", i/4, c, got.Pix[i+c], want[c])
			}
		}
		require.Equal(t, src.Pix[i+3], got.Pix[i+3], "alpha must be bitwise unchanged")
	}
}

func TestTransform_DeterministicAndReadOnly(t *testing.T) {
	src := synth.Noise(31, 17, 5)
	orig := src.Clone()
	s := New()

	first, err := s.Transform(src)
	require.NoError(t, err)
	second, err := s.Transform(src)
	require.NoError(t, err)

	assert.True(t, first.Equal(second), "repeated runs differ")
	assert.True(t, src.Equal(orig), "source buffer was modified")
}

func TestTransform_Dimensions(t *testing.T) {
	for _, size := range [][2]int{{1, 1}, {3, 5}, {8, 1}, {1, 9}} {
		dst, err := New().Transform(synth.Gradient(size[0], size[1]))
		require.NoError(t, err)
		assert.Equal(t, size[0], dst.Width)
		assert.Equal(t, size[1], dst.Height)
	}
}

func TestTransform_NoLeakAcrossRuns(t *testing.T) {
	h := NewHeap(DefaultRetainBytes)
	s := New(WithHeap(h))
	src := synth.Gradient(16, 9)

	for range 25 {
		_, err := s.Transform(src)
		require.NoError(t, err)
		require.EqualValues(t, 0, s.Live())
	}
	assert.EqualValues(t, 75, h.Allocs(), "three intermediates per run")
}

func TestTransform_RetainedStorageBounded(t *testing.T) {
	h := NewHeap(DefaultRetainBytes)
	s := New(WithHeap(h))

	for i := range 20 {
		_, err := s.Transform(synth.Gradient(60+i, 40))
		require.NoError(t, err)
		require.EqualValues(t, 0, s.Live())
		require.LessOrEqual(t, h.Retained(), int64(DefaultRetainBytes))
	}

	// 512x512 float rows are 8 MiB each; none of that is kept after return.
	_, err := s.Transform(synth.Gradient(512, 512))
	require.NoError(t, err)
	assert.LessOrEqual(t, h.Retained(), int64(DefaultRetainBytes))
	assert.EqualValues(t, 0, s.Live())
}

func TestTransform_FailureReleasesIntermediates(t *testing.T) {
	for _, stage := range []string{"convert", "matrix", "transform", "quantize"} {
		t.Run(stage, func(t *testing.T) {
			var logs bytes.Buffer
			s := New(WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))
			s.fault = func(at string) {
				if at == stage {
					panic("simulated failure at " + at)
				}
			}

			dst, err := s.Transform(synth.Gradient(4, 4))

			assert.Nil(t, dst)
			assert.ErrorIs(t, err, ErrBackend)
			assert.EqualValues(t, 0, s.Live())
			assert.Contains(t, logs.String(), "transform failed")
		})
	}
}

func TestTransform_InvalidBuffer(t *testing.T) {
	_, err := New().Transform(&pixel.Buffer{Width: 1, Height: 1})
	assert.ErrorIs(t, err, pixel.ErrDataSize)
}
