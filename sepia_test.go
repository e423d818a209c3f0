package sepia

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/sepia/internal/synth"
	"github.com/gogpu/sepia/pixel"
)

// testBuffer returns a small image holding white, black and one mid-tone pixel.
func testBuffer() *pixel.Buffer {
	b := mustBuffer(3, 1)
	b.SetRGBA(0, 0, 255, 255, 255, 255)
	b.SetRGBA(1, 0, 0, 0, 0, 255)
	b.SetRGBA(2, 0, 100, 150, 200, 255)
	return b
}

func mustBuffer(w, h int) *pixel.Buffer {
	b, err := pixel.NewBuffer(w, h)
	if err != nil {
		panic(err)
	}
	return b
}

func newStrategy(t testing.TB, kind Kind, opts ...Option) Strategy {
	t.Helper()
	s, err := New(kind, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestKind(t *testing.T) {
	for _, k := range Kinds() {
		got, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
		assert.True(t, k.Valid())
	}

	_, err := ParseKind("opencv")
	assert.ErrorIs(t, err, ErrUnknownKind)
	assert.Equal(t, "Kind(9)", Kind(9).String())
	assert.False(t, Kind(9).Valid())
}

func TestNewUnknownKind(t *testing.T) {
	s, err := New(Kind(42))
	assert.Nil(t, s)
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestNewKind(t *testing.T) {
	for _, k := range Kinds() {
		s := newStrategy(t, k)
		assert.Equal(t, k, s.Kind())
	}
}

func TestKnownPixels(t *testing.T) {
	want := [][3]uint8{{255, 255, 239}, {0, 0, 0}, {192, 171, 134}}

	for _, k := range Kinds() {
		t.Run(k.String(), func(t *testing.T) {
			s := newStrategy(t, k)
			out, err := s.Transform(context.Background(), testBuffer())
			require.NoError(t, err)
			require.NotNil(t, out)

			for x, w := range want {
				r, g, b, a := out.RGBA(x, 0)
				assert.Equal(t, w, [3]uint8{r, g, b}, "pixel %d", x)
				assert.Equal(t, uint8(255), a, "pixel %d alpha", x)
			}
		})
	}
}

func TestStrategiesAgree(t *testing.T) {
	inputs := map[string]*pixel.Buffer{
		"lattice":  synth.Lattice(17),
		"gradient": synth.Gradient(31, 7),
		"noise":    synth.Noise(13, 11, 7),
	}

	for name, src := range inputs {
		t.Run(name, func(t *testing.T) {
			ref, err := newStrategy(t, Scalar).Transform(context.Background(), src)
			require.NoError(t, err)

			for _, k := range Kinds()[1:] {
				out, err := newStrategy(t, k).Transform(context.Background(), src)
				require.NoError(t, err, k)

				d, err := Compare(ref, out, false)
				require.NoError(t, err)
				assert.LessOrEqual(t, d, Tolerance, "%s differs from scalar", k)
			}
		})
	}
}

func TestAlphaHandling(t *testing.T) {
	src := synth.Gradient(8, 4)
	ctx := context.Background()

	for _, k := range []Kind{Scalar, MatrixLibrary} {
		out, err := newStrategy(t, k).Transform(ctx, src)
		require.NoError(t, err)
		for i := 3; i < len(src.Pix); i += pixel.Channels {
			require.Equal(t, src.Pix[i], out.Pix[i], "%s alpha at %d", k, i)
		}
	}

	opaque, err := newStrategy(t, TensorBatch).Transform(ctx, src)
	require.NoError(t, err)
	for i := 3; i < len(opaque.Pix); i += pixel.Channels {
		require.Equal(t, uint8(255), opaque.Pix[i])
	}

	kept, err := newStrategy(t, TensorBatch, WithAlpha(AlphaPreserve)).Transform(ctx, src)
	require.NoError(t, err)
	d, err := Compare(src, kept, true)
	require.NoError(t, err)
	assert.Positive(t, d, "RGB should change")
	for i := 3; i < len(kept.Pix); i += pixel.Channels {
		require.Equal(t, src.Pix[i], kept.Pix[i])
	}
}

func TestDimensionsAndInput(t *testing.T) {
	sizes := [][2]int{{1, 1}, {3, 5}, {7, 2}, {16, 16}}

	for _, k := range Kinds() {
		s := newStrategy(t, k)
		for _, sz := range sizes {
			src := synth.Noise(sz[0], sz[1], 3)
			before := src.Clone()

			out, err := s.Transform(context.Background(), src)
			require.NoError(t, err)
			assert.Equal(t, sz[0], out.Width, "%s %v", k, sz)
			assert.Equal(t, sz[1], out.Height, "%s %v", k, sz)
			assert.True(t, src.Equal(before), "%s mutated its input", k)
			assert.NotSame(t, &src.Pix[0], &out.Pix[0])
		}
	}
}

func TestDeterministic(t *testing.T) {
	src := synth.Noise(9, 9, 11)
	for _, k := range Kinds() {
		s := newStrategy(t, k)
		first, err := s.Transform(context.Background(), src)
		require.NoError(t, err)
		for range 3 {
			again, err := s.Transform(context.Background(), src)
			require.NoError(t, err)
			assert.True(t, first.Equal(again), "%s is not deterministic", k)
		}
	}
}

func TestLeakReporters(t *testing.T) {
	src := synth.Gradient(10, 6)
	for _, k := range []Kind{MatrixLibrary, TensorBatch} {
		s := newStrategy(t, k)
		lr, ok := s.(LeakReporter)
		require.True(t, ok, "%s should report live intermediates", k)

		for range 10 {
			_, err := s.Transform(context.Background(), src)
			require.NoError(t, err)
		}
		assert.Eventually(t, func() bool { return lr.Live() == 0 }, time.Second, 5*time.Millisecond, k.String())
	}

	_, ok := newStrategy(t, Scalar).(LeakReporter)
	assert.False(t, ok)
}

func TestInvalidBuffer(t *testing.T) {
	bad := &pixel.Buffer{Width: 2, Height: 2, Pix: make([]uint8, 3)}
	for _, k := range Kinds() {
		out, err := newStrategy(t, k).Transform(context.Background(), bad)
		assert.Nil(t, out, k)
		assert.ErrorIs(t, err, pixel.ErrDataSize, k)
	}
}

func TestScalarWorkers(t *testing.T) {
	src := synth.Noise(33, 17, 5)
	seq, err := newStrategy(t, Scalar).Transform(context.Background(), src)
	require.NoError(t, err)
	par, err := newStrategy(t, Scalar, WithWorkers(4)).Transform(context.Background(), src)
	require.NoError(t, err)
	assert.True(t, seq.Equal(par))
}

func TestCompare(t *testing.T) {
	a := mustBuffer(2, 1)
	b := mustBuffer(2, 1)
	b.SetRGBA(1, 0, 0, 2, 0, 9)

	d, err := Compare(a, b, false)
	require.NoError(t, err)
	assert.Equal(t, 2, d)

	d, err = Compare(a, b, true)
	require.NoError(t, err)
	assert.Equal(t, 9, d)

	_, err = Compare(a, mustBuffer(1, 2), false)
	assert.ErrorIs(t, err, pixel.ErrSizeMismatch)

	_, err = Compare(a, nil, false)
	assert.ErrorIs(t, err, ErrNoResult)
}

// stubStrategy returns a fixed result after an optional delay.
type stubStrategy struct {
	kind  Kind
	out   *pixel.Buffer
	err   error
	delay time.Duration
}

func (s *stubStrategy) Kind() Kind { return s.kind }

func (s *stubStrategy) Transform(context.Context, *pixel.Buffer) (*pixel.Buffer, error) {
	time.Sleep(s.delay)
	return s.out, s.err
}

func (s *stubStrategy) Close() error { return nil }

func TestMeasure(t *testing.T) {
	out := mustBuffer(1, 1)
	r := Measure(context.Background(), &stubStrategy{kind: MatrixLibrary, out: out, delay: 5 * time.Millisecond}, out)
	assert.True(t, r.OK())
	assert.Equal(t, MatrixLibrary, r.Kind)
	assert.Same(t, out, r.Output)
	assert.GreaterOrEqual(t, r.Elapsed, 5*time.Millisecond)

	boom := errors.New("boom")
	r = Measure(context.Background(), &stubStrategy{kind: TensorBatch, out: out, err: boom}, out)
	assert.False(t, r.OK())
	assert.Nil(t, r.Output)
	assert.ErrorIs(t, r.Err, boom)

	r = Measure(context.Background(), &stubStrategy{kind: Scalar}, out)
	assert.False(t, r.OK())
	assert.ErrorIs(t, r.Err, ErrNoResult)
}

func TestReportMillis(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0.00"},
		{1234567 * time.Nanosecond, "1.23"},
		{1500 * time.Microsecond, "1.50"},
		{2 * time.Second, "2000.00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Report{Elapsed: tt.d}.Millis())
	}
}

func TestBoard(t *testing.T) {
	var b Board
	first := mustBuffer(1, 1)

	for _, k := range Kinds() {
		assert.True(t, b.Cell(k).Empty())
		assert.Equal(t, "-", b.Cell(k).Millis())
	}

	assert.True(t, b.Record(Report{Kind: MatrixLibrary, Output: first, Elapsed: 3 * time.Millisecond}))
	c := b.Cell(MatrixLibrary)
	assert.Same(t, first, c.Output)
	assert.Equal(t, "3.00", c.Millis())

	// A failed run keeps the previous result and time.
	assert.False(t, b.Record(Report{Kind: MatrixLibrary, Err: errors.New("boom"), Elapsed: time.Second}))
	c = b.Cell(MatrixLibrary)
	assert.Same(t, first, c.Output)
	assert.Equal(t, 3*time.Millisecond, c.Time)

	assert.False(t, b.Record(Report{Kind: Kind(7), Output: first}))
	assert.True(t, b.Cell(Scalar).Empty())
	assert.True(t, b.Cell(Kind(7)).Empty())

	b.Clear()
	for _, k := range Kinds() {
		assert.True(t, b.Cell(k).Empty())
	}
}

func TestBoardMeasuredRuns(t *testing.T) {
	var b Board
	src := synth.Gradient(4, 4)
	for _, k := range Kinds() {
		require.True(t, b.Record(Measure(context.Background(), newStrategy(t, k), src)))
	}
	ref := b.Cell(Scalar).Output
	for _, k := range Kinds() {
		d, err := Compare(ref, b.Cell(k).Output, false)
		require.NoError(t, err)
		assert.LessOrEqual(t, d, Tolerance)
	}
}

func BenchmarkStrategies(b *testing.B) {
	src := synth.Noise(256, 256, 1)
	for _, k := range Kinds() {
		b.Run(k.String(), func(b *testing.B) {
			s := newStrategy(b, k)
			b.SetBytes(int64(len(src.Pix)))
			b.ResetTimer()
			for range b.N {
				if _, err := s.Transform(context.Background(), src); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
