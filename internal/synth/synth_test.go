package synth

import "testing"

func TestLatticeIncludesEndpoints(t *testing.T) {
	buf := Lattice(100) // levels 0, 100, 200, 255
	if buf.Width != 64 || buf.Height != 1 {
		t.Fatalf("size = %dx%d, want 64x1", buf.Width, buf.Height)
	}
	r, g, b, _ := buf.RGBA(63, 0)
	if r != 255 || g != 255 || b != 255 {
		t.Errorf("last pixel = (%d,%d,%d), want white", r, g, b)
	}
	r, g, b, _ = buf.RGBA(0, 0)
	if r != 0 || g != 0 || b != 0 {
		t.Errorf("first pixel = (%d,%d,%d), want black", r, g, b)
	}
}

func TestNoiseDeterministic(t *testing.T) {
	a := Noise(7, 5, 42)
	b := Noise(7, 5, 42)
	if !a.Equal(b) {
		t.Error("same seed produced different images")
	}
	if a.Equal(Noise(7, 5, 43)) {
		t.Error("different seeds produced identical images")
	}
}

func TestGradientCorners(t *testing.T) {
	buf := Gradient(5, 3)
	if r, g, _, _ := buf.RGBA(4, 2); r != 255 || g != 255 {
		t.Errorf("bottom-right = (%d,%d), want (255,255)", r, g)
	}
	if r, g, b, _ := buf.RGBA(0, 0); r != 0 || g != 0 || b != 255 {
		t.Errorf("top-left = (%d,%d,%d), want (0,0,255)", r, g, b)
	}
	if Gradient(1, 1) == nil {
		t.Error("Gradient(1, 1) = nil")
	}
	if Gradient(0, 1) != nil {
		t.Error("Gradient(0, 1) should be nil")
	}
}
