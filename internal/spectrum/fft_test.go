package spectrum

import (
	"math"
	"testing"
)

// TestTransformConstant verifies a constant image concentrates all energy at
// the centered DC pixel.
func TestTransformConstant(t *testing.T) {
	const w, h, val = 16, 16, 3.0
	src := NewBuffer(w, h)
	for i := range src.Pix {
		src.Pix[i] = val
	}

	out, err := NewPowerSpectrum(1).Transform(src)
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}
	if out.Width != w || out.Height != h {
		t.Fatalf("Output is %dx%d, want %dx%d", out.Width, out.Height, w, h)
	}

	wantDC := val * float64(w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			got := out.At(x, y)
			if x == w/2 && y == h/2 {
				if math.Abs(got-wantDC) > 1e-6 {
					t.Errorf("DC magnitude = %v, want %v", got, wantDC)
				}
				continue
			}
			if got > 1e-6 {
				t.Errorf("Nonzero magnitude %v at (%d,%d)", got, x, y)
			}
		}
	}
}

// TestTransformImpulse verifies a unit impulse produces a flat spectrum.
func TestTransformImpulse(t *testing.T) {
	src := NewBuffer(8, 8)
	src.Set(0, 0, 1)

	out, err := NewPowerSpectrum(1).Transform(src)
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}
	for i, v := range out.Pix {
		if math.Abs(v-1) > 1e-9 {
			t.Fatalf("Pixel %d magnitude = %v, want 1", i, v)
		}
	}
}

// TestTransformNonSquare verifies dimensions are preserved for rectangular
// input.
func TestTransformNonSquare(t *testing.T) {
	src := NewBuffer(12, 5)
	for i := range src.Pix {
		src.Pix[i] = float64(i)
	}

	out, err := NewPowerSpectrum(1).Transform(src)
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}
	if out.Width != 12 || out.Height != 5 {
		t.Errorf("Output is %dx%d, want 12x5", out.Width, out.Height)
	}
}

// TestTransformWorkerEquivalence verifies the parallel path matches the
// serial one exactly.
func TestTransformWorkerEquivalence(t *testing.T) {
	src := NewBuffer(33, 17)
	for i := range src.Pix {
		src.Pix[i] = math.Sin(float64(i) * 0.37)
	}

	serial, err := NewPowerSpectrum(1).Transform(src)
	if err != nil {
		t.Fatalf("Serial transform failed: %v", err)
	}
	parallel, err := NewPowerSpectrum(4).Transform(src)
	if err != nil {
		t.Fatalf("Parallel transform failed: %v", err)
	}

	for i := range serial.Pix {
		if math.Abs(serial.Pix[i]-parallel.Pix[i]) > 1e-9 {
			t.Fatalf("Mismatch at %d: serial %v, parallel %v",
				i, serial.Pix[i], parallel.Pix[i])
		}
	}
}

// TestTransformEmpty verifies empty input errors instead of panicking.
func TestTransformEmpty(t *testing.T) {
	if _, err := NewPowerSpectrum(1).Transform(NewBuffer(0, 0)); err == nil {
		t.Fatal("Expected error for empty input")
	}
}
