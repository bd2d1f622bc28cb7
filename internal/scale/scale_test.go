package scale

import (
	"math"
	"testing"

	"live-spectrum/internal/spectrum"
)

// TestMethodNames verifies the name round-trip and the unknown-name default.
func TestMethodNames(t *testing.T) {
	for _, m := range Methods() {
		if got := MethodFromName(m.String()); got != m {
			t.Errorf("MethodFromName(%q) = %v, want %v", m.String(), got, m)
		}
	}
	if got := MethodFromName("nonsense"); got != Autoscale {
		t.Errorf("Unknown name mapped to %v, want Autoscale", got)
	}
}

// TestAutoscaleLogMapping verifies the logarithmic mapping against a
// hand-computed value with a zero noise floor.
func TestAutoscaleLogMapping(t *testing.T) {
	// 20x20, all zero except one bright pixel inside the center probe
	// window. The last row is zero, so the log scale keeps its 0.5 default.
	raw := spectrum.NewBuffer(20, 20)
	raw.Set(9, 9, 1e6)

	res := Apply(Autoscale, raw, 0, 0, false)

	factor := 256.0 / math.Log10(0.5*1e6)
	want := factor * math.Log10(0.5*1e6+1)
	got := res.Display[9*20+9]
	if math.Abs(got-want) > 1e-6 {
		t.Errorf("Bright pixel mapped to %v, want %v", got, want)
	}
	if zero := res.Display[0]; zero != 0 {
		t.Errorf("Zero pixel mapped to %v, want 0", zero)
	}
}

// TestAutoscaleNoiseFloor verifies a positive border mean tightens the log
// scale.
func TestAutoscaleNoiseFloor(t *testing.T) {
	raw := spectrum.NewBuffer(20, 20)
	raw.Set(9, 9, 1e6)
	for x := 0; x < 20; x++ {
		raw.Set(x, 19, 40) // border mean 40, log scale 0.5/(40/20) = 0.25
	}

	res := Apply(Autoscale, raw, 0, 0, false)

	factor := 256.0 / math.Log10(0.25*1e6)
	want := factor * math.Log10(0.25*1e6+1)
	got := res.Display[9*20+9]
	if math.Abs(got-want) > 1e-6 {
		t.Errorf("Bright pixel mapped to %v, want %v", got, want)
	}
}

// TestAutoscaleRangeHint verifies the first compute hints 1..256 and later
// computes return the previous range unchanged.
func TestAutoscaleRangeHint(t *testing.T) {
	raw := spectrum.NewBuffer(32, 32)
	raw.Set(15, 15, 100)

	first := Apply(Autoscale, raw, 0, 0, false)
	if first.RangeLo != 1 || first.RangeHi != 256 {
		t.Errorf("First range = %v..%v, want 1..256", first.RangeLo, first.RangeHi)
	}

	again := Apply(Autoscale, raw, 7, 42, true)
	if again.RangeLo != 7 || again.RangeHi != 42 {
		t.Errorf("Carried range = %v..%v, want 7..42", again.RangeLo, again.RangeHi)
	}
}

// TestAutoscaleExcludesDC verifies the DC pixel does not drive the mapping.
func TestAutoscaleExcludesDC(t *testing.T) {
	raw := spectrum.NewBuffer(20, 20)
	raw.Set(10, 10, 1e12) // DC pixel, must be ignored by the probe
	raw.Set(9, 9, 1e3)

	res := Apply(Autoscale, raw, 0, 0, false)

	factor := 256.0 / math.Log10(0.5*1e3)
	want := factor * math.Log10(0.5*1e3+1)
	got := res.Display[9*20+9]
	if math.Abs(got-want) > 1e-6 {
		t.Errorf("Probe used DC value: pixel mapped to %v, want %v", got, want)
	}
}

// TestMinMax verifies the linear endpoints and the flat-buffer guard.
func TestMinMax(t *testing.T) {
	raw := spectrum.NewBuffer(4, 4)
	for i := range raw.Pix {
		raw.Pix[i] = float64(i) // 0..15
	}

	res := Apply(MinMax, raw, 0, 0, false)
	if res.Display[0] != 1 {
		t.Errorf("Minimum mapped to %v, want 1", res.Display[0])
	}
	if res.Display[15] != 256 {
		t.Errorf("Maximum mapped to %v, want 256", res.Display[15])
	}
	if res.RangeLo != 1 || res.RangeHi != 256 {
		t.Errorf("Range = %v..%v, want 1..256", res.RangeLo, res.RangeHi)
	}

	flat := spectrum.NewBuffer(4, 4)
	for i := range flat.Pix {
		flat.Pix[i] = 7
	}
	res = Apply(MinMax, flat, 0, 0, false)
	for i, v := range res.Display {
		if v != 1 {
			t.Fatalf("Flat buffer pixel %d mapped to %v, want 1", i, v)
		}
	}
}

// TestMeanSigma verifies clipping to mean plus/minus 3 sigma and the
// zero-variance guard.
func TestMeanSigma(t *testing.T) {
	raw := spectrum.NewBuffer(10, 10)
	for i := range raw.Pix {
		raw.Pix[i] = float64(i % 10)
	}
	raw.Pix[0] = 1e9 // extreme outlier gets clipped to the top of the range

	res := Apply(MeanSigma, raw, 0, 0, false)
	for i, v := range res.Display {
		if v < 1 || v > 256 {
			t.Fatalf("Pixel %d mapped outside 1..256: %v", i, v)
		}
	}
	if res.Display[0] != 256 {
		t.Errorf("Outlier mapped to %v, want clipped 256", res.Display[0])
	}

	flat := spectrum.NewBuffer(4, 4)
	res = Apply(MeanSigma, flat, 0, 0, false)
	for i, v := range res.Display {
		if v != 1 {
			t.Fatalf("Zero-variance pixel %d mapped to %v, want 1", i, v)
		}
	}
}

// TestApplyPure verifies no strategy mutates its input buffer.
func TestApplyPure(t *testing.T) {
	raw := spectrum.NewBuffer(20, 20)
	for i := range raw.Pix {
		raw.Pix[i] = float64(i)
	}
	orig := raw.Clone()

	for _, m := range Methods() {
		Apply(m, raw, 1, 256, true)
		for i := range raw.Pix {
			if raw.Pix[i] != orig.Pix[i] {
				t.Fatalf("%v mutated input at %d", m, i)
			}
		}
	}
}
