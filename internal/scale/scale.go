// Package scale implements the display scaling strategies that map a raw
// spectrum magnitude buffer onto the displayable 1..256 intensity range.
// The three methods form a closed set; all of them are pure functions of
// their inputs.
package scale

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"live-spectrum/internal/spectrum"
)

// Method selects a scaling strategy.
type Method int

const (
	// Autoscale derives a logarithmic mapping from the spectrum's center
	// window and border noise floor. This is the default.
	Autoscale Method = iota
	// MinMax maps the observed minimum and maximum linearly onto 1..256.
	MinMax
	// MeanSigma clips to mean ± 3 standard deviations and maps that range
	// linearly onto 1..256.
	MeanSigma
)

func (m Method) String() string {
	switch m {
	case MinMax:
		return "Min/Max"
	case MeanSigma:
		return "Mean ± 3 StdDev"
	default:
		return "Autoscale"
	}
}

// Methods returns the closed set of scaling methods in display order.
func Methods() []Method {
	return []Method{Autoscale, MinMax, MeanSigma}
}

// MethodFromName maps a stored name back to a Method, defaulting to
// Autoscale for anything unknown.
func MethodFromName(name string) Method {
	for _, m := range Methods() {
		if m.String() == name {
			return m
		}
	}
	return Autoscale
}

// Result is the output of applying a scaling strategy: display intensities
// with the same dimensions as the input buffer, plus the display-range hint
// the output window should adopt.
type Result struct {
	Display []float64
	RangeLo float64
	RangeHi float64
}

// Apply runs the selected strategy over raw. prevLo/prevHi carry the display
// range of the previous output for the same source; hasPrev is false on the
// first-ever compute. Only Autoscale consults them: it hands the previous
// range back so manual contrast adjustments persist across recomputes.
func Apply(m Method, raw *spectrum.Buffer, prevLo, prevHi float64, hasPrev bool) Result {
	switch m {
	case MinMax:
		return minMax(raw)
	case MeanSigma:
		return meanSigma(raw)
	default:
		return autoscale(raw, prevLo, prevHi, hasPrev)
	}
}

// autoscale derives a log mapping from two probes of the spectrum: the
// maximum inside a small window around the DC pixel (excluding DC itself,
// which would dominate) and the mean of the last row, which approximates
// the noise floor at the highest frequencies.
func autoscale(raw *spectrum.Buffer, prevLo, prevHi float64, hasPrev bool) Result {
	w, h := raw.Width, raw.Height
	out := make([]float64, len(raw.Pix))

	cx, cy := w/2, h/2
	winW := windowSize(w)
	winH := windowSize(h)

	maxVal := 0.0
	for y := cy - winH/2; y < cy-winH/2+winH; y++ {
		if y < 0 || y >= h {
			continue
		}
		for x := cx - winW/2; x < cx-winW/2+winW; x++ {
			if x < 0 || x >= w {
				continue
			}
			if x == cx && y == cy {
				continue // DC term
			}
			if v := raw.At(x, y); v > maxVal {
				maxVal = v
			}
		}
	}

	borderMean := stat.Mean(raw.Pix[(h-1)*w:], nil)

	logScale := 0.5
	if borderMean/float64(w) > 0 {
		logScale = 0.5 / (borderMean / float64(w))
	}

	factor := 1.0
	if l := math.Log10(logScale * maxVal); l > 0 {
		factor = 256.0 / l
	}

	for i, v := range raw.Pix {
		out[i] = factor * math.Log10(logScale*v+1)
	}

	lo, hi := 1.0, 256.0
	if hasPrev {
		lo, hi = prevLo, prevHi
	}
	return Result{Display: out, RangeLo: lo, RangeHi: hi}
}

// windowSize returns the per-axis probe window extent.
func windowSize(dim int) int {
	if s := dim / 10; s > 2 {
		return s
	}
	return 2
}

func minMax(raw *spectrum.Buffer) Result {
	out := make([]float64, len(raw.Pix))
	min, max := raw.MinMax()
	span := max - min
	if span <= 0 {
		for i := range out {
			out[i] = 1
		}
		return Result{Display: out, RangeLo: 1, RangeHi: 256}
	}
	for i, v := range raw.Pix {
		out[i] = 1 + (v-min)*255/span
	}
	return Result{Display: out, RangeLo: 1, RangeHi: 256}
}

func meanSigma(raw *spectrum.Buffer) Result {
	out := make([]float64, len(raw.Pix))
	mean, sigma := stat.MeanStdDev(raw.Pix, nil)
	lo := mean - 3*sigma
	hi := mean + 3*sigma
	span := hi - lo
	if span <= 0 || math.IsNaN(span) {
		for i := range out {
			out[i] = 1
		}
		return Result{Display: out, RangeLo: 1, RangeHi: 256}
	}
	for i, v := range raw.Pix {
		c := math.Min(math.Max(v, lo), hi)
		out[i] = 1 + (c-lo)*255/span
	}
	return Result{Display: out, RangeLo: 1, RangeHi: 256}
}
