package spectrum

import (
	"fmt"
	"math/cmplx"
	"runtime"
	"sync"

	"gonum.org/v1/gonum/dsp/fourier"
)

// PowerSpectrum computes the 2-D discrete Fourier transform magnitude of a
// spatial buffer. The zero-frequency (DC) term is shifted to the center
// pixel so downstream display scaling can treat the center as the spectrum
// origin.
//
// Workers is a hint for how many goroutines fan out over rows and columns;
// it is clamped to [1, GOMAXPROCS]. Not safe for concurrent Transform calls
// on the same instance.
type PowerSpectrum struct {
	Workers int
}

// NewPowerSpectrum creates a transform with the given worker hint.
func NewPowerSpectrum(workers int) *PowerSpectrum {
	return &PowerSpectrum{Workers: workers}
}

// SetWorkers updates the worker hint before the next Transform call.
func (p *PowerSpectrum) SetWorkers(workers int) {
	p.Workers = workers
}

// Transform computes the centered magnitude spectrum of src. The result has
// the same dimensions as the input.
func (p *PowerSpectrum) Transform(src *Buffer) (*Buffer, error) {
	w, h := src.Width, src.Height
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("transform input is empty (%dx%d)", w, h)
	}

	coef := make([]complex128, w*h)
	for i, v := range src.Pix {
		coef[i] = complex(v, 0)
	}

	// Row pass, then column pass. Each worker owns its FFT plan because
	// gonum's CmplxFFT is not safe for concurrent use.
	p.parallel(h, func(y0, y1 int) {
		fft := fourier.NewCmplxFFT(w)
		for y := y0; y < y1; y++ {
			row := coef[y*w : (y+1)*w]
			fft.Coefficients(row, row)
		}
	})

	p.parallel(w, func(x0, x1 int) {
		fft := fourier.NewCmplxFFT(h)
		col := make([]complex128, h)
		for x := x0; x < x1; x++ {
			for y := 0; y < h; y++ {
				col[y] = coef[y*w+x]
			}
			fft.Coefficients(col, col)
			for y := 0; y < h; y++ {
				coef[y*w+x] = col[y]
			}
		}
	})

	// Magnitude with quadrant swap so DC lands on (w/2, h/2).
	out := NewBuffer(w, h)
	for y := 0; y < h; y++ {
		dy := (y + h/2) % h
		for x := 0; x < w; x++ {
			dx := (x + w/2) % w
			out.Pix[dy*w+dx] = cmplx.Abs(coef[y*w+x])
		}
	}
	return out, nil
}

// parallel splits [0, n) into contiguous chunks across the clamped worker
// count and waits for all of them.
func (p *PowerSpectrum) parallel(n int, fn func(lo, hi int)) {
	workers := p.Workers
	if workers < 1 {
		workers = 1
	}
	if max := runtime.GOMAXPROCS(0); workers > max {
		workers = max
	}
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		fn(0, n)
		return
	}

	var wg sync.WaitGroup
	chunk := (n + workers - 1) / workers
	for lo := 0; lo < n; lo += chunk {
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			fn(lo, hi)
		}(lo, hi)
	}
	wg.Wait()
}
