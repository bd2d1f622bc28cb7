package spectrum

import (
	"image"
	"sync"
)

// Calibration describes the physical scale of a buffer's pixels.
type Calibration struct {
	PixelWidth  float64 `json:"pixel_width"`
	PixelHeight float64 `json:"pixel_height"`
	Unit        string  `json:"unit"`
}

// Frequency returns the calibration annotated for the frequency domain.
// Pixel sizes are copied unchanged; only the unit is rewritten.
func (c Calibration) Frequency() Calibration {
	out := c
	if c.Unit != "" {
		out.Unit = "1/" + c.Unit
	}
	return out
}

// Output holds the displayable spectrum derived from one source. There is
// exactly one Output per source; each compute cycle overwrites it in place.
//
// The advisory lock (TryLock/Unlock) is the cooperative guard shared with
// the host: the recompute worker holds it while overwriting the output, and
// any external reader that cannot tolerate a mid-update view is expected to
// honor it too. Field access is separately synchronized, so accessors are
// safe to call without the advisory lock at the cost of possibly observing
// a cycle boundary.
type Output struct {
	lock sync.Mutex // advisory compute lock

	mu      sync.RWMutex
	display *image.Gray
	cal     Calibration
	derived bool
	rangeLo float64
	rangeHi float64
	ranged  bool
}

// NewOutput creates an empty output.
func NewOutput() *Output {
	return &Output{}
}

// TryLock attempts to take the advisory lock without blocking.
func (o *Output) TryLock() bool {
	return o.lock.TryLock()
}

// Unlock releases the advisory lock.
func (o *Output) Unlock() {
	o.lock.Unlock()
}

// Display returns the current display buffer, or nil before the first
// compute cycle.
func (o *Output) Display() *image.Gray {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.display
}

// Calibration returns the calibration copied from the source.
func (o *Output) Calibration() Calibration {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.cal
}

// Derived reports whether the output has been marked spectrum-derived,
// which happens on the first successful compute cycle.
func (o *Output) Derived() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.derived
}

// Range returns the display-range hint. ok is false before the first
// compute cycle.
func (o *Output) Range() (lo, hi float64, ok bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.rangeLo, o.rangeHi, o.ranged
}

// SetRange records a display range, typically after the user adjusts
// contrast. The value survives recomputes so manual adjustments persist.
func (o *Output) SetRange(lo, hi float64) {
	o.mu.Lock()
	o.rangeLo = lo
	o.rangeHi = hi
	o.ranged = true
	o.mu.Unlock()
}

// Update overwrites the output with the result of one compute cycle.
func (o *Output) Update(display *image.Gray, cal Calibration, rangeLo, rangeHi float64) {
	o.mu.Lock()
	o.display = display
	o.cal = cal
	o.derived = true
	o.rangeLo = rangeLo
	o.rangeHi = rangeHi
	o.ranged = true
	o.mu.Unlock()
}
