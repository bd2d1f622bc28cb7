// Package pipeline orchestrates the crop → transform → scale → resize chain
// that turns a source image region into a displayable spectrum output.
package pipeline

import (
	"errors"
	"fmt"
	"image"

	"golang.org/x/image/draw"

	"live-spectrum/internal/scale"
	"live-spectrum/internal/spectrum"
	"live-spectrum/pkg/geometry"
)

// ErrResourceExhausted reports that a compute cycle would exceed the pixel
// budget available to the transform. The engine treats it as fatal and
// surfaces a remediation message to the user.
var ErrResourceExhausted = errors.New("insufficient memory for transform")

// Transformer produces a frequency-domain magnitude buffer from a spatial
// crop. The result must have the same dimensions as the input.
type Transformer interface {
	Transform(crop *spectrum.Buffer) (*spectrum.Buffer, error)
}

// Params is the per-cycle parameter snapshot. The worker reads it once at
// the start of each cycle; concurrent changes apply to the next cycle.
type Params struct {
	Method     scale.Method
	WorkerHint int
	BinFactor  int // 1 or 2
}

func (p Params) normalized() Params {
	if p.BinFactor < 1 {
		p.BinFactor = 1
	}
	if p.BinFactor > 2 {
		p.BinFactor = 2
	}
	if p.WorkerHint < 1 {
		p.WorkerHint = 1
	}
	return p
}

// Snapshot captures the source state for one compute cycle. The engine
// assembles it while holding the source's advisory lock.
type Snapshot struct {
	Pixels *spectrum.Buffer
	Region *geometry.RectInt // nil means no explicit region of interest
	Cal    spectrum.Calibration
}

// DefaultMaxPixels bounds the crop area a single cycle may transform.
const DefaultMaxPixels = 16 << 20

// workerHinted is implemented by transformers that accept a goroutine
// fan-out hint.
type workerHinted interface {
	SetWorkers(int)
}

// Pipeline runs compute cycles against a transformer collaborator.
type Pipeline struct {
	Transformer Transformer
	MaxPixels   int
}

// New creates a pipeline with the default pixel budget.
func New(t Transformer) *Pipeline {
	return &Pipeline{Transformer: t, MaxPixels: DefaultMaxPixels}
}

// Compute runs one cycle and overwrites out on success. ok=false with a nil
// error means the region was rejected (or the source is empty) and the
// cycle is a silent no-op; out is left untouched. Any error leaves out
// untouched as well; a failed cycle never publishes a partial result.
func (p *Pipeline) Compute(snap Snapshot, params Params, out *spectrum.Output) (ok bool, err error) {
	params = params.normalized()

	if snap.Pixels == nil || snap.Pixels.Width <= 0 || snap.Pixels.Height <= 0 {
		return false, nil
	}
	srcW, srcH := snap.Pixels.Width, snap.Pixels.Height

	region := DefaultRegion(srcW, srcH)
	if snap.Region != nil {
		region = *snap.Region
	}
	r, ok := Sanitize(region, srcW, srcH)
	if !ok {
		return false, nil
	}

	if p.MaxPixels > 0 && r.Area() > p.MaxPixels {
		return false, fmt.Errorf("crop %dx%d exceeds pixel budget %d: %w",
			r.Width, r.Height, p.MaxPixels, ErrResourceExhausted)
	}

	crop := snap.Pixels.Crop(r)

	if hinted, ok := p.Transformer.(workerHinted); ok {
		hinted.SetWorkers(params.WorkerHint)
	}
	mag, err := p.Transformer.Transform(crop)
	if err != nil {
		return false, fmt.Errorf("spectral transform: %w", err)
	}
	if mag == nil || mag.Width != crop.Width || mag.Height != crop.Height {
		return false, fmt.Errorf("spectral transform returned mismatched buffer for %dx%d crop",
			crop.Width, crop.Height)
	}

	prevLo, prevHi, hasPrev := out.Range()
	scaled := scale.Apply(params.Method, mag, prevLo, prevHi, hasPrev)

	side := r.Width
	if r.Height < side {
		side = r.Height
	}
	side /= params.BinFactor
	if side < 1 {
		side = 1
	}
	display := resizeSquare(scaled.Display, mag.Width, mag.Height, side)

	out.Update(display, snap.Cal.Frequency(), scaled.RangeLo, scaled.RangeHi)
	return true, nil
}

// resizeSquare converts scaled intensities to an 8-bit grayscale image and
// resizes it to a side×side square with bilinear interpolation.
func resizeSquare(vals []float64, w, h, side int) *image.Gray {
	src := image.NewGray(image.Rect(0, 0, w, h))
	// Stride equals width for images anchored at the origin, so the flat
	// copy below is safe.
	for i, v := range vals {
		src.Pix[i] = clampByte(v)
	}
	if w == side && h == side {
		return src
	}
	dst := image.NewGray(image.Rect(0, 0, side, side))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

func clampByte(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}
