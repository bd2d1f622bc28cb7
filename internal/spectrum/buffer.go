// Package spectrum provides the float raster type shared by the transform
// pipeline, the 2-D power spectrum implementation, and the per-source Output
// that holds the displayable result.
package spectrum

import (
	"image"

	"live-spectrum/pkg/geometry"
)

// Buffer is a 2-D float64 raster stored row-major.
type Buffer struct {
	Width  int
	Height int
	Pix    []float64
}

// NewBuffer creates a zeroed buffer of the given dimensions.
func NewBuffer(width, height int) *Buffer {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Buffer{
		Width:  width,
		Height: height,
		Pix:    make([]float64, width*height),
	}
}

// At returns the value at (x, y). The caller must stay in bounds.
func (b *Buffer) At(x, y int) float64 {
	return b.Pix[y*b.Width+x]
}

// Set stores a value at (x, y). The caller must stay in bounds.
func (b *Buffer) Set(x, y int, v float64) {
	b.Pix[y*b.Width+x] = v
}

// Clone returns a deep copy of the buffer.
func (b *Buffer) Clone() *Buffer {
	out := &Buffer{
		Width:  b.Width,
		Height: b.Height,
		Pix:    make([]float64, len(b.Pix)),
	}
	copy(out.Pix, b.Pix)
	return out
}

// Crop returns a copy of the pixels covered by r. The rectangle must lie
// fully inside the buffer; the region sanitizer guarantees this for
// pipeline callers.
func (b *Buffer) Crop(r geometry.RectInt) *Buffer {
	out := NewBuffer(r.Width, r.Height)
	for y := 0; y < r.Height; y++ {
		srcRow := (r.Y+y)*b.Width + r.X
		copy(out.Pix[y*r.Width:(y+1)*r.Width], b.Pix[srcRow:srcRow+r.Width])
	}
	return out
}

// MinMax returns the smallest and largest values in the buffer.
// Returns (0, 0) for an empty buffer.
func (b *Buffer) MinMax() (min, max float64) {
	if len(b.Pix) == 0 {
		return 0, 0
	}
	min, max = b.Pix[0], b.Pix[0]
	for _, v := range b.Pix[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

// ToImage renders the buffer as an 8-bit grayscale image, clipping values
// outside 0..255. Buffers loaded through FromImage round-trip losslessly.
func ToImage(b *Buffer) *image.Gray {
	if b == nil {
		return image.NewGray(image.Rect(0, 0, 1, 1))
	}
	out := image.NewGray(image.Rect(0, 0, b.Width, b.Height))
	for i, v := range b.Pix {
		switch {
		case v <= 0:
			out.Pix[i] = 0
		case v >= 255:
			out.Pix[i] = 255
		default:
			out.Pix[i] = uint8(v + 0.5)
		}
	}
	return out
}

// FromImage converts an image to a grayscale float buffer using the usual
// luminance weights.
func FromImage(img image.Image) *Buffer {
	bounds := img.Bounds()
	out := NewBuffer(bounds.Dx(), bounds.Dy())
	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			// RGBA components are 16-bit; bring luminance back to 0..255.
			out.Pix[i] = (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)) / 257.0
			i++
		}
	}
	return out
}
