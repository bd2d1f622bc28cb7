package spectrum

import (
	"image"
	"testing"

	"live-spectrum/pkg/geometry"
)

// TestCrop verifies row extraction stays aligned.
func TestCrop(t *testing.T) {
	src := NewBuffer(10, 10)
	for i := range src.Pix {
		src.Pix[i] = float64(i)
	}

	got := src.Crop(geometry.NewRectInt(2, 3, 4, 2))
	if got.Width != 4 || got.Height != 2 {
		t.Fatalf("Crop is %dx%d, want 4x2", got.Width, got.Height)
	}
	if got.At(0, 0) != src.At(2, 3) {
		t.Errorf("Crop origin = %v, want %v", got.At(0, 0), src.At(2, 3))
	}
	if got.At(3, 1) != src.At(5, 4) {
		t.Errorf("Crop corner = %v, want %v", got.At(3, 1), src.At(5, 4))
	}
}

// TestMinMax verifies extremes and the empty-buffer guard.
func TestMinMax(t *testing.T) {
	b := NewBuffer(3, 1)
	b.Pix[0], b.Pix[1], b.Pix[2] = 5, -2, 9

	min, max := b.MinMax()
	if min != -2 || max != 9 {
		t.Errorf("MinMax = %v, %v, want -2, 9", min, max)
	}

	if min, max := NewBuffer(0, 0).MinMax(); min != 0 || max != 0 {
		t.Errorf("Empty MinMax = %v, %v, want 0, 0", min, max)
	}
}

// TestImageRoundTrip verifies grayscale pixels survive FromImage/ToImage.
func TestImageRoundTrip(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 8, 4))
	for i := range src.Pix {
		src.Pix[i] = uint8(i * 7)
	}

	buf := FromImage(src)
	if buf.Width != 8 || buf.Height != 4 {
		t.Fatalf("Buffer is %dx%d, want 8x4", buf.Width, buf.Height)
	}

	back := ToImage(buf)
	for i := range src.Pix {
		if back.Pix[i] != src.Pix[i] {
			t.Fatalf("Pixel %d: got %d, want %d", i, back.Pix[i], src.Pix[i])
		}
	}
}

// TestFromImageLuminance verifies the color weighting.
func TestFromImageLuminance(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Pix[0], img.Pix[1], img.Pix[2], img.Pix[3] = 255, 0, 0, 255

	buf := FromImage(img)
	want := 0.299 * 255
	if diff := buf.At(0, 0) - want; diff > 1 || diff < -1 {
		t.Errorf("Red luminance = %v, want about %v", buf.At(0, 0), want)
	}
}
