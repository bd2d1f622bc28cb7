package source

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	_ "golang.org/x/image/tiff"

	"live-spectrum/internal/spectrum"
)

// LoadFile reads an image file (TIFF, PNG, or JPEG) and returns a source
// named after the file with its pixels converted to a grayscale buffer.
func LoadFile(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	return New(filepath.Base(path), spectrum.FromImage(img)), nil
}
