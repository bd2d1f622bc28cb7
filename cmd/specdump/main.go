// Command specdump computes a single power spectrum of an image and writes
// the scaled display frame as a PNG. Useful for checking pipeline output
// without the UI.
package main

import (
	"flag"
	"fmt"
	"image/png"
	"os"

	"live-spectrum/internal/pipeline"
	"live-spectrum/internal/scale"
	"live-spectrum/internal/source"
	"live-spectrum/internal/spectrum"
	"live-spectrum/pkg/geometry"
)

func main() {
	imagePath := flag.String("image", "", "Path to input image (PNG, JPEG, or TIFF)")
	outPath := flag.String("out", "spectrum.png", "Path to output PNG")
	method := flag.String("method", "Autoscale", "Scaling method: Autoscale, 'Min/Max', or 'Mean ± 3 StdDev'")
	bin := flag.Int("bin", 1, "Output bin factor (1 or 2)")
	workers := flag.Int("workers", 1, "Transform goroutines")
	region := flag.String("region", "", "Region of interest as x,y,w,h (default: full image)")
	flag.Parse()

	if *imagePath == "" {
		fmt.Println("Usage: specdump -image <path> [-out <path>] [-method <name>] [-bin 1|2] [-region x,y,w,h]")
		os.Exit(1)
	}

	src, err := source.LoadFile(*imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load image: %v\n", err)
		os.Exit(1)
	}

	if *region != "" {
		var r geometry.RectInt
		if _, err := fmt.Sscanf(*region, "%d,%d,%d,%d", &r.X, &r.Y, &r.Width, &r.Height); err != nil {
			fmt.Fprintf(os.Stderr, "Bad -region %q: %v\n", *region, err)
			os.Exit(1)
		}
		src.SetRegion(&r)
	}

	out := spectrum.NewOutput()
	params := pipeline.Params{
		Method:     scale.MethodFromName(*method),
		BinFactor:  *bin,
		WorkerHint: *workers,
	}
	snap := pipeline.Snapshot{
		Pixels: src.Buffer(),
		Region: src.Region(),
		Cal:    src.Calibration(),
	}

	p := pipeline.New(spectrum.NewPowerSpectrum(*workers))
	published, err := p.Compute(snap, params, out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Compute failed: %v\n", err)
		os.Exit(1)
	}
	if !published {
		fmt.Fprintln(os.Stderr, "Nothing to compute: region rejected or image empty")
		os.Exit(1)
	}

	if lo, hi, ok := out.Range(); ok {
		fmt.Printf("Scaling: %s, range %.6g .. %.6g\n", params.Method, lo, hi)
	}

	frame := out.Display()
	fmt.Printf("Output: %dx%d -> %s\n", frame.Rect.Dx(), frame.Rect.Dy(), *outPath)

	f, err := os.Create(*outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()
	if err := png.Encode(f, frame); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode PNG: %v\n", err)
		os.Exit(1)
	}
}
