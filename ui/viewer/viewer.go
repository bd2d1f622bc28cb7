// Package viewer provides the spectrum output window and the source view
// with region selection.
package viewer

import (
	"fmt"
	"image"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"live-spectrum/internal/spectrum"
	"live-spectrum/pkg/geometry"
)

// Viewer is the window that displays published spectrum frames. All methods
// run on the UI loop; the engine marshals every call.
type Viewer struct {
	app   fyne.App
	title string

	win        fyne.Window
	img        *fynecanvas.Image
	rangeLabel *widget.Label
	floor      *widget.Slider

	out     *spectrum.Output
	frame   *image.Gray
	visible bool
	pos     geometry.PointInt
}

// New creates a viewer for the named source. The window is built lazily on
// the first Show.
func New(app fyne.App, sourceName string) *Viewer {
	return &Viewer{
		app:   app,
		title: "Spectrum of " + sourceName,
	}
}

// Show renders the output's current frame. Implements engine.Display.
func (v *Viewer) Show(out *spectrum.Output) {
	frame := out.Display()
	if frame == nil {
		return
	}
	v.out = out
	v.frame = frame

	if v.win == nil {
		v.buildWindow()
	}

	v.img.Image = applyFloor(v.frame, uint8(v.floor.Value))
	v.img.Refresh()

	if lo, hi, ok := out.Range(); ok {
		if unit := out.Calibration().Unit; unit != "" {
			v.rangeLabel.SetText(fmt.Sprintf("range %.4g .. %.4g  (%s)", lo, hi, unit))
		} else {
			v.rangeLabel.SetText(fmt.Sprintf("range %.4g .. %.4g", lo, hi))
		}
	}

	if !v.visible {
		v.visible = true
		v.win.Show()
	}
}

// IsVisible reports whether the window is currently shown.
func (v *Viewer) IsVisible() bool {
	return v.visible
}

// SetWindowPosition records the requested placement next to the source
// window. fyne has no window placement API, so the hint only influences
// sizing and is otherwise informational.
func (v *Viewer) SetWindowPosition(p geometry.PointInt) {
	v.pos = p
}

func (v *Viewer) buildWindow() {
	v.win = v.app.NewWindow(v.title)
	v.win.SetCloseIntercept(func() {
		v.visible = false
		v.win.Hide()
	})

	v.img = fynecanvas.NewImageFromImage(image.NewGray(image.Rect(0, 0, 1, 1)))
	v.img.FillMode = fynecanvas.ImageFillContain
	v.img.ScaleMode = fynecanvas.ImageScaleSmooth

	v.rangeLabel = widget.NewLabel("")

	v.floor = widget.NewSlider(0, 128)
	v.floor.Step = 1
	v.floor.OnChanged = func(val float64) {
		if v.frame == nil {
			return
		}
		v.img.Image = applyFloor(v.frame, uint8(val))
		v.img.Refresh()
		// Record the adjustment on the output so it survives recomputes.
		if v.out != nil {
			v.out.SetRange(1+val, 256)
		}
	}

	bottom := container.NewVBox(
		v.rangeLabel,
		container.NewBorder(nil, nil, widget.NewLabel("Floor:"), nil, v.floor),
	)
	v.win.SetContent(container.NewBorder(nil, bottom, nil, nil, v.img))
	v.win.Resize(fyne.NewSize(520, 560))
}

// applyFloor clips display values below the floor to black, stretching the
// remainder back over the full range. floor 0 returns the frame unchanged.
func applyFloor(frame *image.Gray, floor uint8) *image.Gray {
	if floor == 0 {
		return frame
	}
	out := image.NewGray(frame.Rect)
	span := 255.0 / float64(255-int(floor))
	for i, v := range frame.Pix {
		if v <= floor {
			out.Pix[i] = 0
			continue
		}
		out.Pix[i] = uint8(float64(v-floor) * span)
	}
	return out
}
