package viewer

import (
	"image/color"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"live-spectrum/internal/source"
	"live-spectrum/internal/spectrum"
	"live-spectrum/pkg/geometry"
)

// SourceView displays the source image at 1:1 scale and lets the user drag
// out a rectangular region of interest. Committing a selection updates the
// source, which wakes any attached engine.
type SourceView struct {
	widget.BaseWidget

	src *source.Source
	img *fynecanvas.Image
	sel *fynecanvas.Rectangle

	dragging bool
	start    fyne.Position
	end      fyne.Position
}

// NewSourceView creates a view bound to src.
func NewSourceView(src *source.Source) *SourceView {
	sv := &SourceView{src: src}

	sv.img = fynecanvas.NewImageFromImage(spectrum.ToImage(src.Buffer()))
	sv.img.FillMode = fynecanvas.ImageFillOriginal

	sv.sel = fynecanvas.NewRectangle(color.Transparent)
	sv.sel.StrokeColor = color.NRGBA{R: 255, G: 220, B: 0, A: 255}
	sv.sel.StrokeWidth = 1.5
	sv.sel.Hide()

	sv.ExtendBaseWidget(sv)
	return sv
}

// Reload re-renders the view after the source buffer changed.
func (sv *SourceView) Reload() {
	sv.img.Image = spectrum.ToImage(sv.src.Buffer())
	sv.img.Refresh()
}

// ClearRegion removes the explicit region so the default region applies.
func (sv *SourceView) ClearRegion() {
	sv.sel.Hide()
	sv.Refresh()
	sv.src.SetRegion(nil)
}

func (sv *SourceView) CreateRenderer() fyne.WidgetRenderer {
	return &sourceViewRenderer{view: sv}
}

func (sv *SourceView) MinSize() fyne.Size {
	return sv.img.MinSize()
}

// Dragged extends the rubber-band selection. The image is drawn at 1:1, so
// widget coordinates are image coordinates.
func (sv *SourceView) Dragged(ev *fyne.DragEvent) {
	if !sv.dragging {
		sv.dragging = true
		sv.start = ev.Position
		sv.sel.Show()
	}
	sv.end = ev.Position
	sv.placeSelection()
	sv.Refresh()
}

// DragEnd commits the selection as the source's region of interest.
func (sv *SourceView) DragEnd() {
	if !sv.dragging {
		return
	}
	sv.dragging = false

	r := sv.selectionRect()
	region := geometry.NewRectInt(int(r.x), int(r.y), int(r.w), int(r.h))
	sv.src.SetRegion(&region)
}

type floatRect struct {
	x, y, w, h float32
}

func (sv *SourceView) selectionRect() floatRect {
	x1, y1 := sv.start.X, sv.start.Y
	x2, y2 := sv.end.X, sv.end.Y
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	return floatRect{x: x1, y: y1, w: x2 - x1, h: y2 - y1}
}

func (sv *SourceView) placeSelection() {
	r := sv.selectionRect()
	sv.sel.Move(fyne.NewPos(r.x, r.y))
	sv.sel.Resize(fyne.NewSize(r.w, r.h))
}

type sourceViewRenderer struct {
	view *SourceView
}

func (r *sourceViewRenderer) Layout(size fyne.Size) {
	r.view.img.Resize(size)
	r.view.placeSelection()
}

func (r *sourceViewRenderer) MinSize() fyne.Size {
	return r.view.img.MinSize()
}

func (r *sourceViewRenderer) Refresh() {
	fynecanvas.Refresh(r.view)
}

func (r *sourceViewRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.view.img, r.view.sel}
}

func (r *sourceViewRenderer) Destroy() {}
