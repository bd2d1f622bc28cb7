// Package geometry provides basic integer geometric types used throughout the application.
package geometry

// PointInt represents a 2D point with integer coordinates.
type PointInt struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add returns the sum of two points.
func (p PointInt) Add(other PointInt) PointInt {
	return PointInt{X: p.X + other.X, Y: p.Y + other.Y}
}

// RectInt represents a rectangle with integer coordinates.
type RectInt struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// NewRectInt creates a new RectInt.
func NewRectInt(x, y, width, height int) RectInt {
	return RectInt{X: x, Y: y, Width: width, Height: height}
}

// Right returns the X coordinate one past the right edge.
func (r RectInt) Right() int {
	return r.X + r.Width
}

// Bottom returns the Y coordinate one past the bottom edge.
func (r RectInt) Bottom() int {
	return r.Y + r.Height
}

// Area returns the number of pixels covered by the rectangle.
func (r RectInt) Area() int {
	if r.Width <= 0 || r.Height <= 0 {
		return 0
	}
	return r.Width * r.Height
}

// Empty returns true if the rectangle covers no pixels.
func (r RectInt) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Contains returns true if the point is inside the rectangle.
func (r RectInt) Contains(p PointInt) bool {
	return p.X >= r.X && p.X < r.Right() && p.Y >= r.Y && p.Y < r.Bottom()
}

// Centered returns a rectangle of the given size centered within r.
// If the requested size exceeds r in a dimension, that dimension of r
// is returned unchanged.
func (r RectInt) Centered(width, height int) RectInt {
	if width > r.Width {
		width = r.Width
	}
	if height > r.Height {
		height = r.Height
	}
	return RectInt{
		X:      r.X + (r.Width-width)/2,
		Y:      r.Y + (r.Height-height)/2,
		Width:  width,
		Height: height,
	}
}
