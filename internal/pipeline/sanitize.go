package pipeline

import "live-spectrum/pkg/geometry"

const (
	// minRegionEdge is the smallest usable region dimension. Regions at or
	// below this after clipping are rejected and the cycle is skipped.
	minRegionEdge = 16

	// maxDefaultRegion caps the default full-frame region for very large
	// sources; above this the default collapses to a centered square.
	maxDefaultRegion = 1024
)

// Sanitize clips a requested region against a srcW×srcH source. A negative
// origin shrinks the corresponding dimension and clamps the origin to zero
// without shifting the far edge; a far edge beyond the source shrinks the
// dimension by the overflow. Returns the clipped region plus ok=false when
// the result is degenerate, in which case the compute cycle must be skipped
// silently.
func Sanitize(region geometry.RectInt, srcW, srcH int) (geometry.RectInt, bool) {
	r := region
	if r.X < 0 {
		r.Width += r.X
		r.X = 0
	}
	if r.Y < 0 {
		r.Height += r.Y
		r.Y = 0
	}
	if r.Right() > srcW {
		r.Width = srcW - r.X
	}
	if r.Bottom() > srcH {
		r.Height = srcH - r.Y
	}
	if r.Width <= minRegionEdge || r.Height <= minRegionEdge {
		return r, false
	}
	return r, true
}

// DefaultRegion returns the region used when the source has no explicit
// region of interest: the full source bounds, capped to a centered
// maxDefaultRegion square when the source exceeds that size on either axis.
func DefaultRegion(srcW, srcH int) geometry.RectInt {
	full := geometry.NewRectInt(0, 0, srcW, srcH)
	if srcW <= maxDefaultRegion && srcH <= maxDefaultRegion {
		return full
	}
	side := srcW
	if srcH < side {
		side = srcH
	}
	if side > maxDefaultRegion {
		side = maxDefaultRegion
	}
	return full.Centered(side, side)
}
