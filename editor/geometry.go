package editor

import (
	"math"

	"dentascope/models"
)

// Zoom bounds and step for the viewer: two steps of 1.25 out from a fitted
// image down to 0.75, two steps in up to 1.56.
const (
	ZoomMin  = 0.75
	ZoomMax  = 1.56
	ZoomStep = 1.25
)

// handleReach is the apparent side, in display pixels, of the square zone
// centered on a corner handle that accepts a grab.
const handleReach = 10

// Point is a position in image space.
type Point struct {
	X float64
	Y float64
}

// Transform maps between display pixels and image coordinates. BaseScale
// fits the canvas into the viewport and is fixed for the life of a session;
// Zoom is the user's adjustment on top of it. OriginX and OriginY are the
// display position of the image's top-left corner.
type Transform struct {
	BaseScale float64
	Zoom      float64
	OriginX   float64
	OriginY   float64
}

// NewTransform Fit the canvas into a viewport and start at zoom 1
func NewTransform(viewW, viewH float64) Transform {
	return Transform{BaseScale: FitScale(viewW, viewH), Zoom: 1}
}

// FitScale The scale that fits the full canvas into viewW x viewH. Capped
// at 1.0 so small viewports shrink the image but large ones never enlarge it
func FitScale(viewW, viewH float64) float64 {
	s := math.Min(viewW/models.ImageWidth, viewH/models.ImageHeight)
	if s > 1 {
		s = 1
	}
	return s
}

// Scale The effective display scale
func (t Transform) Scale() float64 {
	return t.BaseScale * t.Zoom
}

// ToImage Convert a display position to image coordinates
func (t Transform) ToImage(px, py float64) Point {
	s := t.Scale()
	return Point{X: (px - t.OriginX) / s, Y: (py - t.OriginY) / s}
}

// ToDisplay Convert an image position to display coordinates
func (t Transform) ToDisplay(p Point) (float64, float64) {
	s := t.Scale()
	return p.X*s + t.OriginX, p.Y*s + t.OriginY
}

// ZoomIn One zoom step in, clamped
func (t Transform) ZoomIn() Transform {
	t.Zoom = clampZoom(t.Zoom * ZoomStep)
	return t
}

// ZoomOut One zoom step out, clamped
func (t Transform) ZoomOut() Transform {
	t.Zoom = clampZoom(t.Zoom / ZoomStep)
	return t
}

func clampZoom(z float64) float64 {
	if z < ZoomMin {
		return ZoomMin
	}
	if z > ZoomMax {
		return ZoomMax
	}
	return z
}

// HandleTolerance Image-space reach of a corner handle at the current
// scale, so handles feel the same size at every zoom level
func (t Transform) HandleTolerance() float64 {
	return handleReach / t.Scale()
}
