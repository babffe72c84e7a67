package editor

import (
	"math"

	"github.com/twinj/uuid"

	"dentascope/models"
)

// Corner identifies which handle of a box a resize gesture owns. Names
// follow compass convention with north at the top of the image.
type Corner int

const (
	CornerNW Corner = iota
	CornerNE
	CornerSW
	CornerSE
)

// NewObjectID Mint an identifier for a box created in the editor
func NewObjectID() string {
	return uuid.NewV4().String()
}

func round(v float64) int {
	return int(math.Round(v))
}

// derive restores the corner ordering invariant and recomputes the stored
// size. Every mutation funnels through here.
func derive(b models.BoundingBox) models.BoundingBox {
	if b.X1 > b.X2 {
		b.X1, b.X2 = b.X2, b.X1
	}
	if b.Y1 > b.Y2 {
		b.Y1, b.Y2 = b.Y2, b.Y1
	}
	b.Wd = b.X2 - b.X1
	b.Ht = b.Y2 - b.Y1
	return b
}

// CreateBox Build a box from the two corners of a completed draw. The
// second return is false when either side would come out under the minimum,
// in which case no box is produced
func CreateBox(anchor, cursor Point) (models.BoundingBox, bool) {
	b := derive(models.BoundingBox{
		X1: round(anchor.X), Y1: round(anchor.Y),
		X2: round(cursor.X), Y2: round(cursor.Y),
	})
	if b.Wd < models.MinBoxSide || b.Ht < models.MinBoxSide {
		return models.BoundingBox{}, false
	}
	b.Tooth = models.ToothUnknown
	b.Treatment = models.TreatmentNone
	b.ObjectID = NewObjectID()
	return b, true
}

// MoveBox Translate a whole box by an image-space delta. The delta is
// always the full distance from the gesture anchor, never an increment, so
// rounding cannot drift over a long drag
func MoveBox(b models.BoundingBox, dx, dy float64) models.BoundingBox {
	b.X1 = round(float64(b.X1) + dx)
	b.Y1 = round(float64(b.Y1) + dy)
	b.X2 = round(float64(b.X2) + dx)
	b.Y2 = round(float64(b.Y2) + dy)
	return derive(b)
}

// ResizeBox Drag one corner of a box by an image-space delta. Only the
// grabbed corner's coordinates change; dragging past the opposite corner
// flips the box instead of collapsing it
func ResizeBox(b models.BoundingBox, c Corner, dx, dy float64) models.BoundingBox {
	switch c {
	case CornerNW:
		b.X1 = round(float64(b.X1) + dx)
		b.Y1 = round(float64(b.Y1) + dy)
	case CornerNE:
		b.X2 = round(float64(b.X2) + dx)
		b.Y1 = round(float64(b.Y1) + dy)
	case CornerSW:
		b.X1 = round(float64(b.X1) + dx)
		b.Y2 = round(float64(b.Y2) + dy)
	case CornerSE:
		b.X2 = round(float64(b.X2) + dx)
		b.Y2 = round(float64(b.Y2) + dy)
	}
	return derive(b)
}
