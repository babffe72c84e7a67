package editor

import (
	"dentascope/models"
)

// NoSelection marks a session with no selected box.
const NoSelection = -1

type gestureKind int

const (
	gestureNone gestureKind = iota
	gestureDraw
	gestureMove
	gestureResize
)

// Session is the complete editing state for one open record. It is a value:
// every handler returns the successor state and mutates nothing, so a step
// can be applied, discarded or inspected freely and there is exactly one
// place per event where state changes.
type Session struct {
	File  string
	Boxes []models.BoundingBox
	View  Transform

	// Selected indexes Boxes, or NoSelection. Box order is z-order with
	// later boxes on top, so hit testing walks it backwards.
	Selected int

	// Dirty is set by every committed edit and cleared only by a confirmed
	// save. Generation counts committed edits; a save that started at one
	// generation must not clear edits from a later one.
	Dirty      bool
	Generation uint64

	gesture  gestureKind
	corner   Corner
	anchor   Point
	cursor   Point
	original models.BoundingBox
	draft    models.BoundingBox
}

// OpenSession Start editing a record's boxes. Enum values are folded onto
// their closed sets, a lone detection sentinel is swapped for the default
// centered box (leaving the session dirty so the swap persists on the next
// save), and the first box starts out selected.
func OpenSession(file string, boxes []models.BoundingBox, view Transform) Session {
	s := Session{
		File:     file,
		Boxes:    models.NormalizeBoxes(boxes),
		View:     view,
		Selected: NoSelection,
	}
	if len(s.Boxes) == 1 && s.Boxes[0].IsSentinel() {
		b := models.DefaultBox()
		b.ObjectID = NewObjectID()
		s.Boxes = []models.BoundingBox{b}
		s = s.touch()
	}
	if len(s.Boxes) > 0 {
		s.Selected = 0
	}
	return s
}

func (s Session) touch() Session {
	s.Dirty = true
	s.Generation++
	return s
}

func cloneBoxes(boxes []models.BoundingBox) []models.BoundingBox {
	out := make([]models.BoundingBox, len(boxes))
	copy(out, boxes)
	return out
}

// PointerDown Route a press to what lies under it: the selected box's
// corner handles win, then the selected box's interior, then the topmost
// box under the pointer, and empty canvas starts drawing a new box.
func (s Session) PointerDown(px, py float64) Session {
	p := s.View.ToImage(px, py)
	s.cursor = p

	if s.Selected != NoSelection {
		b := s.Boxes[s.Selected]
		if c, ok := hitHandle(b, p, s.View.HandleTolerance()); ok {
			s.gesture = gestureResize
			s.corner = c
			s.anchor = p
			s.original = b
			return s
		}
		if hitBox(b, p) {
			s.gesture = gestureMove
			s.anchor = p
			s.original = b
			return s
		}
	}
	for i := len(s.Boxes) - 1; i >= 0; i-- {
		if hitBox(s.Boxes[i], p) {
			s.Selected = i
			s.gesture = gestureMove
			s.anchor = p
			s.original = s.Boxes[i]
			return s
		}
	}

	s.Selected = NoSelection
	s.gesture = gestureDraw
	s.anchor = p
	s.draft = models.BoundingBox{
		X1: round(p.X), Y1: round(p.Y),
		X2: round(p.X), Y2: round(p.Y),
	}
	return s
}

// PointerMove Advance the in-progress gesture. The grabbed box is always
// recomputed from its pointer-down snapshot plus the whole delta since the
// anchor; moves never stack on each other.
func (s Session) PointerMove(px, py float64) Session {
	p := s.View.ToImage(px, py)
	s.cursor = p

	switch s.gesture {
	case gestureDraw:
		s.draft = derive(models.BoundingBox{
			X1: round(s.anchor.X), Y1: round(s.anchor.Y),
			X2: round(p.X), Y2: round(p.Y),
		})
	case gestureMove:
		s.Boxes = cloneBoxes(s.Boxes)
		s.Boxes[s.Selected] = MoveBox(s.original, p.X-s.anchor.X, p.Y-s.anchor.Y)
	case gestureResize:
		s.Boxes = cloneBoxes(s.Boxes)
		s.Boxes[s.Selected] = ResizeBox(s.original, s.corner, p.X-s.anchor.X, p.Y-s.anchor.Y)
	}
	return s
}

// PointerUp Commit the gesture at the release position. A finished draw
// under the minimum size vanishes without touching selection or the dirty
// flag; everything else marks the record edited.
func (s Session) PointerUp(px, py float64) Session {
	return s.commit(s.View.ToImage(px, py))
}

// PointerLeave The pointer left the canvas: commit as if released at the
// last known position.
func (s Session) PointerLeave() Session {
	return s.commit(s.cursor)
}

func (s Session) commit(p Point) Session {
	s.cursor = p

	switch s.gesture {
	case gestureDraw:
		s.gesture = gestureNone
		box, ok := CreateBox(s.anchor, p)
		if !ok {
			return s
		}
		s.Boxes = append(cloneBoxes(s.Boxes), box)
		s.Selected = len(s.Boxes) - 1
		return s.touch()
	case gestureMove, gestureResize:
		// The box already sits at its final position from the last move
		// event; releasing only ends the gesture.
		s.gesture = gestureNone
		return s.touch()
	}
	return s
}

// Draft The rubber-band rectangle of an in-progress draw, if any
func (s Session) Draft() (models.BoundingBox, bool) {
	if s.gesture != gestureDraw {
		return models.BoundingBox{}, false
	}
	return s.draft, true
}

// DeleteSelected Remove the selected box. Selection falls on the box now
// occupying the same position, then on the new last box, then on nothing.
func (s Session) DeleteSelected() Session {
	if s.Selected == NoSelection {
		return s
	}
	i := s.Selected
	boxes := cloneBoxes(s.Boxes)
	s.Boxes = append(boxes[:i], boxes[i+1:]...)
	switch {
	case len(s.Boxes) == 0:
		s.Selected = NoSelection
	case i >= len(s.Boxes):
		s.Selected = len(s.Boxes) - 1
	}
	return s.touch()
}

// SetTooth Assign the selected box's tooth category
func (s Session) SetTooth(t models.Tooth) Session {
	if s.Selected == NoSelection {
		return s
	}
	s.Boxes = cloneBoxes(s.Boxes)
	s.Boxes[s.Selected].Tooth = t
	return s.touch()
}

// SetTreatment Assign the selected box's treatment
func (s Session) SetTreatment(t models.Treatment) Session {
	if s.Selected == NoSelection {
		return s
	}
	s.Boxes = cloneBoxes(s.Boxes)
	s.Boxes[s.Selected].Treatment = t
	return s.touch()
}

// SetDiagnosis Assign the selected box's free-text diagnosis
func (s Session) SetDiagnosis(d string) Session {
	if s.Selected == NoSelection {
		return s
	}
	s.Boxes = cloneBoxes(s.Boxes)
	s.Boxes[s.Selected].Diagnosis = d
	return s.touch()
}

// ZoomIn Zoom the view one step in. View changes never dirty the record
func (s Session) ZoomIn() Session {
	s.View = s.View.ZoomIn()
	return s
}

// ZoomOut Zoom the view one step out
func (s Session) ZoomOut() Session {
	s.View = s.View.ZoomOut()
	return s
}

// Snapshot Copy the boxes together with the generation that produced them,
// for handing to a save without holding any lock
func (s Session) Snapshot() ([]models.BoundingBox, uint64) {
	return cloneBoxes(s.Boxes), s.Generation
}

// Saved Record a completed save of the given generation. Dirty clears only
// when no edit landed while the save was in flight
func (s Session) Saved(generation uint64) Session {
	if s.Generation == generation {
		s.Dirty = false
	}
	return s
}

// hitBox reports whether an image-space point falls inside a box, edges
// included.
func hitBox(b models.BoundingBox, p Point) bool {
	return p.X >= float64(b.X1) && p.X <= float64(b.X2) &&
		p.Y >= float64(b.Y1) && p.Y <= float64(b.Y2)
}

// hitHandle finds the corner handle under an image-space point, if any.
// Each zone is a square of side tol centered on its corner; on boxes small
// enough for zones to overlap the northwest corner wins.
func hitHandle(b models.BoundingBox, p Point, tol float64) (Corner, bool) {
	hs := tol / 2
	corners := []struct {
		c    Corner
		x, y float64
	}{
		{CornerNW, float64(b.X1), float64(b.Y1)},
		{CornerNE, float64(b.X2), float64(b.Y1)},
		{CornerSW, float64(b.X1), float64(b.Y2)},
		{CornerSE, float64(b.X2), float64(b.Y2)},
	}
	for _, h := range corners {
		if p.X >= h.x-hs && p.X <= h.x+hs && p.Y >= h.y-hs && p.Y <= h.y+hs {
			return h.c, true
		}
	}
	return 0, false
}
