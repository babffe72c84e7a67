package editor

import (
	"golang.org/x/mobile/event/mouse"
)

// ApplyMouse Drive the session with one mouse event. Left presses and
// releases start and commit gestures, bare motion advances them; other
// buttons and scroll steps leave the state untouched.
func (s Session) ApplyMouse(e mouse.Event) Session {
	x, y := float64(e.X), float64(e.Y)
	switch {
	case e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress:
		return s.PointerDown(x, y)
	case e.Button == mouse.ButtonLeft && e.Direction == mouse.DirRelease:
		return s.PointerUp(x, y)
	case e.Direction == mouse.DirNone:
		return s.PointerMove(x, y)
	}
	return s
}

// HandleMouse Feed one mouse event through the managed session
func (m *Manager) HandleMouse(e mouse.Event) {
	m.Update(func(s Session) Session {
		return s.ApplyMouse(e)
	})
}
