package editor

import (
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"dentascope/models"
)

// Manager owns the live session behind a mutex, so the pointer stream, the
// property panel and the autosave loop all see one consistent state. All
// session logic stays in the Session value; the manager only serializes
// access to the current one.
type Manager struct {
	mu      sync.Mutex
	session Session
	open    bool
}

// NewManager Create a manager with no record open
func NewManager() *Manager {
	return &Manager{}
}

// Open Replace the current session with a fresh one for a record
func (m *Manager) Open(file string, boxes []models.BoundingBox, view Transform) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = OpenSession(file, boxes, view)
	m.open = true
	log.Info(fmt.Sprintf("Opened %s with %d boxes", file, len(m.session.Boxes)))
}

// Close Drop the current session, if any
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = Session{}
	m.open = false
}

// Update Apply one step to the session under the lock. No-op when nothing
// is open
func (m *Manager) Update(step func(Session) Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.open {
		return
	}
	m.session = step(m.session)
}

// Current A copy of the session state, and whether a record is open
func (m *Manager) Current() (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session, m.open
}

// DirtySnapshot Copy the boxes of an open, dirty record for saving. The
// copy is taken under the lock but the save itself runs without it, so
// editing never blocks on a slow round trip
func (m *Manager) DirtySnapshot() (file string, boxes []models.BoundingBox, generation uint64, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.open || !m.session.Dirty {
		return "", nil, 0, false
	}
	boxes, generation = m.session.Snapshot()
	return m.session.File, boxes, generation, true
}

// Confirm Record that a save of the given generation completed
func (m *Manager) Confirm(generation uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.open {
		return
	}
	m.session = m.session.Saved(generation)
}
