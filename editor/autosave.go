package editor

import (
	"context"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"dentascope/models"
)

// DefaultAutosaveInterval is how often the loop checks for unsaved edits.
const DefaultAutosaveInterval = 30 * time.Second

// Saver persists a record's boxes. client.Client implements it over the
// annotation service's HTTP API.
type Saver interface {
	ReplaceObjects(ctx context.Context, file string, boxes []models.BoundingBox) error
}

// Autosaver periodically flushes a dirty session through a Saver. Manual
// saves and the save before switching records go through the same Flush
// path, so every save is dirty-gated and rotates backups at most once per
// batch of edits.
type Autosaver struct {
	stop chan struct{}

	wg      sync.WaitGroup
	manager *Manager
	saver   Saver
}

// NewAutosaver Start the periodic save loop
func NewAutosaver(m *Manager, saver Saver, interval time.Duration) *Autosaver {
	if interval <= 0 {
		interval = DefaultAutosaveInterval
	}
	log.Info("Starting autosave loop with interval ", interval)
	a := &Autosaver{
		stop:    make(chan struct{}),
		manager: m,
		saver:   saver,
	}

	a.wg.Add(1)
	go func(interval time.Duration) {
		defer a.wg.Done()
		a.saveLoop(interval)
	}(interval)

	return a
}

func (a *Autosaver) saveLoop(interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-a.stop:
			return
		case <-t.C:
			if err := a.Flush(context.Background()); err != nil {
				log.Warn(fmt.Sprintf("Autosave failed, keeping edits for the next cycle: %v", err))
			}
		}
	}
}

// Flush Save the open record now if it has unsaved edits. A clean or absent
// record is a no-op. The dirty flag clears only when the save succeeds and
// no edit landed while it was in flight; on failure the edits simply stay
// dirty. No deadline is imposed here, the caller's context rules
func (a *Autosaver) Flush(ctx context.Context) error {
	file, boxes, generation, ok := a.manager.DirtySnapshot()
	if !ok {
		return nil
	}
	if err := a.saver.ReplaceObjects(ctx, file, boxes); err != nil {
		return err
	}
	a.manager.Confirm(generation)
	log.Debug(fmt.Sprintf("Flushed %d boxes for %s", len(boxes), file))
	return nil
}

// Stop End the save loop. Callers that want a final save run Flush first
func (a *Autosaver) Stop() {
	close(a.stop)
	a.wg.Wait()
}
