package dataset

import (
	"errors"
	"os"
	"testing"

	"dentascope/models"
)

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

func saveGeneration(t *testing.T, s *Store, n int) {
	t.Helper()
	boxes := []models.BoundingBox{{
		X1: n, Y1: n, X2: n + 100, Y2: n + 100, Wd: 100, Ht: 100,
		Tooth: models.ToothCanine, Treatment: models.TreatmentNone,
		ObjectID: "b_canine_0",
	}}
	if err := s.ReplaceObjects("b.jpg", boxes); err != nil {
		t.Fatalf("save %d: %v", n, err)
	}
}

func TestBackupRing(t *testing.T) {
	s := seedDataset(t)
	if got, want := BackupPath(s.Path(), 2), s.Path()+".backup.2"; got != want {
		t.Fatalf("BackupPath = %s, want %s", got, want)
	}

	// Four saves, capturing the live file before each one. Slot 1 must
	// always hold the immediately preceding state and the ring must never
	// grow past three slots.
	var before []string
	for n := 1; n <= 4; n++ {
		before = append(before, readFile(t, s.Path()))
		saveGeneration(t, s, n)

		if got := readFile(t, BackupPath(s.Path(), 1)); got != before[n-1] {
			t.Fatalf("after save %d slot 1 does not hold the pre-save state", n)
		}
	}

	for slot := 1; slot <= BackupDepth; slot++ {
		// After 4 saves: slot 1 = state before save 4, slot 3 = before save 2.
		want := before[4-slot]
		if got := readFile(t, BackupPath(s.Path(), slot)); got != want {
			t.Errorf("slot %d holds the wrong generation", slot)
		}
	}
	if _, err := os.Stat(BackupPath(s.Path(), BackupDepth+1)); !os.IsNotExist(err) {
		t.Errorf("ring grew past %d slots", BackupDepth)
	}

	// The state before save 1 aged out with the fourth save.
	first := before[0]
	for slot := 1; slot <= BackupDepth; slot++ {
		if readFile(t, BackupPath(s.Path(), slot)) == first {
			t.Errorf("oldest state still present in slot %d after expiry", slot)
		}
	}
}

func TestRotationFailureAbortsSave(t *testing.T) {
	s := seedDataset(t)
	live := readFile(t, s.Path())

	// A non-empty directory in the oldest slot cannot be removed, so the
	// rotation fails on its first step.
	oldest := BackupPath(s.Path(), BackupDepth)
	if err := os.Mkdir(oldest, 0755); err != nil {
		t.Fatalf("blocking slot %d: %v", BackupDepth, err)
	}
	if err := os.WriteFile(oldest+"/keep", []byte("x"), 0644); err != nil {
		t.Fatalf("blocking slot %d: %v", BackupDepth, err)
	}

	err := s.ReplaceObjects("b.jpg", []models.BoundingBox{})
	if !errors.Is(err, ErrBackupRotation) {
		t.Fatalf("err = %v, want ErrBackupRotation", err)
	}
	if got := readFile(t, s.Path()); got != live {
		t.Error("live dataset modified by an aborted save")
	}
	if _, err := os.Stat(BackupPath(s.Path(), 1)); !os.IsNotExist(err) {
		t.Error("aborted save still produced a slot 1 backup")
	}
}

func TestRotationSkipsMissingSlots(t *testing.T) {
	s := seedDataset(t)

	// First ever save: no slots exist yet, rotation must still succeed and
	// leave exactly one backup.
	saveGeneration(t, s, 1)
	if _, err := os.Stat(BackupPath(s.Path(), 1)); err != nil {
		t.Fatalf("slot 1 missing after first save: %v", err)
	}
	for slot := 2; slot <= BackupDepth; slot++ {
		if _, err := os.Stat(BackupPath(s.Path(), slot)); !os.IsNotExist(err) {
			t.Errorf("slot %d should not exist after a single save", slot)
		}
	}
}
