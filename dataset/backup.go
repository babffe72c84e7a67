package dataset

import (
	"errors"
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
)

// BackupDepth is how many prior dataset states are kept next to the live
// file. Slot 1 is the most recent.
const BackupDepth = 3

// ErrBackupRotation marks a save aborted because the backup ring could not
// be advanced. The live dataset file is left as it was.
var ErrBackupRotation = errors.New("backup rotation failed")

// BackupPath Return the ring slot path for a dataset file, e.g. dataset.json.backup.1
func BackupPath(path string, slot int) string {
	return fmt.Sprintf("%s.backup.%d", path, slot)
}

// rotateBackups Advance the ring before a rewrite: drop the oldest slot,
// shift the others up, copy the live file into slot 1. Missing slots are
// skipped; the first failing step aborts the whole save.
func rotateBackups(path string) error {
	oldest := BackupPath(path, BackupDepth)
	if err := os.Remove(oldest); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: dropping %s: %v", ErrBackupRotation, oldest, err)
	}
	for slot := BackupDepth - 1; slot >= 1; slot-- {
		src := BackupPath(path, slot)
		if err := os.Rename(src, BackupPath(path, slot+1)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("%w: shifting %s: %v", ErrBackupRotation, src, err)
		}
	}
	if err := copyFile(path, BackupPath(path, 1)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: preserving %s: %v", ErrBackupRotation, path, err)
	}
	log.Debug(fmt.Sprintf("Rotated backups for %s", path))
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
