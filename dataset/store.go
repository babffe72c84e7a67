package dataset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	log "github.com/sirupsen/logrus"

	"dentascope/models"
)

var (
	// ErrNotFound No record with that file key in the dataset
	ErrNotFound = errors.New("no record for that file in the dataset")
	// ErrMalformedDataset The dataset file could not be parsed
	ErrMalformedDataset = errors.New("dataset file is not valid JSON")
)

// Store reads and rewrites one dataset file wholesale. Every operation goes
// back to disk, so edits made by other tools between calls are picked up.
// A process-local mutex serializes read-modify-write cycles; concurrent
// writers from other processes are not guarded against.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore Create a store over the dataset file at path
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path The dataset file location
func (s *Store) Path() string {
	return s.path
}

// rawRecord keeps a record's on-disk bytes so untouched records survive a
// rewrite byte-for-byte.
type rawRecord struct {
	file string
	raw  json.RawMessage
}

func (s *Store) load() ([]rawRecord, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("reading dataset: %w", err)
	}
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDataset, err)
	}

	records := make([]rawRecord, len(raws))
	for i, raw := range raws {
		var key struct {
			File string `json:"file"`
		}
		if err := json.Unmarshal(raw, &key); err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrMalformedDataset, i, err)
		}
		records[i] = rawRecord{file: key.File, raw: raw}
	}
	log.Debug(fmt.Sprintf("Loaded %d records from %s", len(records), s.path))
	return records, nil
}

// Summary List every record with its box count, in dataset order
func (s *Store) Summary() ([]models.RecordSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return nil, err
	}
	out := make([]models.RecordSummary, len(records))
	for i, rec := range records {
		var counted struct {
			Objects []json.RawMessage `json:"objects"`
		}
		if err := json.Unmarshal(rec.raw, &counted); err != nil {
			return nil, fmt.Errorf("%w: record %s: %v", ErrMalformedDataset, rec.file, err)
		}
		out[i] = models.RecordSummary{File: rec.file, BoxCount: len(counted.Objects)}
	}
	return out, nil
}

// Record Return one record's JSON exactly as stored on disk
func (s *Store) Record(file string) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		if rec.file == file {
			return rec.raw, nil
		}
	}
	log.Debug("No record for file ", file)
	return nil, ErrNotFound
}

// ReplaceObjects Swap one record's boxes and rewrite the dataset file,
// rotating the backup ring first. All other records keep their exact bytes;
// the touched record keeps its members apart from objects.
func (s *Store) ReplaceObjects(file string, boxes []models.BoundingBox) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return err
	}
	idx := -1
	for i, rec := range records {
		if rec.file == file {
			idx = i
			break
		}
	}
	if idx == -1 {
		return ErrNotFound
	}

	var rec models.AnnotationRecord
	if err := json.Unmarshal(records[idx].raw, &rec); err != nil {
		return fmt.Errorf("%w: record %s: %v", ErrMalformedDataset, file, err)
	}
	rec.Objects = boxes
	updated, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding record %s: %w", file, err)
	}
	records[idx].raw = updated

	if err := rotateBackups(s.path); err != nil {
		log.Warn(fmt.Sprintf("Aborting save of %s: %v", s.path, err))
		return err
	}
	if err := s.writeAll(records); err != nil {
		return err
	}
	log.Info(fmt.Sprintf("Saved %d objects for %s", len(boxes), file))
	return nil
}

// writeAll rewrites the dataset through a temp file in the same directory,
// so a crash mid-write can never leave a truncated dataset behind.
func (s *Store) writeAll(records []rawRecord) error {
	var buf bytes.Buffer
	buf.WriteString("[\n")
	for i, rec := range records {
		if i > 0 {
			buf.WriteString(",\n")
		}
		buf.WriteString("  ")
		buf.Write(rec.raw)
	}
	buf.WriteString("\n]\n")

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("writing dataset: %w", err)
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing dataset: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing dataset: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing dataset: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing dataset: %w", err)
	}
	return nil
}
