package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dentascope/models"
)

// recordA carries odd spacing and an extra member on purpose: both must
// survive edit cycles untouched.
const recordA = `{"file": "a.jpg",  "note": "keep",   "objects": []}`

func seedDataset(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dataset.json")
	content := "[\n  " + recordA + ",\n" +
		`  {"file": "b.jpg", "objects": [{"x1": 10, "y1": 20, "x2": 110, "y2": 220, "wd": 100, "ht": 200, "tooth": "canine", "treatment": "none", "diagnosis": "", "object_id": "b_canine_0"}]},` + "\n" +
		`  {"file": "c.jpg", "objects": [{"x1": 0, "y1": 0, "x2": 0, "y2": 0, "wd": 0, "ht": 0, "tooth": "unknown", "treatment": "none", "diagnosis": "", "object_id": "c_unknown_0"}, {"x1": 5, "y1": 5, "x2": 50, "y2": 50, "wd": 45, "ht": 45, "tooth": "canine", "treatment": "rct", "diagnosis": "", "object_id": "c_canine_1"}]}` + "\n]\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("seeding dataset: %v", err)
	}
	return NewStore(path)
}

func TestSummary(t *testing.T) {
	s := seedDataset(t)
	got, err := s.Summary()
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	want := []models.RecordSummary{
		{File: "a.jpg", BoxCount: 0},
		{File: "b.jpg", BoxCount: 1},
		{File: "c.jpg", BoxCount: 2},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d summaries, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("summary[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestRecordReturnsDiskBytes(t *testing.T) {
	s := seedDataset(t)
	raw, err := s.Record("a.jpg")
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if string(raw) != recordA {
		t.Errorf("record bytes rewritten:\n got %s\nwant %s", raw, recordA)
	}
}

func TestRecordNotFound(t *testing.T) {
	s := seedDataset(t)
	if _, err := s.Record("missing.jpg"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if err := s.ReplaceObjects("missing.jpg", nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("ReplaceObjects err = %v, want ErrNotFound", err)
	}
}

func TestReplaceObjects(t *testing.T) {
	s := seedDataset(t)
	boxes := []models.BoundingBox{{
		X1: 30, Y1: 40, X2: 130, Y2: 240, Wd: 100, Ht: 200,
		Tooth: models.ToothCanine, Treatment: models.TreatmentRCT,
		ObjectID: "b_canine_0",
	}}
	if err := s.ReplaceObjects("b.jpg", boxes); err != nil {
		t.Fatalf("ReplaceObjects: %v", err)
	}

	data, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatalf("reading dataset back: %v", err)
	}
	if !strings.Contains(string(data), recordA) {
		t.Errorf("untouched record was reformatted:\n%s", data)
	}

	raw, err := s.Record("b.jpg")
	if err != nil {
		t.Fatalf("Record after replace: %v", err)
	}
	var rec models.AnnotationRecord
	if err := rec.UnmarshalJSON(raw); err != nil {
		t.Fatalf("decoding replaced record: %v", err)
	}
	if len(rec.Objects) != 1 || rec.Objects[0].X1 != 30 || rec.Objects[0].Treatment != models.TreatmentRCT {
		t.Errorf("replaced objects = %+v", rec.Objects)
	}
}

func TestReplaceObjectsKeepsRecordMembers(t *testing.T) {
	s := seedDataset(t)
	if err := s.ReplaceObjects("a.jpg", []models.BoundingBox{}); err != nil {
		t.Fatalf("ReplaceObjects: %v", err)
	}
	raw, err := s.Record("a.jpg")
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if !strings.Contains(string(raw), `"note": "keep"`) {
		t.Errorf("extra member dropped from touched record: %s", raw)
	}
}

func TestMalformedDataset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("seeding: %v", err)
	}
	s := NewStore(path)
	if _, err := s.Summary(); !errors.Is(err, ErrMalformedDataset) {
		t.Errorf("Summary err = %v, want ErrMalformedDataset", err)
	}
	if _, err := s.Record("a.jpg"); !errors.Is(err, ErrMalformedDataset) {
		t.Errorf("Record err = %v, want ErrMalformedDataset", err)
	}
	if err := s.ReplaceObjects("a.jpg", nil); !errors.Is(err, ErrMalformedDataset) {
		t.Errorf("ReplaceObjects err = %v, want ErrMalformedDataset", err)
	}
}
