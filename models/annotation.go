package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Every radiograph in a dataset is normalized to this canvas before
// annotation, so box coordinates are always in 1024x1024 image space.
const (
	ImageWidth  = 1024
	ImageHeight = 1024
)

// MinBoxSide is the smallest width or height a stored box may have.
const MinBoxSide = 10

// Tooth is the tooth category assigned to a box.
type Tooth string

const (
	ToothUnknown        Tooth = "unknown"
	ToothCentralIncisor Tooth = "central_incisor"
	ToothLateralIncisor Tooth = "lateral_incisor"
	ToothCanine         Tooth = "canine"
	ToothFirstPremolar  Tooth = "first_premolar"
	ToothSecondPremolar Tooth = "second_premolar"
	ToothFirstMolar     Tooth = "first_molar"
	ToothSecondMolar    Tooth = "second_molar"
	ToothThirdMolar     Tooth = "third_molar"
)

// Treatment is the treatment recorded for a box. TreatmentNone marks a
// healthy tooth, as opposed to an absent value in legacy exports.
type Treatment string

const (
	TreatmentNone       Treatment = "none"
	TreatmentFilling    Treatment = "filling"
	TreatmentRCT        Treatment = "rct"
	TreatmentCrown      Treatment = "crown"
	TreatmentExtraction Treatment = "extraction"
)

var toothValues = map[Tooth]bool{
	ToothUnknown:        true,
	ToothCentralIncisor: true,
	ToothLateralIncisor: true,
	ToothCanine:         true,
	ToothFirstPremolar:  true,
	ToothSecondPremolar: true,
	ToothFirstMolar:     true,
	ToothSecondMolar:    true,
	ToothThirdMolar:     true,
}

var treatmentValues = map[Treatment]bool{
	TreatmentNone:       true,
	TreatmentFilling:    true,
	TreatmentRCT:        true,
	TreatmentCrown:      true,
	TreatmentExtraction: true,
}

// NormalizeTooth maps a stored value onto the closed tooth set. Anything
// outside the set becomes ToothUnknown.
func NormalizeTooth(s string) Tooth {
	t := Tooth(strings.ToLower(strings.TrimSpace(s)))
	if t == "" {
		return ToothUnknown
	}
	if !toothValues[t] {
		log.Warn(fmt.Sprintf("Unrecognized tooth value %q, using %s", s, ToothUnknown))
		return ToothUnknown
	}
	return t
}

// NormalizeTreatment maps a stored value onto the closed treatment set.
// Legacy exports carry mixed-case values such as "RCT", so the value is
// lowercased first. Anything outside the set becomes TreatmentNone.
func NormalizeTreatment(s string) Treatment {
	t := Treatment(strings.ToLower(strings.TrimSpace(s)))
	if t == "" {
		return TreatmentNone
	}
	if !treatmentValues[t] {
		log.Warn(fmt.Sprintf("Unrecognized treatment value %q, using %s", s, TreatmentNone))
		return TreatmentNone
	}
	return t
}

// BoundingBox is one annotated region on a radiograph. Corners are integers
// in image space with X1 <= X2 and Y1 <= Y2; Wd and Ht are stored on the
// wire alongside the corners and recomputed whenever a corner moves.
type BoundingBox struct {
	X1        int       `json:"x1"`
	Y1        int       `json:"y1"`
	X2        int       `json:"x2"`
	Y2        int       `json:"y2"`
	Wd        int       `json:"wd"`
	Ht        int       `json:"ht"`
	Tooth     Tooth     `json:"tooth"`
	Treatment Treatment `json:"treatment"`
	Diagnosis string    `json:"diagnosis"`
	ObjectID  string    `json:"object_id"`
}

// IsSentinel reports whether the box is the all-zero placeholder the
// detection pipeline emits when it finds nothing on an image.
func (b BoundingBox) IsSentinel() bool {
	return b.X1 == 0 && b.Y1 == 0 && b.X2 == 0 && b.Y2 == 0
}

// DefaultBox is the box a sentinel is replaced with when a record is opened
// for editing: centered, a quarter of the canvas wide and half tall. The
// caller assigns the object ID.
func DefaultBox() BoundingBox {
	b := BoundingBox{
		X1:        ImageWidth * 3 / 8,
		Y1:        ImageHeight / 4,
		X2:        ImageWidth * 5 / 8,
		Y2:        ImageHeight * 3 / 4,
		Tooth:     ToothUnknown,
		Treatment: TreatmentNone,
	}
	b.Wd = b.X2 - b.X1
	b.Ht = b.Y2 - b.Y1
	return b
}

// NormalizeBoxes returns a copy of boxes with tooth and treatment values
// folded onto their closed sets. Geometry is passed through untouched.
func NormalizeBoxes(boxes []BoundingBox) []BoundingBox {
	out := make([]BoundingBox, len(boxes))
	for i, b := range boxes {
		b.Tooth = NormalizeTooth(string(b.Tooth))
		b.Treatment = NormalizeTreatment(string(b.Treatment))
		out[i] = b
	}
	return out
}

// AnnotationRecord is one image's entry in the dataset file. Members other
// than file and objects are carried through marshalling verbatim so an edit
// cycle never sheds fields that other tools put there.
type AnnotationRecord struct {
	File    string
	Objects []BoundingBox

	extra map[string]json.RawMessage
}

// Undetected reports whether the record holds only the detection sentinel.
func (r AnnotationRecord) Undetected() bool {
	return len(r.Objects) == 1 && r.Objects[0].IsSentinel()
}

func (r *AnnotationRecord) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if fileRaw, ok := raw["file"]; ok {
		if err := json.Unmarshal(fileRaw, &r.File); err != nil {
			return fmt.Errorf("record file member: %w", err)
		}
		delete(raw, "file")
	}
	if objectsRaw, ok := raw["objects"]; ok {
		if err := json.Unmarshal(objectsRaw, &r.Objects); err != nil {
			return fmt.Errorf("record objects member: %w", err)
		}
		delete(raw, "objects")
	}
	if len(raw) > 0 {
		r.extra = raw
	}
	return nil
}

func (r AnnotationRecord) MarshalJSON() ([]byte, error) {
	objects := r.Objects
	if objects == nil {
		objects = []BoundingBox{}
	}
	objectsRaw, err := json.Marshal(objects)
	if err != nil {
		return nil, err
	}
	fileRaw, err := json.Marshal(r.File)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	buf.WriteString(`"file": `)
	buf.Write(fileRaw)

	keys := make([]string, 0, len(r.extra))
	for k := range r.extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		keyRaw, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.WriteString(", ")
		buf.Write(keyRaw)
		buf.WriteString(": ")
		buf.Write(r.extra[k])
	}

	buf.WriteString(`, "objects": `)
	buf.Write(objectsRaw)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// RecordSummary is the gallery view of a record: which image and how many
// boxes, never the geometry itself.
type RecordSummary struct {
	File     string `json:"file"`
	BoxCount int    `json:"box_count"`
}
