package editor

import (
	"testing"

	"dentascope/models"
)

func TestCreateBoxRejectsUnderMinimum(t *testing.T) {
	// Normalizes to 95,95..100,100: five pixels a side, below the minimum.
	if _, ok := CreateBox(Point{X: 100, Y: 100}, Point{X: 95, Y: 95}); ok {
		t.Fatal("5x5 draw should be rejected")
	}
	// Wide enough but too short.
	if _, ok := CreateBox(Point{X: 0, Y: 0}, Point{X: 100, Y: 9}); ok {
		t.Fatal("100x9 draw should be rejected")
	}
	// Exactly the minimum passes.
	if _, ok := CreateBox(Point{X: 0, Y: 0}, Point{X: 10, Y: 10}); !ok {
		t.Fatal("10x10 draw should be accepted")
	}
}

func TestCreateBoxNormalizesAndDerives(t *testing.T) {
	b, ok := CreateBox(Point{X: 100, Y: 100}, Point{X: 200, Y: 250})
	if !ok {
		t.Fatal("draw unexpectedly rejected")
	}
	if b.X1 != 100 || b.Y1 != 100 || b.X2 != 200 || b.Y2 != 250 {
		t.Errorf("geometry = (%d,%d,%d,%d)", b.X1, b.Y1, b.X2, b.Y2)
	}
	if b.Wd != 100 || b.Ht != 150 {
		t.Errorf("size = %dx%d, want 100x150", b.Wd, b.Ht)
	}

	// Drawing up-left gives the same box as drawing down-right.
	r, ok := CreateBox(Point{X: 200, Y: 250}, Point{X: 100, Y: 100})
	if !ok {
		t.Fatal("reversed draw unexpectedly rejected")
	}
	if r.X1 != b.X1 || r.Y1 != b.Y1 || r.X2 != b.X2 || r.Y2 != b.Y2 {
		t.Errorf("reversed draw geometry = (%d,%d,%d,%d)", r.X1, r.Y1, r.X2, r.Y2)
	}
}

func TestCreateBoxDefaults(t *testing.T) {
	a, _ := CreateBox(Point{}, Point{X: 50, Y: 50})
	b, _ := CreateBox(Point{}, Point{X: 50, Y: 50})
	if a.Tooth != models.ToothUnknown || a.Treatment != models.TreatmentNone {
		t.Errorf("new box properties = %s/%s", a.Tooth, a.Treatment)
	}
	if a.ObjectID == "" || b.ObjectID == "" {
		t.Fatal("new boxes need identifiers")
	}
	if a.ObjectID == b.ObjectID {
		t.Error("two new boxes share an identifier")
	}
}

func TestMoveBox(t *testing.T) {
	b := derive(models.BoundingBox{X1: 100, Y1: 100, X2: 200, Y2: 200})
	moved := MoveBox(b, 10, -20)
	if moved.X1 != 110 || moved.Y1 != 80 || moved.X2 != 210 || moved.Y2 != 180 {
		t.Errorf("moved geometry = (%d,%d,%d,%d)", moved.X1, moved.Y1, moved.X2, moved.Y2)
	}
	if moved.Wd != 100 || moved.Ht != 100 {
		t.Errorf("moving changed the size to %dx%d", moved.Wd, moved.Ht)
	}
	// Fractional deltas round to the nearest pixel.
	nudged := MoveBox(b, 0.5, -0.4)
	if nudged.X1 != 101 || nudged.Y1 != 100 {
		t.Errorf("rounded geometry = (%d,%d)", nudged.X1, nudged.Y1)
	}
}

func TestResizeBoxCorners(t *testing.T) {
	base := derive(models.BoundingBox{X1: 100, Y1: 100, X2: 200, Y2: 200})
	cases := []struct {
		name   string
		corner Corner
		want   [4]int
	}{
		{"nw", CornerNW, [4]int{110, 120, 200, 200}},
		{"ne", CornerNE, [4]int{100, 120, 210, 200}},
		{"sw", CornerSW, [4]int{110, 100, 200, 220}},
		{"se", CornerSE, [4]int{100, 100, 210, 220}},
	}
	for _, c := range cases {
		got := ResizeBox(base, c.corner, 10, 20)
		if got.X1 != c.want[0] || got.Y1 != c.want[1] || got.X2 != c.want[2] || got.Y2 != c.want[3] {
			t.Errorf("%s: geometry = (%d,%d,%d,%d), want %v", c.name, got.X1, got.Y1, got.X2, got.Y2, c.want)
		}
		if got.Wd != got.X2-got.X1 || got.Ht != got.Y2-got.Y1 {
			t.Errorf("%s: stored size %dx%d out of step with corners", c.name, got.Wd, got.Ht)
		}
	}
}

func TestResizeBoxCrossingFlips(t *testing.T) {
	base := derive(models.BoundingBox{X1: 100, Y1: 100, X2: 200, Y2: 200})
	// Drag the northwest corner past the southeast one.
	got := ResizeBox(base, CornerNW, 150, 150)
	if got.X1 != 200 || got.Y1 != 200 || got.X2 != 250 || got.Y2 != 250 {
		t.Errorf("flipped geometry = (%d,%d,%d,%d)", got.X1, got.Y1, got.X2, got.Y2)
	}
	if got.Wd != 50 || got.Ht != 50 {
		t.Errorf("flipped size = %dx%d", got.Wd, got.Ht)
	}
	if got.X1 > got.X2 || got.Y1 > got.Y2 {
		t.Error("corner ordering broken after flip")
	}
}
