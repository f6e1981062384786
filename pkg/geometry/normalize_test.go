package geometry

import (
	"testing"

	"github.com/lalanikarim/deepseek-ocr/pkg/types"
)

func box(label string, coords ...int) types.DetectionTag {
	poly := make(types.Polygon, 0, len(coords)/2)
	for i := 0; i < len(coords); i += 2 {
		poly = append(poly, types.Point{X: coords[i], Y: coords[i+1]})
	}
	return types.DetectionTag{Label: label, Polygons: []types.Polygon{poly}}
}

func TestNormalizeBasic(t *testing.T) {
	tags := []types.DetectionTag{box("cat", 100, 100, 200, 200)}

	rects, err := Normalize(tags, 1000, 1000)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	if len(rects) != 1 {
		t.Fatalf("expected 1 rectangle, got %d", len(rects))
	}
	want := types.Rectangle{Label: "cat", X0: 100, Y0: 100, X1: 200, Y1: 200}
	if rects[0] != want {
		t.Errorf("got %+v, want %+v", rects[0], want)
	}
}

func TestNormalizeUpperBoundNoOverflow(t *testing.T) {
	tags := []types.DetectionTag{box("full", 0, 0, 999, 999)}

	rects, err := Normalize(tags, 1000, 1000)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	// 999 * 1000 / 999 is exactly 1000; the clamp must pull it back
	// onto the last pixel.
	if rects[0].X1 != 999 || rects[0].Y1 != 999 {
		t.Errorf("upper bound overflowed: %+v", rects[0])
	}
}

func TestNormalizeClampsOutOfRange(t *testing.T) {
	tags := []types.DetectionTag{box("wild", -50, 0, 1500, 999)}

	rects, err := Normalize(tags, 800, 600)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	if rects[0].X0 != 0 {
		t.Errorf("negative coordinate not clamped to 0: %d", rects[0].X0)
	}
	if rects[0].X1 != 799 {
		t.Errorf("oversized coordinate not clamped to width-1: %d", rects[0].X1)
	}
	if rects[0].Y1 != 599 {
		t.Errorf("grid max should land on height-1: %d", rects[0].Y1)
	}
}

func TestNormalizeDegeneratePoint(t *testing.T) {
	tags := []types.DetectionTag{box("dot", 500, 500)}

	rects, err := Normalize(tags, 1000, 1000)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	if rects[0].X0 != rects[0].X1 || rects[0].Y0 != rects[0].Y1 {
		t.Errorf("expected zero-area rectangle, got %+v", rects[0])
	}
}

func TestNormalizeUnorderedPoints(t *testing.T) {
	// Points given bottom-right first must still yield min <= max.
	tags := []types.DetectionTag{box("flip", 800, 900, 100, 200)}

	rects, err := Normalize(tags, 1000, 1000)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	r := rects[0]
	if r.X0 > r.X1 || r.Y0 > r.Y1 {
		t.Errorf("corners not ordered: %+v", r)
	}
	if r.X0 != 100 || r.Y1 != 901 {
		t.Errorf("unexpected bounds: %+v", r)
	}
}

func TestNormalizeScaleLinear(t *testing.T) {
	tags := []types.DetectionTag{box("cat", 123, 234, 345, 456)}

	small, err := Normalize(tags, 640, 480)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	large, err := Normalize(tags, 1280, 960)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	pairs := [][2]int{
		{small[0].X0, large[0].X0},
		{small[0].Y0, large[0].Y0},
		{small[0].X1, large[0].X1},
		{small[0].Y1, large[0].Y1},
	}
	for i, p := range pairs {
		diff := p[1] - 2*p[0]
		if diff < -1 || diff > 1 {
			t.Errorf("coordinate %d not scale-linear: %d vs %d", i, p[0], p[1])
		}
	}
}

func TestNormalizeMultiplePolygonsStableOrder(t *testing.T) {
	tags := []types.DetectionTag{
		{
			Label: "word",
			Polygons: []types.Polygon{
				{{X: 10, Y: 10}, {X: 20, Y: 20}},
				{{X: 30, Y: 30}, {X: 40, Y: 40}},
			},
		},
		box("cat", 50, 50, 60, 60),
	}

	rects, err := Normalize(tags, 999, 999)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	if len(rects) != 3 {
		t.Fatalf("expected 3 rectangles, got %d", len(rects))
	}
	if rects[0].X0 != 10 || rects[1].X0 != 30 || rects[2].Label != "cat" {
		t.Errorf("order not preserved: %+v", rects)
	}
}

func TestNormalizeInvalidDimensions(t *testing.T) {
	tags := []types.DetectionTag{box("cat", 1, 2, 3, 4)}

	for _, dims := range [][2]int{{0, 100}, {100, 0}, {-1, 100}, {100, -1}} {
		if _, err := Normalize(tags, dims[0], dims[1]); err == nil {
			t.Errorf("expected error for dimensions %dx%d", dims[0], dims[1])
		}
	}
}

func TestNormalizeEmptyInput(t *testing.T) {
	rects, err := Normalize(nil, 100, 100)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if len(rects) != 0 {
		t.Errorf("expected no rectangles, got %d", len(rects))
	}
}
