package tagparse

import (
	"strings"
	"testing"

	"github.com/lalanikarim/deepseek-ocr/pkg/types"
)

func TestParsePlainText(t *testing.T) {
	input := "Invoice #42\nTotal: 17.50 EUR\n"

	clean, tags := Parse(input)

	if clean != input {
		t.Errorf("clean text changed: %q", clean)
	}
	if len(tags) != 0 {
		t.Errorf("expected no tags, got %d", len(tags))
	}
}

func TestParseSingleTag(t *testing.T) {
	input := "<|ref|>cat<|/ref|><|det|>[[100, 100, 200, 200]]<|/det|>"

	clean, tags := Parse(input)

	if clean != input {
		t.Errorf("clean text changed: %q", clean)
	}
	if len(tags) != 1 {
		t.Fatalf("expected 1 tag, got %d", len(tags))
	}
	if tags[0].Label != "cat" {
		t.Errorf("expected label \"cat\", got %q", tags[0].Label)
	}
	want := types.Polygon{{X: 100, Y: 100}, {X: 200, Y: 200}}
	if len(tags[0].Polygons) != 1 {
		t.Fatalf("expected 1 polygon, got %d", len(tags[0].Polygons))
	}
	if !polygonsEqual(tags[0].Polygons[0], want) {
		t.Errorf("polygon mismatch: got %v, want %v", tags[0].Polygons[0], want)
	}
}

func TestParseMultipleTagsInOrder(t *testing.T) {
	input := "a <|ref|>cat<|/ref|><|det|>[[1, 2, 3, 4]]<|/det|> b " +
		"<|ref|>dog<|/ref|><|det|>[[5, 6, 7, 8]]<|/det|> c " +
		"<|ref|>cat<|/ref|><|det|>[[9, 10, 11, 12]]<|/det|>"

	_, tags := Parse(input)

	labels := make([]string, len(tags))
	for i, tag := range tags {
		labels[i] = tag.Label
	}
	if strings.Join(labels, ",") != "cat,dog,cat" {
		t.Errorf("wrong tag order: %v", labels)
	}
}

func TestParseMultiplePolygons(t *testing.T) {
	input := "<|ref|>word<|/ref|><|det|>[[10, 20, 30, 40], [50, 60, 70, 80]]<|/det|>"

	_, tags := Parse(input)

	if len(tags) != 1 {
		t.Fatalf("expected 1 tag, got %d", len(tags))
	}
	if len(tags[0].Polygons) != 2 {
		t.Fatalf("expected 2 polygons, got %d", len(tags[0].Polygons))
	}
	if tags[0].Polygons[1][0].X != 50 {
		t.Errorf("second polygon starts at %d, want 50", tags[0].Polygons[1][0].X)
	}
}

func TestParseSinglePointPolygon(t *testing.T) {
	input := "<|ref|>dot<|/ref|><|det|>[[500, 500]]<|/det|>"

	_, tags := Parse(input)

	if len(tags) != 1 {
		t.Fatalf("expected 1 tag, got %d", len(tags))
	}
	if len(tags[0].Polygons[0]) != 1 {
		t.Errorf("expected 1 point, got %d", len(tags[0].Polygons[0]))
	}
}

func TestParseWhitespaceBetweenSpans(t *testing.T) {
	input := "<|ref|>title<|/ref|>\n  <|det|>[[0, 0, 999, 120]]<|/det|>"

	_, tags := Parse(input)

	if len(tags) != 1 {
		t.Fatalf("expected 1 tag, got %d", len(tags))
	}
}

// A malformed occurrence must not stop later valid tags from parsing.
func TestParseMalformedDoesNotContaminate(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"unbalanced brackets", "<|ref|>bad<|/ref|><|det|>[[1, 2, 3<|/det|> <|ref|>ok<|/ref|><|det|>[[1, 2, 3, 4]]<|/det|>"},
		{"non-integer coords", "<|ref|>bad<|/ref|><|det|>[[1, x, 3, 4]]<|/det|> <|ref|>ok<|/ref|><|det|>[[1, 2, 3, 4]]<|/det|>"},
		{"ref without det", "<|ref|>bad<|/ref|> no detection here <|ref|>ok<|/ref|><|det|>[[1, 2, 3, 4]]<|/det|>"},
		{"missing ref close", "<|ref|>bad <|ref|>ok<|/ref|><|det|>[[1, 2, 3, 4]]<|/det|>"},
		{"empty label", "<|ref|> <|/ref|><|det|>[[1, 2, 3, 4]]<|/det|> <|ref|>ok<|/ref|><|det|>[[1, 2, 3, 4]]<|/det|>"},
		{"odd coordinate count", "<|ref|>bad<|/ref|><|det|>[[1, 2, 3]]<|/det|> <|ref|>ok<|/ref|><|det|>[[1, 2, 3, 4]]<|/det|>"},
		{"empty group list", "<|ref|>bad<|/ref|><|det|>[]<|/det|> <|ref|>ok<|/ref|><|det|>[[1, 2, 3, 4]]<|/det|>"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clean, tags := Parse(tc.input)
			if clean != tc.input {
				t.Errorf("clean text changed: %q", clean)
			}
			if len(tags) != 1 {
				t.Fatalf("expected 1 surviving tag, got %d", len(tags))
			}
			if tags[0].Label != "ok" {
				t.Errorf("surviving tag is %q, want \"ok\"", tags[0].Label)
			}
		})
	}
}

func TestParseLabelTrimmedButTextPreserved(t *testing.T) {
	input := "before <|ref|> fire extinguisher <|/ref|><|det|>[[1, 2, 3, 4]]<|/det|> after"

	clean, tags := Parse(input)

	if clean != input {
		t.Errorf("clean text changed: %q", clean)
	}
	if len(tags) != 1 {
		t.Fatalf("expected 1 tag, got %d", len(tags))
	}
	if tags[0].Label != "fire extinguisher" {
		t.Errorf("label not trimmed: %q", tags[0].Label)
	}
}

func TestParseNegativeCoordinatesAccepted(t *testing.T) {
	// Range enforcement happens in the normalizer, not the parser.
	input := "<|ref|>edge<|/ref|><|det|>[[-5, 0, 1200, 999]]<|/det|>"

	_, tags := Parse(input)

	if len(tags) != 1 {
		t.Fatalf("expected 1 tag, got %d", len(tags))
	}
	if tags[0].Polygons[0][0].X != -5 {
		t.Errorf("expected raw -5, got %d", tags[0].Polygons[0][0].X)
	}
}

func polygonsEqual(a, b types.Polygon) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func BenchmarkParse(b *testing.B) {
	input := strings.Repeat("some recognized text <|ref|>cat<|/ref|><|det|>[[100, 100, 200, 200]]<|/det|> more text ", 50)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Parse(input)
	}
}
