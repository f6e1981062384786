// Package tagparse extracts DeepSeek-OCR grounding tags from model
// transcripts.
//
// A grounded transcript embeds detections in a small marker language:
//
//	<|ref|>cat<|/ref|><|det|>[[100, 100, 200, 200]]<|/det|>
//
// The reference span carries the class label, the detection span a
// bracketed list of coordinate groups on the [0, 999] grid. One tag
// may carry several groups when the model found several instances of
// the same class. Everything outside the markers is ordinary OCR text
// and passes through untouched.
package tagparse

import (
	"strconv"
	"strings"

	"github.com/lalanikarim/deepseek-ocr/pkg/types"
)

// Grounding tag markers as emitted by DeepSeek-OCR.
const (
	RefOpen  = "<|ref|>"
	RefClose = "<|/ref|>"
	DetOpen  = "<|det|>"
	DetClose = "<|/det|>"
)

// Parse scans raw for grounding tags and returns the text together
// with every well-formed tag in first-occurrence order.
//
// Parsing is observational: the returned text is always the input
// unchanged, markers included. A malformed occurrence (ref without
// det, unbalanced brackets, non-integer coordinates) is skipped and
// scanning resumes, so one bad tag never poisons the rest of the
// transcript. Parse does no I/O and keeps no state; it is safe to
// call from concurrent requests.
func Parse(raw string) (string, []types.DetectionTag) {
	var tags []types.DetectionTag
	pos := 0
	for {
		i := strings.Index(raw[pos:], RefOpen)
		if i < 0 {
			break
		}
		start := pos + i
		tag, consumed, ok := scanTag(raw[start:])
		if !ok {
			// Resume just past the failed marker so a later tag in the
			// same stretch of text still parses.
			pos = start + len(RefOpen)
			continue
		}
		tags = append(tags, tag)
		pos = start + consumed
	}
	return raw, tags
}

// scanTag reads one complete ref+det pair from s, which must begin
// with RefOpen. It returns the parsed tag and the number of bytes
// consumed, or ok=false when the occurrence is malformed.
func scanTag(s string) (types.DetectionTag, int, bool) {
	cur := len(RefOpen)

	end := strings.Index(s[cur:], RefClose)
	if end < 0 {
		return types.DetectionTag{}, 0, false
	}
	label := s[cur : cur+end]
	// A marker inside the label means the spans are interleaved or
	// nested; treat the whole occurrence as malformed.
	if strings.TrimSpace(label) == "" || strings.Contains(label, RefOpen) || strings.Contains(label, DetOpen) {
		return types.DetectionTag{}, 0, false
	}
	cur += end + len(RefClose)

	cur += countLeadingSpace(s[cur:])
	if !strings.HasPrefix(s[cur:], DetOpen) {
		return types.DetectionTag{}, 0, false
	}
	cur += len(DetOpen)

	detEnd := strings.Index(s[cur:], DetClose)
	if detEnd < 0 {
		return types.DetectionTag{}, 0, false
	}
	polygons, ok := parsePolygons(s[cur : cur+detEnd])
	if !ok {
		return types.DetectionTag{}, 0, false
	}
	cur += detEnd + len(DetClose)

	tag := types.DetectionTag{
		Label:    strings.TrimSpace(label),
		Polygons: polygons,
	}
	return tag, cur, true
}

// parsePolygons parses the detection span body: an outer bracket pair
// holding one or more comma-separated coordinate groups, each group a
// flat bracketed list of integers read as (x, y) pairs.
func parsePolygons(body string) ([]types.Polygon, bool) {
	s := strings.TrimSpace(body)
	if len(s) < 2 || s[0] != '[' || s[len(s)-1] != ']' {
		return nil, false
	}
	inner := s[1 : len(s)-1]

	var polygons []types.Polygon
	i := 0
	for i < len(inner) {
		if isSeparator(inner[i]) {
			i++
			continue
		}
		if inner[i] != '[' {
			return nil, false
		}
		end := strings.IndexByte(inner[i:], ']')
		if end < 0 {
			return nil, false
		}
		group := inner[i+1 : i+end]
		if strings.ContainsRune(group, '[') {
			return nil, false
		}
		poly, ok := parseGroup(group)
		if !ok {
			return nil, false
		}
		polygons = append(polygons, poly)
		i += end + 1
	}
	if len(polygons) == 0 {
		return nil, false
	}
	return polygons, true
}

// parseGroup splits a flat integer list into points. An odd count
// leaves an unpaired coordinate, which makes the group malformed.
func parseGroup(group string) (types.Polygon, bool) {
	fields := strings.Split(group, ",")
	values := make([]int, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			return nil, false
		}
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, false
		}
		values = append(values, v)
	}
	if len(values) == 0 || len(values)%2 != 0 {
		return nil, false
	}
	poly := make(types.Polygon, 0, len(values)/2)
	for j := 0; j < len(values); j += 2 {
		poly = append(poly, types.Point{X: values[j], Y: values[j+1]})
	}
	return poly, true
}

func countLeadingSpace(s string) int {
	n := 0
	for n < len(s) && (s[n] == ' ' || s[n] == '\t' || s[n] == '\n' || s[n] == '\r') {
		n++
	}
	return n
}

func isSeparator(c byte) bool {
	return c == ',' || c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
