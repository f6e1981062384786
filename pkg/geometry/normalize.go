// Package geometry resolves grounding-grid coordinates into pixel
// space for a concrete image size.
package geometry

import (
	"fmt"
	"math"

	"github.com/lalanikarim/deepseek-ocr/pkg/types"
)

// GridMax is the upper bound of the DeepSeek-OCR coordinate grid.
// All tag coordinates are expressed on [0, GridMax] regardless of the
// source image resolution.
const GridMax = 999

// Normalize collapses every polygon of every tag to an axis-aligned
// bounding rectangle and rescales it from the grounding grid into the
// pixel space of a width x height image.
//
// Scaling is pixel = round(v * dim / GridMax) with ties rounded away
// from zero, then clamped into [0, dim-1] so grid value 999 lands on
// the last pixel row/column rather than one past it. Out-of-range
// grid coordinates are clamped to the grid first instead of being
// rejected. Output order matches input order; duplicates are kept.
func Normalize(tags []types.DetectionTag, width, height int) ([]types.Rectangle, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid image dimensions %dx%d", width, height)
	}

	var rects []types.Rectangle
	for _, tag := range tags {
		for _, poly := range tag.Polygons {
			if len(poly) == 0 {
				continue
			}
			minX, minY := poly[0].X, poly[0].Y
			maxX, maxY := poly[0].X, poly[0].Y
			for _, pt := range poly[1:] {
				minX = min(minX, pt.X)
				maxX = max(maxX, pt.X)
				minY = min(minY, pt.Y)
				maxY = max(maxY, pt.Y)
			}
			rects = append(rects, types.Rectangle{
				Label: tag.Label,
				X0:    scale(minX, width),
				Y0:    scale(minY, height),
				X1:    scale(maxX, width),
				Y1:    scale(maxY, height),
			})
		}
	}
	return rects, nil
}

// scale maps one grid coordinate to a pixel offset in [0, dim-1].
func scale(v, dim int) int {
	if v < 0 {
		v = 0
	}
	if v > GridMax {
		v = GridMax
	}
	px := int(math.Round(float64(v) * float64(dim) / GridMax))
	if px > dim-1 {
		px = dim - 1
	}
	return px
}
