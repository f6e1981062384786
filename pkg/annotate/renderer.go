// Package annotate draws labeled bounding boxes onto images.
//
// Boxes are stroked directly into the NRGBA pixel buffer; labels use
// the fixed-size basicfont face over a filled background in the box
// color, so they stay legible against arbitrary image content.
package annotate

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/lalanikarim/deepseek-ocr/pkg/types"
)

// DefaultStrokeWidth is the box outline width in pixels. Wide enough
// that a zero-area rectangle still shows up.
const DefaultStrokeWidth = 3

// Label background padding around the text, in pixels.
const (
	labelPadX = 3
	labelPadY = 2
)

// Renderer draws rectangles and labels onto copies of base images.
// It holds no per-request state and is safe for concurrent use.
type Renderer struct {
	stroke int
}

// NewRenderer returns a renderer with the default stroke width.
func NewRenderer() *Renderer {
	return &Renderer{stroke: DefaultStrokeWidth}
}

// NewRendererWithStroke returns a renderer with a custom stroke
// width. Values below 1 are raised to 1.
func NewRendererWithStroke(stroke int) *Renderer {
	if stroke < 1 {
		stroke = 1
	}
	return &Renderer{stroke: stroke}
}

// Render draws every rectangle and its class label onto a copy of img
// and returns the result encoded as PNG. The base image is never
// modified. An empty rectangle list means there is nothing to
// annotate and yields (nil, nil) rather than a re-encoded copy.
func (r *Renderer) Render(img image.Image, rects []types.Rectangle) ([]byte, error) {
	canvas, err := r.RenderImage(img, rects)
	if err != nil || canvas == nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("encode annotated image: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderImage is Render without the final encoding step, for callers
// that want to choose their own output format. It returns nil when
// rects is empty.
func (r *Renderer) RenderImage(img image.Image, rects []types.Rectangle) (*image.NRGBA, error) {
	if len(rects) == 0 {
		return nil, nil
	}
	if img == nil {
		return nil, fmt.Errorf("nil base image")
	}

	canvas := imaging.Clone(img)
	palette := NewPalette()
	for _, rect := range rects {
		col := palette.Color(rect.Label)
		drawRect(canvas, rect, col, r.stroke)
		drawLabel(canvas, rect, col, palette.TextColor(rect.Label))
	}
	return canvas, nil
}

// drawRect strokes the rectangle boundary. Degenerate rectangles are
// widened to one pixel so they remain visible.
func drawRect(img *image.NRGBA, rect types.Rectangle, c color.NRGBA, stroke int) {
	x0, y0, x1, y1 := rect.X0, rect.Y0, rect.X1, rect.Y1
	if x1 <= x0 {
		x1 = x0 + 1
	}
	if y1 <= y0 {
		y1 = y0 + 1
	}
	for s := 0; s < stroke; s++ {
		drawHLine(img, y0+s, x0, x1, c)
		drawHLine(img, y1-1-s, x0, x1, c)
		drawVLine(img, x0+s, y0, y1, c)
		drawVLine(img, x1-1-s, y0, y1, c)
	}
}

// drawLabel paints the class label near the rectangle's top-left
// corner on a filled background. The label sits above the box and
// drops inside it when that would clip the top edge.
func drawLabel(img *image.NRGBA, rect types.Rectangle, bg, fg color.NRGBA) {
	face := basicfont.Face7x13
	w := font.MeasureString(face, rect.Label).Ceil() + 2*labelPadX
	h := face.Height + 2*labelPadY

	x0 := rect.X0
	y0 := rect.Y0 - h
	if y0 < 0 {
		y0 = rect.Y0
	}
	if over := x0 + w - img.Bounds().Dx(); over > 0 {
		x0 -= over
	}
	if x0 < 0 {
		x0 = 0
	}

	fillRect(img, x0, y0, x0+w, y0+h, bg)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(fg),
		Face: face,
		Dot:  fixed.P(x0+labelPadX, y0+labelPadY+face.Ascent),
	}
	d.DrawString(rect.Label)
}

func fillRect(img *image.NRGBA, x0, y0, x1, y1 int, c color.NRGBA) {
	for y := y0; y < y1; y++ {
		drawHLine(img, y, x0, x1, c)
	}
}

func drawHLine(img *image.NRGBA, y, x0, x1 int, c color.NRGBA) {
	if y < 0 || y >= img.Bounds().Dy() {
		return
	}
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if x1 <= 0 || x0 >= img.Bounds().Dx() {
		return
	}
	if x0 < 0 {
		x0 = 0
	}
	if x1 > img.Bounds().Dx() {
		x1 = img.Bounds().Dx()
	}
	i := y*img.Stride + x0*4
	for x := x0; x < x1; x++ {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
		i += 4
	}
}

func drawVLine(img *image.NRGBA, x, y0, y1 int, c color.NRGBA) {
	if x < 0 || x >= img.Bounds().Dx() {
		return
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	if y1 <= 0 || y0 >= img.Bounds().Dy() {
		return
	}
	if y0 < 0 {
		y0 = 0
	}
	if y1 > img.Bounds().Dy() {
		y1 = img.Bounds().Dy()
	}
	i := y0*img.Stride + x*4
	for y := y0; y < y1; y++ {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
		i += img.Stride
	}
}
