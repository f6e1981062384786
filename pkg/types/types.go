package types

// Point is a single coordinate on the DeepSeek-OCR grounding grid.
// Both components live in the normalized [0, 999] space, independent
// of the source image resolution.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Polygon is an ordered list of grid points describing one detected
// instance. The common case is two points forming opposite corners of
// an axis-aligned box; a single point is a degenerate box.
type Polygon []Point

// DetectionTag is one parsed grounding tag: a class label plus one
// polygon per detected instance of that class.
type DetectionTag struct {
	Label    string    `json:"label"`
	Polygons []Polygon `json:"polygons"`
}

// Rectangle is an axis-aligned bounding box resolved into pixel space,
// with X0 <= X1 and Y0 <= Y1, both corners inside the target image.
type Rectangle struct {
	Label string `json:"label"`
	X0    int    `json:"x0"`
	Y0    int    `json:"y0"`
	X1    int    `json:"x1"`
	Y1    int    `json:"y1"`
}

// Width returns the pixel width of the rectangle.
func (r Rectangle) Width() int {
	return r.X1 - r.X0
}

// Height returns the pixel height of the rectangle.
func (r Rectangle) Height() int {
	return r.Y1 - r.Y0
}

// OCRResult is what a caller gets back from one OCR pass: the model
// transcript verbatim, the grounding tags extracted from it, and the
// annotated image when any boxes were drawn (nil otherwise).
type OCRResult struct {
	Text       string         `json:"text"`
	Detections []DetectionTag `json:"detections"`
	Annotated  []byte         `json:"annotated_image,omitempty"`
}
