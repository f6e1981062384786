package annotate

import (
	"image/color"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// paletteHex is the fixed box palette, ordered so neighboring entries
// stay visually distinct. Assignment cycles when a transcript carries
// more distinct labels than entries.
var paletteHex = []string{
	"#00cc3d", // green
	"#ffcc00", // gold
	"#ff3333", // red
	"#00aaff", // blue
	"#cc44ff", // purple
	"#ff8800", // orange
	"#00e5cc", // teal
	"#ff4fa3", // pink
	"#99dd00", // lime
	"#4455ff", // indigo
	"#aa6633", // brown
	"#8899aa", // slate
}

// Palette assigns one color per class label in first-seen order. It
// is request-scoped: build a fresh one per render pass so concurrent
// requests never share assignment state.
type Palette struct {
	colors  []colorful.Color
	byLabel map[string]int
}

// NewPalette returns a palette over the fixed color set.
func NewPalette() *Palette {
	colors := make([]colorful.Color, len(paletteHex))
	for i, h := range paletteHex {
		c, err := colorful.Hex(h)
		if err != nil {
			// The palette is a compile-time constant; a bad entry is a
			// programming error.
			panic(err)
		}
		colors[i] = c
	}
	return &Palette{colors: colors, byLabel: make(map[string]int)}
}

// Size returns the number of distinct colors before assignment wraps.
func (p *Palette) Size() int {
	return len(p.colors)
}

// Color returns the label's box color, assigning the next palette
// entry on first sight. Indices wrap, so palette exhaustion repeats
// colors rather than failing.
func (p *Palette) Color(label string) color.NRGBA {
	c := p.assign(label)
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

// TextColor returns black or white, whichever reads better on top of
// the label's box color.
func (p *Palette) TextColor(label string) color.NRGBA {
	l, _, _ := p.assign(label).Luv()
	if l > 0.55 {
		return color.NRGBA{A: 255}
	}
	return color.NRGBA{R: 255, G: 255, B: 255, A: 255}
}

func (p *Palette) assign(label string) colorful.Color {
	idx, ok := p.byLabel[label]
	if !ok {
		idx = len(p.byLabel) % len(p.colors)
		p.byLabel[label] = idx
	}
	return p.colors[idx]
}
