package render

import (
	"fmt"
	"image"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Color is an opaque RGB color.
type Color struct {
	R, G, B uint8
}

// ParseColor parses "#rrggbb" or "#rgb".
func ParseColor(s string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return Color{}, fmt.Errorf("color %q: want #rrggbb", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("color %q: %w", s, err)
	}
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// MustColor is ParseColor for built-in theme constants.
func MustColor(s string) Color {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R) * 0x101
	g = uint32(c.G) * 0x101
	b = uint32(c.B) * 0x101
	return r, g, b, 0xffff
}

// UnmarshalYAML reads a color written as a hex string.
func (c *Color) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseColor(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// MarshalYAML writes a color as a hex string.
func (c Color) MarshalYAML() (any, error) {
	return c.String(), nil
}

// Align is horizontal text alignment inside a box.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Font selects a registered family, a size in points and a color.
type Font struct {
	Family string  `yaml:"family"`
	Size   float64 `yaml:"size"`
	Color  Color   `yaml:"color"`
}

// Surface is the drawing capability a document is rendered onto.
// Coordinates are points from the top-left corner of the page.
//
// Drawing calls do not return errors; a Surface keeps the first failure
// and reports it from Err.
type Surface interface {
	AddPage()
	PageSize() (width, height float64)

	RegisterFont(family, path string) error
	SetFont(f Font)

	// MeasureText returns the box text occupies when wrapped to width.
	MeasureText(text string, width float64) (w, h float64)
	// Text draws text wrapped to width with its top-left corner at x, y.
	Text(text string, x, y, width float64, align Align)

	FillRect(x, y, w, h float64, c Color, alpha float64)
	StrokeRect(x, y, w, h, radius, lineWidth float64, c Color)

	// RegisterImage makes img drawable under name. Registering a name
	// twice keeps the first image.
	RegisterImage(name string, img image.Image) error
	DrawImage(name string, x, y, w, h float64)

	Output(w io.Writer) error
	Err() error
}
