package render

import (
	"fmt"

	"github.com/JonMunkholm/credgrid/internal/core"
	"github.com/JonMunkholm/credgrid/internal/layout"
)

// Palette holds the cell background of each eligibility class. The QR
// quiet zone is painted with the same color as the cell.
type Palette struct {
	Normal      Color `yaml:"normal"`
	Exceptional Color `yaml:"exceptional"`
	NotAllowed  Color `yaml:"notAllowed"`

	// CollapseNotAllowed paints not-allowed members with the exceptional
	// color.
	CollapseNotAllowed bool `yaml:"collapseNotAllowed"`
}

// Background returns the cell color for class.
func (p Palette) Background(class core.Class) Color {
	switch class {
	case core.ClassNotAllowed:
		if p.CollapseNotAllowed {
			return p.Exceptional
		}
		return p.NotAllowed
	case core.ClassExceptional:
		return p.Exceptional
	default:
		return p.Normal
	}
}

// Border is a cell outline.
type Border struct {
	Enabled bool    `yaml:"enabled"`
	Color   Color   `yaml:"color"`
	Width   float64 `yaml:"width"`
	Radius  float64 `yaml:"radius"`
}

// Highlight is the translucent box drawn behind each text line.
// An Alpha of zero disables it.
type Highlight struct {
	Color Color   `yaml:"color"`
	Alpha float64 `yaml:"alpha"`
}

// Footer places the "Página X de N" counter.
type Footer struct {
	Font   Font    `yaml:"font"`
	Right  float64 `yaml:"right"`  // horizontal inset from both page edges
	Bottom float64 `yaml:"bottom"` // distance of the text top from the page bottom
}

// Art is a decorative image drawn on every cell, right of the QR code.
type Art struct {
	Image  string  `yaml:"image"` // file name under the images directory
	Width  float64 `yaml:"width"` // source size, used for the aspect ratio
	Height float64 `yaml:"height"`
}

// QRStyle configures the QR code.
type QRStyle struct {
	ErrorCorrection ECLevel `yaml:"errorCorrection"`
	Foreground      Color   `yaml:"foreground"`
	// Scale is the raster resolution in pixels per point.
	Scale int `yaml:"scale"`
}

// Theme is every constant a tag variant needs. Variants differ only here.
type Theme struct {
	PageWidth  float64      `yaml:"pageWidth"`
	PageHeight float64      `yaml:"pageHeight"`
	Grid       layout.Shape `yaml:"grid"`

	// FirstPageTop moves the grid on the first page only. Zero keeps the
	// grid margin.
	FirstPageTop float64 `yaml:"firstPageTop"`

	Header Font   `yaml:"header"`
	Footer Footer `yaml:"footer"`

	Padding  float64 `yaml:"padding"`
	Font     Font    `yaml:"font"`
	NameFont Font    `yaml:"nameFont"`

	Palette           Palette   `yaml:"palette"`
	Highlight         Highlight `yaml:"highlight"`
	Border            Border    `yaml:"border"`
	ExceptionalBorder *Border   `yaml:"exceptionalBorder"`

	QR   QRStyle `yaml:"qr"`
	Logo string  `yaml:"logo"` // file name under the images directory, "" for none
	Art  Art     `yaml:"art"`
}

// QRSize is the side of the QR code in points.
func (t Theme) QRSize() float64 {
	return t.Grid.CellHeight - 2*t.Padding
}

// TopOffset returns the per-page grid origin, or nil when every page
// uses the grid margin.
func (t Theme) TopOffset() layout.TopOffset {
	if t.FirstPageTop <= 0 {
		return nil
	}
	first, rest := t.FirstPageTop, t.Grid.MarginV
	return func(page int) float64 {
		if page == 0 {
			return first
		}
		return rest
	}
}

// BorderFor returns the border of a cell, or nil when none is drawn.
func (t Theme) BorderFor(flags core.Flags) *Border {
	if flags.Exceptional() && t.ExceptionalBorder != nil && t.ExceptionalBorder.Enabled {
		b := *t.ExceptionalBorder
		return &b
	}
	if t.Border.Enabled {
		b := t.Border
		return &b
	}
	return nil
}

// Validate checks the theme and reports every problem as one
// *layout.LayoutConfigError.
func (t Theme) Validate() error {
	var problems []string

	var gridErr *layout.LayoutConfigError
	if err := t.Grid.Validate(); err != nil {
		gridErr = err.(*layout.LayoutConfigError)
		problems = append(problems, gridErr.Problems...)
	}

	if t.PageWidth <= 0 || t.PageHeight <= 0 {
		problems = append(problems, fmt.Sprintf("page size must be positive, got %gx%g", t.PageWidth, t.PageHeight))
	} else if gridErr == nil && !t.Grid.Fits(t.PageWidth, t.PageHeight) {
		problems = append(problems, fmt.Sprintf("grid does not fit a %gx%g page", t.PageWidth, t.PageHeight))
	}
	if t.Padding < 0 {
		problems = append(problems, fmt.Sprintf("padding must not be negative, got %g", t.Padding))
	}
	if gridErr == nil && t.QRSize() <= 0 {
		problems = append(problems, "padding leaves no room for the qr code")
	}
	if gridErr == nil && t.Grid.CellWidth-t.QRSize()-3*t.Padding <= 0 {
		problems = append(problems, "cell leaves no room for text")
	}
	if t.Font.Size <= 0 || t.NameFont.Size <= 0 || t.Header.Size <= 0 || t.Footer.Font.Size <= 0 {
		problems = append(problems, "font sizes must be positive")
	}
	if t.Highlight.Alpha < 0 || t.Highlight.Alpha > 1 {
		problems = append(problems, fmt.Sprintf("highlight alpha must be within [0,1], got %g", t.Highlight.Alpha))
	}
	if _, err := t.QR.ErrorCorrection.recovery(); err != nil {
		problems = append(problems, err.Error())
	}
	if t.QR.Scale < 1 {
		problems = append(problems, fmt.Sprintf("qr scale must be at least 1, got %d", t.QR.Scale))
	}
	if t.Art.Image != "" && (t.Art.Width <= 0 || t.Art.Height <= 0) {
		problems = append(problems, "art needs a positive width and height")
	}

	if len(problems) > 0 {
		return &layout.LayoutConfigError{Problems: problems}
	}
	return nil
}
