package render

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"
)

// lineSpacing is the line height as a multiple of the font size.
const lineSpacing = 1.15

// PDFSurface draws onto an fpdf document measured in points.
//
// Families registered through RegisterFont are drawn as UTF-8 TrueType
// fonts. Any other family falls back to the Helvetica core font, with
// text translated to cp1252 so accented Latin text still renders.
type PDFSurface struct {
	pdf       *fpdf.Fpdf
	width     float64
	height    float64
	utf8      map[string]bool
	images    map[string]bool
	translate func(string) string
	current   Font
	usingUTF8 bool
}

// NewPDFSurface creates an empty document with the given page size.
func NewPDFSurface(width, height float64) *PDFSurface {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: width, Ht: height},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetCellMargin(0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCompression(true)

	return &PDFSurface{
		pdf:       pdf,
		width:     width,
		height:    height,
		utf8:      make(map[string]bool),
		images:    make(map[string]bool),
		translate: pdf.UnicodeTranslatorFromDescriptor(""),
	}
}

func (s *PDFSurface) AddPage() {
	s.pdf.AddPage()
	if s.current.Family != "" {
		s.SetFont(s.current)
	}
}

func (s *PDFSurface) PageSize() (float64, float64) {
	return s.width, s.height
}

// RegisterFont loads a TrueType file under family.
func (s *PDFSurface) RegisterFont(family, path string) error {
	s.pdf.AddUTF8Font(family, "", path)
	if err := s.pdf.Error(); err != nil {
		s.pdf.ClearError()
		return fmt.Errorf("font %s: %w", family, err)
	}
	s.utf8[family] = true
	return nil
}

func (s *PDFSurface) SetFont(f Font) {
	s.current = f
	if s.utf8[f.Family] {
		s.usingUTF8 = true
		s.pdf.SetFont(f.Family, "", f.Size)
	} else {
		s.usingUTF8 = false
		s.pdf.SetFont("Helvetica", fallbackStyle(f.Family), f.Size)
	}
	s.pdf.SetTextColor(int(f.Color.R), int(f.Color.G), int(f.Color.B))
}

// fallbackStyle guesses the core font style from a family name such as
// "Raleway-Bold" or "OpenSans-BoldItalic".
func fallbackStyle(family string) string {
	lower := strings.ToLower(family)
	style := ""
	if strings.Contains(lower, "bold") {
		style += "B"
	}
	if strings.Contains(lower, "italic") || strings.Contains(lower, "oblique") {
		style += "I"
	}
	return style
}

func (s *PDFSurface) encode(text string) string {
	if s.usingUTF8 {
		return text
	}
	return s.translate(text)
}

func (s *PDFSurface) textWidth(text string) float64 {
	return s.pdf.GetStringWidth(s.encode(text))
}

// lines wraps text to width. The result is still UTF-8; callers encode
// each line when drawing.
func (s *PDFSurface) lines(text string, width float64) []string {
	if s.usingUTF8 && text != "" {
		return s.pdf.SplitText(text, width)
	}
	return wrapWords(text, width, s.textWidth)
}

// wrapWords breaks text at spaces so every line measures at most width.
// A single word wider than width gets a line of its own.
func wrapWords(text string, width float64, measure func(string) float64) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if measure(line+" "+w) <= width {
			line += " " + w
			continue
		}
		lines = append(lines, line)
		line = w
	}
	return append(lines, line)
}

func (s *PDFSurface) lineHeight() float64 {
	return s.current.Size * lineSpacing
}

func (s *PDFSurface) MeasureText(text string, width float64) (float64, float64) {
	lines := s.lines(text, width)
	var w float64
	for _, l := range lines {
		w = max(w, s.textWidth(l))
	}
	return min(w, width), float64(len(lines)) * s.lineHeight()
}

func (s *PDFSurface) Text(text string, x, y, width float64, align Align) {
	alignStr := "L"
	switch align {
	case AlignCenter:
		alignStr = "C"
	case AlignRight:
		alignStr = "R"
	}

	lh := s.lineHeight()
	for i, l := range s.lines(text, width) {
		s.pdf.SetXY(x, y+float64(i)*lh)
		s.pdf.CellFormat(width, lh, s.encode(l), "", 0, alignStr, false, 0, "")
	}
}

func (s *PDFSurface) FillRect(x, y, w, h float64, c Color, alpha float64) {
	if alpha < 1 {
		s.pdf.SetAlpha(alpha, "Normal")
		defer s.pdf.SetAlpha(1, "Normal")
	}
	s.pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
	s.pdf.Rect(x, y, w, h, "F")
}

func (s *PDFSurface) StrokeRect(x, y, w, h, radius, lineWidth float64, c Color) {
	s.pdf.SetLineWidth(lineWidth)
	s.pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
	if radius > 0 {
		s.pdf.RoundedRect(x, y, w, h, radius, "1234", "D")
		return
	}
	s.pdf.Rect(x, y, w, h, "D")
}

func (s *PDFSurface) RegisterImage(name string, img image.Image) error {
	if s.images[name] {
		return nil
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("image %s: %w", name, err)
	}
	s.pdf.RegisterImageOptionsReader(name, fpdf.ImageOptions{ImageType: "PNG"}, &buf)
	if err := s.pdf.Error(); err != nil {
		return fmt.Errorf("image %s: %w", name, err)
	}
	s.images[name] = true
	return nil
}

func (s *PDFSurface) DrawImage(name string, x, y, w, h float64) {
	s.pdf.ImageOptions(name, x, y, w, h, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
}

func (s *PDFSurface) Output(w io.Writer) error {
	return s.pdf.Output(w)
}

func (s *PDFSurface) Err() error {
	return s.pdf.Error()
}
