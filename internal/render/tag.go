package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/credgrid/internal/core"
	"github.com/JonMunkholm/credgrid/internal/layout"
	"github.com/JonMunkholm/credgrid/internal/logging"
)

// artImageName is the surface name of the per-document background art.
const artImageName = "art"

// AssetLoadError reports theme artwork or a font that could not be loaded.
type AssetLoadError struct {
	Asset string // "font", "logo", "art"
	Path  string
	Err   error
}

func (e *AssetLoadError) Error() string {
	return fmt.Sprintf("load %s %s: %v", e.Asset, e.Path, e.Err)
}

func (e *AssetLoadError) Unwrap() error {
	return e.Err
}

// Code identifies the error in run summaries.
func (e *AssetLoadError) Code() string { return "ASSET001" }

// Layout is the contract every credential style implements.
type Layout interface {
	ID() string
	ReferenceURL() string
	Theme() Theme

	// Prepare loads fonts and artwork once per document.
	Prepare(ctx context.Context, s Surface, org *core.Organization, roster *core.Roster) error
	// RenderRecord draws one member into cell.
	RenderRecord(ctx context.Context, s Surface, cell layout.Cell, m core.Member) error
}

// Options are the per-run settings a TagRenderer needs.
type Options struct {
	Codec     core.Codec
	Strict    bool // classify unknown courses as not allowed
	FontsDir  string
	ImagesDir string
	QR        QREncoder // defaults to GoQREncoder
	Logger    *slog.Logger
}

// TagRenderer draws the credential tag shared by every variant: a QR code
// on the left and three lines of text on the right, over a background that
// depends on the member's class. One TagRenderer serves one document.
type TagRenderer struct {
	variant Variant
	opts    Options

	hasArt bool
	logo   image.Image // pre-scaled to the overlay size
}

// New creates a renderer for one document.
func (v Variant) New(opts Options) *TagRenderer {
	if opts.QR == nil {
		opts.QR = GoQREncoder{}
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	return &TagRenderer{variant: v, opts: opts}
}

func (r *TagRenderer) ID() string           { return r.variant.ID }
func (r *TagRenderer) ReferenceURL() string { return r.variant.ReferenceURL }
func (r *TagRenderer) Theme() Theme         { return r.variant.Theme }

// qrPixels is the raster size of QR codes.
func (r *TagRenderer) qrPixels() int {
	return int(math.Round(r.variant.Theme.QRSize())) * r.variant.Theme.QR.Scale
}

// Prepare implements Layout.
func (r *TagRenderer) Prepare(ctx context.Context, s Surface, org *core.Organization, roster *core.Roster) error {
	if err := RegisterFonts(s, r.opts.FontsDir, r.opts.Logger); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	t := r.variant.Theme
	if t.Art.Image != "" {
		path := filepath.Join(r.opts.ImagesDir, t.Art.Image)
		img, err := decodeImage(path)
		if err != nil {
			return &AssetLoadError{Asset: "art", Path: path, Err: err}
		}
		if err := s.RegisterImage(artImageName, img); err != nil {
			return &AssetLoadError{Asset: "art", Path: path, Err: err}
		}
		r.hasArt = true
	}

	if t.Logo != "" {
		path := filepath.Join(r.opts.ImagesDir, t.Logo)
		img, err := decodeImage(path)
		if err != nil {
			return &AssetLoadError{Asset: "logo", Path: path, Err: err}
		}
		r.logo = scaleSquare(img, max(1, r.qrPixels()/3))
	}

	r.opts.Logger.Debug("document prepared",
		"layout", r.variant.ID, "org", org.Name, "members", roster.Len(), "art", r.hasArt, "logo", r.logo != nil)
	return nil
}

// RenderRecord implements Layout. Drawing order: background and art,
// QR code with logo, text lines, border.
func (r *TagRenderer) RenderRecord(ctx context.Context, s Surface, cell layout.Cell, m core.Member) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t := r.variant.Theme
	w, h := t.Grid.CellWidth, t.Grid.CellHeight
	p := t.Padding
	qrSize := t.QRSize()
	flags := core.Classify(m, r.opts.Strict)
	bg := t.Palette.Background(flags.Class())

	s.FillRect(cell.X, cell.Y, w, h, bg, 1)
	if r.hasArt {
		artH := h - 2*p
		artW := artH * t.Art.Width / t.Art.Height
		left := cell.X + qrSize + p + (w-qrSize-p-artW)/2
		top := cell.Y + (h-artH)/2
		s.DrawImage(artImageName, left, top, artW, artH)
	}

	qr, err := r.opts.QR.Encode(r.opts.Codec.Payload(m), r.qrPixels(), t.QR.ErrorCorrection, t.QR.Foreground, bg)
	if err != nil {
		return err
	}
	if r.logo != nil {
		qr = overlayLogo(qr, r.logo, bg)
	}
	name := fmt.Sprintf("qr-%d", cell.Index)
	if err := s.RegisterImage(name, qr); err != nil {
		return err
	}
	s.DrawImage(name, cell.X+p, cell.Y+p, qrSize, qrSize)

	left := cell.X + qrSize + 2*p
	top := cell.Y + p
	width := w - qrSize - 3*p
	lines := []struct {
		text string
		font Font
	}{
		{r.opts.Codec.MaskedID(m), t.NameFont},
		{m.Name, t.NameFont},
		{m.Org.Name, t.Font},
	}
	for _, l := range lines {
		s.SetFont(l.font)
		tw, th := s.MeasureText(l.text, width)
		if t.Highlight.Alpha > 0 {
			s.FillRect(left, top, tw, th, t.Highlight.Color, t.Highlight.Alpha)
		}
		s.Text(l.text, left, top, width, AlignLeft)
		top += th
	}

	if b := t.BorderFor(flags); b != nil {
		s.StrokeRect(cell.X, cell.Y, w, h, b.Radius, b.Width, b.Color)
	}
	return s.Err()
}

// RegisterFonts registers every TrueType file in dir under its file name
// stem, so "fonts/Raleway-Bold.ttf" becomes family "Raleway-Bold". A
// missing directory is not an error; text then uses the core fallback font.
func RegisterFonts(s Surface, dir string, logger *slog.Logger) error {
	if dir == "" {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Debug("fonts directory not found, using core fonts", "dir", dir)
		return nil
	}
	if err != nil {
		return &AssetLoadError{Asset: "font", Path: dir, Err: err}
	}

	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".ttf") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		family := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		if err := s.RegisterFont(family, path); err != nil {
			return &AssetLoadError{Asset: "font", Path: path, Err: err}
		}
	}
	return nil
}

func decodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	return img, err
}
