package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
	xdraw "golang.org/x/image/draw"
)

// ECLevel is a QR error-correction level: L, M, Q or H.
type ECLevel string

const (
	ECLow      ECLevel = "L"
	ECMedium   ECLevel = "M"
	ECQuartile ECLevel = "Q"
	ECHigh     ECLevel = "H"
)

func (l ECLevel) recovery() (qrcode.RecoveryLevel, error) {
	switch ECLevel(strings.ToUpper(string(l))) {
	case ECLow:
		return qrcode.Low, nil
	case ECMedium:
		return qrcode.Medium, nil
	case ECQuartile:
		return qrcode.High, nil
	case ECHigh:
		return qrcode.Highest, nil
	default:
		return 0, fmt.Errorf("unknown error correction level %q", string(l))
	}
}

// QREncoder renders text as a square QR raster with no quiet zone.
type QREncoder interface {
	Encode(text string, size int, level ECLevel, fg, bg color.Color) (image.Image, error)
}

// GoQREncoder encodes with github.com/skip2/go-qrcode.
type GoQREncoder struct{}

// Encode implements QREncoder.
func (GoQREncoder) Encode(text string, size int, level ECLevel, fg, bg color.Color) (image.Image, error) {
	rl, err := level.recovery()
	if err != nil {
		return nil, err
	}
	q, err := qrcode.New(text, rl)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	q.DisableBorder = true
	q.ForegroundColor = fg
	q.BackgroundColor = bg
	return q.Image(size), nil
}

// scaleSquare resizes img to a size x size RGBA image.
func scaleSquare(img image.Image, size int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Over, nil)
	return dst
}

// overlayLogo paints logo centered on qr over a square of bg. The logo
// must already be scaled to its final size.
func overlayLogo(qr image.Image, logo image.Image, bg color.Color) *image.RGBA {
	b := qr.Bounds()
	out := image.NewRGBA(b)
	draw.Draw(out, b, qr, b.Min, draw.Src)

	lb := logo.Bounds()
	off := image.Pt(b.Min.X+(b.Dx()-lb.Dx())/2, b.Min.Y+(b.Dy()-lb.Dy())/2)
	area := image.Rectangle{Min: off, Max: off.Add(lb.Size())}

	draw.Draw(out, area, image.NewUniform(bg), image.Point{}, draw.Src)
	draw.Draw(out, area, logo, lb.Min, draw.Over)
	return out
}

// Badge is a standalone QR image of one member, black on white, with an
// optional logo over the middle third.
type Badge struct {
	Size  int
	Level ECLevel
	Logo  image.Image
}

// DefaultBadge matches the size and error correction of a printed badge.
func DefaultBadge() Badge {
	return Badge{Size: 72, Level: ECHigh}
}

// Image encodes text with enc. A nil enc uses GoQREncoder.
func (b Badge) Image(enc QREncoder, text string) (image.Image, error) {
	if enc == nil {
		enc = GoQREncoder{}
	}
	qr, err := enc.Encode(text, b.Size, b.Level, color.Black, color.White)
	if err != nil {
		return nil, err
	}
	if b.Logo == nil {
		return qr, nil
	}
	return overlayLogo(qr, scaleSquare(b.Logo, max(1, b.Size/3)), color.White), nil
}

// WritePNG encodes text and writes the badge to w as PNG.
func (b Badge) WritePNG(w io.Writer, enc QREncoder, text string) error {
	img, err := b.Image(enc, text)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

// LoadLogo decodes a PNG or JPEG logo.
func LoadLogo(path string) (image.Image, error) {
	img, err := decodeImage(path)
	if err != nil {
		return nil, &AssetLoadError{Asset: "logo", Path: path, Err: err}
	}
	return img, nil
}
