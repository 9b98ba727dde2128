package render

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"strings"

	"github.com/JonMunkholm/credgrid/internal/core"
	"github.com/JonMunkholm/credgrid/internal/layout"
)

// recorder is a Surface that logs every call as a short string.
type recorder struct {
	calls  []string
	images map[string]image.Image
	fonts  map[string]string
	font   Font
	err    error
}

func newRecorder() *recorder {
	return &recorder{images: make(map[string]image.Image), fonts: make(map[string]string)}
}

func (r *recorder) log(format string, args ...any) {
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
}

func (r *recorder) AddPage() { r.log("page") }
func (r *recorder) PageSize() (float64, float64) { return 595, 842 }
func (r *recorder) SetFont(f Font) { r.font = f; r.log("font %s %g", f.Family, f.Size) }
func (r *recorder) Output(w io.Writer) error { _, err := io.WriteString(w, "%PDF-fake"); return err }
func (r *recorder) Err() error { return r.err }
func (r *recorder) DrawImage(name string, x, y, w, h float64) { r.log("image %s %g,%g %gx%g", name, x, y, w, h) }

func (r *recorder) RegisterFont(family, path string) error {
	r.fonts[family] = path
	return nil
}

func (r *recorder) MeasureText(text string, width float64) (float64, float64) {
	w := float64(len([]rune(text))) * r.font.Size / 2
	return min(w, width), r.font.Size
}

func (r *recorder) Text(text string, x, y, width float64, align Align) {
	r.log("text %q %g,%g", text, x, y)
}

func (r *recorder) FillRect(x, y, w, h float64, c Color, alpha float64) {
	r.log("fill %s %g,%g %gx%g a=%g", c, x, y, w, h, alpha)
}

func (r *recorder) StrokeRect(x, y, w, h, radius, lineWidth float64, c Color) {
	r.log("stroke %s r=%g w=%g", c, radius, lineWidth)
}

func (r *recorder) RegisterImage(name string, img image.Image) error {
	if _, ok := r.images[name]; !ok {
		r.images[name] = img
	}
	return nil
}

// prefixed returns the calls starting with prefix.
func (r *recorder) prefixed(prefix string) []string {
	var out []string
	for _, c := range r.calls {
		if strings.HasPrefix(c, prefix) {
			out = append(out, c)
		}
	}
	return out
}

// stubQR returns a flat image of the requested background and records the
// payloads it was asked to encode.
type stubQR struct {
	payloads []string
	bgs      []color.Color
	fail     string
}

func (q *stubQR) Encode(text string, size int, level ECLevel, fg, bg color.Color) (image.Image, error) {
	if q.fail != "" && strings.Contains(text, q.fail) {
		return nil, fmt.Errorf("cannot encode %q", q.fail)
	}
	q.payloads = append(q.payloads, text)
	q.bgs = append(q.bgs, bg)
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.Set(x, y, bg)
		}
	}
	return img, nil
}

func testTheme() Theme {
	ink := MustColor("#363636")
	return Theme{
		PageWidth:  595,
		PageHeight: 842,
		Grid:       layout.Shape{Rows: 2, Cols: 2, CellWidth: 270, CellHeight: 100, MarginH: 20, MarginV: 40, Gap: 5},
		Header:     Font{Family: "Head", Size: 16, Color: ink},
		Footer:     Footer{Font: Font{Family: "Foot", Size: 10, Color: ink}, Right: 14, Bottom: 30},
		Padding:    5,
		Font:       Font{Family: "Body", Size: 10, Color: ink},
		NameFont:   Font{Family: "Body-Bold", Size: 12, Color: ink},
		Palette: Palette{
			Normal:      MustColor("#ffffff"),
			Exceptional: MustColor("#ffffaa"),
			NotAllowed:  MustColor("#ffd0d0"),
		},
		Border:            Border{Enabled: true, Color: MustColor("#999999"), Width: 1},
		ExceptionalBorder: &Border{Enabled: true, Color: MustColor("#990000"), Width: 2, Radius: 8},
		QR:                QRStyle{ErrorCorrection: ECQuartile, Foreground: MustColor("#000000"), Scale: 1},
	}
}

func testRoster(n int) *core.Roster {
	org, err := core.NewOrganization("Clube", "CLB", core.Courses{
		Regular:     []string{"sub15"},
		Exceptional: []string{"guest"},
	})
	if err != nil {
		panic(err)
	}
	roster := &core.Roster{Org: org}
	for i := 1; i <= n; i++ {
		roster.Members = append(roster.Members, core.Member{
			ID: i, Name: fmt.Sprintf("Member %d", i), RA: fmt.Sprintf("RA%d", i), Course: "sub15", Org: org,
		})
	}
	return roster
}
