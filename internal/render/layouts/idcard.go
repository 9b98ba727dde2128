// Package layouts registers the built-in credential variants with the
// render registry. Import it for its side effects.
package layouts

import (
	"github.com/JonMunkholm/credgrid/internal/layout"
	"github.com/JonMunkholm/credgrid/internal/render"
)

// IDCard is a two-column sheet of large member cards with sponsor art and
// a logo in the middle of the QR code.
const IDCard = "idcard"

func init() {
	text := render.MustColor("#363636")

	render.Register(render.Variant{
		ID: IDCard,
		Theme: render.Theme{
			PageWidth:  595,
			PageHeight: 842,
			Grid: layout.Shape{
				Rows:       6,
				Cols:       2,
				CellWidth:  277.5,
				CellHeight: 123,
				MarginH:    14,
				MarginV:    38,
			},
			Header: render.Font{Family: "Comfortaa-Bold", Size: 16, Color: text},
			Footer: render.Footer{
				Font:   render.Font{Family: "Raleway-Regular", Size: 10, Color: text},
				Right:  14,
				Bottom: 32,
			},
			Padding:  6,
			Font:     render.Font{Family: "Raleway-Regular", Size: 12, Color: text},
			NameFont: render.Font{Family: "Raleway-Bold", Size: 14, Color: text},
			Palette: render.Palette{
				Normal:      render.MustColor("#ffffff"),
				Exceptional: render.MustColor("#ffffaa"),
				NotAllowed:  render.MustColor("#ffd0d0"),
			},
			Border: render.Border{Enabled: true, Color: render.MustColor("#999999"), Width: 1},
			ExceptionalBorder: &render.Border{
				Enabled: true,
				Color:   render.MustColor("#990000"),
				Width:   2,
				Radius:  8,
			},
			QR: render.QRStyle{
				ErrorCorrection: render.ECQuartile,
				Foreground:      render.MustColor("#000000"),
				Scale:           4,
			},
			Logo: "logo-30-anos.png",
			Art:  render.Art{Image: "background-patrocinador.png", Width: 1039, Height: 1023},
		},
	})
}
