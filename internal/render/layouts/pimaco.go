package layouts

import (
	"github.com/JonMunkholm/credgrid/internal/layout"
	"github.com/JonMunkholm/credgrid/internal/render"
)

// Pimaco6180 fits Pimaco 6180 adhesive label sheets, 30 labels per page.
const Pimaco6180 = "pimaco-6180"

func init() {
	black := render.MustColor("#000000")
	white := render.MustColor("#ffffff")

	render.Register(render.Variant{
		ID:           Pimaco6180,
		ReferenceURL: "http://www.pimaco.com.br/produto/108/6180-carta-100-folhas",
		Theme: render.Theme{
			PageWidth:  595,
			PageHeight: 842,
			Grid: layout.Shape{
				Rows:       10,
				Cols:       3,
				CellWidth:  189,
				CellHeight: 69,
				MarginH:    14,
				MarginV:    76,
			},
			Header: render.Font{Family: "Comfortaa-Bold", Size: 24, Color: black},
			Footer: render.Footer{
				Font:   render.Font{Family: "Raleway-Regular", Size: 10, Color: black},
				Right:  14,
				Bottom: 38,
			},
			Padding:  8,
			Font:     render.Font{Family: "Raleway-Regular", Size: 10, Color: black},
			NameFont: render.Font{Family: "Raleway-Bold", Size: 11, Color: black},
			// Labels are printed on white stock; only the border of
			// exceptional members stands out.
			Palette: render.Palette{
				Normal:             white,
				Exceptional:        white,
				NotAllowed:         white,
				CollapseNotAllowed: true,
			},
			Border: render.Border{Enabled: true, Color: render.MustColor("#999999"), Width: 1, Radius: 3},
			ExceptionalBorder: &render.Border{
				Enabled: true,
				Color:   render.MustColor("#990000"),
				Width:   1.5,
				Radius:  3,
			},
			QR: render.QRStyle{
				ErrorCorrection: render.ECQuartile,
				Foreground:      black,
				Scale:           4,
			},
			Art: render.Art{Image: "background.png", Width: 1039, Height: 1023},
		},
	})
}
