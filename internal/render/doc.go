// Package render draws credential tags onto a paginated Surface.
//
// A Variant is a registered set of theme constants. Variant.New returns a
// TagRenderer, the single Layout implementation every variant shares, and
// RenderDocument walks the grid from package layout, starting pages and
// drawing headers and footers before handing each cell to the Layout.
//
// Variants self-register from package render/layouts; import it for its
// side effects.
package render
