// Package layout maps record indexes onto a paginated grid of fixed-size
// cells. Everything here is a pure function of the index and the grid
// shape, so a sequence of cells can be recomputed at will.
package layout

import (
	"fmt"
	"iter"
	"strings"
)

// Shape describes one page of the grid, in points.
type Shape struct {
	Rows       int     `yaml:"rows"`
	Cols       int     `yaml:"cols"`
	CellWidth  float64 `yaml:"cellWidth"`
	CellHeight float64 `yaml:"cellHeight"`
	MarginH    float64 `yaml:"marginH"` // left margin
	MarginV    float64 `yaml:"marginV"` // default top margin
	Gap        float64 `yaml:"gap"`     // space between adjacent cells
}

// LayoutConfigError reports an unusable grid shape.
type LayoutConfigError struct {
	Problems []string
}

func (e *LayoutConfigError) Error() string {
	return "invalid grid: " + strings.Join(e.Problems, "; ")
}

// Code identifies the error in run summaries.
func (e *LayoutConfigError) Code() string { return "LAYOUT001" }

// Validate checks the shape and reports every problem at once.
func (s Shape) Validate() error {
	var problems []string
	if s.Rows <= 0 {
		problems = append(problems, fmt.Sprintf("rows must be positive, got %d", s.Rows))
	}
	if s.Cols <= 0 {
		problems = append(problems, fmt.Sprintf("cols must be positive, got %d", s.Cols))
	}
	if s.CellWidth <= 0 || s.CellHeight <= 0 {
		problems = append(problems, fmt.Sprintf("cell size must be positive, got %gx%g", s.CellWidth, s.CellHeight))
	}
	if s.MarginH < 0 || s.MarginV < 0 {
		problems = append(problems, fmt.Sprintf("margins must not be negative, got %g/%g", s.MarginH, s.MarginV))
	}
	if s.Gap < 0 {
		problems = append(problems, fmt.Sprintf("gap must not be negative, got %g", s.Gap))
	}
	if len(problems) > 0 {
		return &LayoutConfigError{Problems: problems}
	}
	return nil
}

// Fits reports whether the grid fits inside a page of the given size.
func (s Shape) Fits(pageWidth, pageHeight float64) bool {
	w := s.MarginH + float64(s.Cols)*s.CellWidth + float64(s.Cols-1)*s.Gap
	h := s.MarginV + float64(s.Rows)*s.CellHeight + float64(s.Rows-1)*s.Gap
	return w <= pageWidth && h <= pageHeight
}

// PerPage returns the number of cells on one page.
func (s Shape) PerPage() int {
	return s.Rows * s.Cols
}

// Pages returns the number of pages n records occupy. It is never below 1;
// callers skip empty rosters before asking.
func (s Shape) Pages(n int) int {
	per := s.PerPage()
	if n <= 0 || per <= 0 {
		return 1
	}
	return (n + per - 1) / per
}

// TopOffset returns the y origin of the first row on a page.
type TopOffset func(page int) float64

// Cell is the position of one record on the grid.
type Cell struct {
	Index     int
	Page      int // 0-based
	Row       int
	Col       int
	X         float64
	Y         float64
	PageBreak bool // a new page starts at this cell
}

// Cell computes the cell of record k. A nil top uses MarginV on every page.
func (s Shape) Cell(k int, top TopOffset) Cell {
	per := s.PerPage()
	col := k % s.Cols
	row := (k / s.Cols) % s.Rows
	page := k / per

	y0 := s.MarginV
	if top != nil {
		y0 = top(page)
	}

	return Cell{
		Index:     k,
		Page:      page,
		Row:       row,
		Col:       col,
		X:         s.MarginH + float64(col)*(s.CellWidth+s.Gap),
		Y:         y0 + float64(row)*(s.CellHeight+s.Gap),
		PageBreak: k > 0 && k%per == 0,
	}
}

// Cells yields exactly n cells in index order. The sequence can be ranged
// over any number of times.
func (s Shape) Cells(n int, top TopOffset) iter.Seq[Cell] {
	return func(yield func(Cell) bool) {
		for k := 0; k < n; k++ {
			if !yield(s.Cell(k, top)) {
				return
			}
		}
	}
}
