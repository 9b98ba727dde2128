package render

import (
	"context"
	"fmt"

	"github.com/JonMunkholm/credgrid/internal/core"
)

// RecordError reports the member whose drawing aborted a document.
type RecordError struct {
	Index int
	Name  string
	Err   error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("record %d (%s): %v", e.Index, e.Name, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// PageLabel is the footer text of page n out of total.
func PageLabel(n, total int) string {
	return fmt.Sprintf("Página %d de %d", n, total)
}

// RenderDocument draws roster onto s with lay. Pages are started here:
// the first cell and every page-break cell open a page and draw its
// header and footer before the record.
//
// An empty roster returns core.ErrEmptyRoster without touching s.
func RenderDocument(ctx context.Context, lay Layout, s Surface, roster *core.Roster) error {
	n := roster.Len()
	if n == 0 {
		return core.ErrEmptyRoster
	}

	if err := lay.Prepare(ctx, s, roster.Org, roster); err != nil {
		return err
	}

	t := lay.Theme()
	pages := t.Grid.Pages(n)

	for cell := range t.Grid.Cells(n, t.TopOffset()) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if cell.Index == 0 || cell.PageBreak {
			s.AddPage()
			drawPageChrome(s, t, roster.Org.Name, cell.Page+1, pages)
		}

		m := roster.Members[cell.Index]
		if err := lay.RenderRecord(ctx, s, cell, m); err != nil {
			return &RecordError{Index: cell.Index, Name: m.Name, Err: err}
		}
	}
	return s.Err()
}

func drawPageChrome(s Surface, t Theme, title string, page, pages int) {
	width, height := s.PageSize()

	s.SetFont(t.Header)
	s.Text(title, 0, t.Grid.MarginV/2, width, AlignCenter)

	s.SetFont(t.Footer.Font)
	s.Text(PageLabel(page, pages), t.Footer.Right, height-t.Footer.Bottom, width-2*t.Footer.Right, AlignRight)
}
