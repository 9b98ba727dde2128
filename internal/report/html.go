package report

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/credgrid/internal/batch"
	"github.com/JonMunkholm/credgrid/internal/core"
)

const pageStyle = `body{font-family:sans-serif;margin:2rem;color:#363636}
table{border-collapse:collapse}th,td{border:1px solid #ddd;padding:4px 8px;text-align:left}
.ok{color:#4c8a1e}.skipped{color:#b38600}.failed{color:#c62828}.code{font-family:monospace}`

// Page renders the summary as a standalone HTML document.
func Page(s *batch.Summary) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		e := &htmlWriter{w: w}

		e.raw("<!DOCTYPE html><html><head><meta charset=\"utf-8\"><title>")
		e.text("credgrid " + s.Mode + " " + s.RunID)
		e.raw("</title><style>" + pageStyle + "</style></head><body>")

		e.raw("<h1>")
		e.text(fmt.Sprintf("credgrid %s (%s)", s.Mode, s.Layout))
		e.raw("</h1><p>")
		e.text(fmt.Sprintf("Run %s started %s, %d ok, %d skipped, %d failed.",
			s.RunID, s.Started.Format("2006-01-02 15:04:05"),
			s.Count(batch.StatusOK), s.Count(batch.StatusSkipped), s.Count(batch.StatusFailed)))
		e.raw("</p>")

		e.raw("<table><thead><tr>")
		for _, h := range []string{"Status", "Input", "Organization", "Members", "Dropped", "Pages", "Output", "Problem"} {
			e.raw("<th>")
			e.text(h)
			e.raw("</th>")
		}
		e.raw("</tr></thead><tbody>")

		for _, r := range s.Results {
			e.raw("<tr><td class=\"" + string(r.Status) + "\">")
			e.text(string(r.Status))
			e.raw("</td>")
			for _, v := range []string{r.Input, r.Org, strconv.Itoa(r.Members), strconv.Itoa(r.Dropped), pagesText(s.Mode, r), r.Output} {
				e.raw("<td>")
				e.text(v)
				e.raw("</td>")
			}
			e.raw("<td>")
			if msg := core.MapError(r.Err); msg != nil {
				e.raw("<span class=\"code\">")
				e.text(msg.Code)
				e.raw("</span> ")
				e.text(msg.Message + ". " + msg.Action)
				e.raw("<br><small>")
				e.text(r.Err.Error())
				e.raw("</small>")
			}
			e.raw("</td></tr>")
		}

		e.raw("</tbody></table></body></html>\n")
		return e.err
	})
}

// htmlWriter keeps the first write error so the page body reads linearly.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (e *htmlWriter) raw(s string) {
	if e.err == nil {
		_, e.err = io.WriteString(e.w, s)
	}
}

func (e *htmlWriter) text(s string) {
	e.raw(templ.EscapeString(s))
}

// WriteHTML renders the summary page to path, creating its directory.
func WriteHTML(ctx context.Context, path string, s *batch.Summary) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &core.FileError{Op: "write", Path: path, Err: err}
	}
	f, err := os.Create(path)
	if err != nil {
		return &core.FileError{Op: "write", Path: path, Err: err}
	}
	if err := Page(s).Render(ctx, f); err != nil {
		_ = f.Close()
		return &core.FileError{Op: "write", Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &core.FileError{Op: "write", Path: path, Err: err}
	}
	return nil
}
