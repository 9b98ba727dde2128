// Package report presents a batch summary: a styled table on the console
// and an optional standalone HTML page.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/JonMunkholm/credgrid/internal/batch"
)

// Semantic colors of the console summary.
var (
	colorOK      = lipgloss.Color("#8BC34A")
	colorSkipped = lipgloss.Color("#FFC107")
	colorFailed  = lipgloss.Color("#e53935")
	colorMuted   = lipgloss.Color("#8a8f98")
)

type styles struct {
	title   lipgloss.Style
	header  lipgloss.Style
	cell    lipgloss.Style
	muted   lipgloss.Style
	ok      lipgloss.Style
	skipped lipgloss.Style
	failed  lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		title:   r.NewStyle().Bold(true),
		header:  r.NewStyle().Bold(true).Padding(0, 1),
		cell:    r.NewStyle().Padding(0, 1),
		muted:   r.NewStyle().Foreground(colorMuted),
		ok:      r.NewStyle().Foreground(colorOK).Bold(true),
		skipped: r.NewStyle().Foreground(colorSkipped).Bold(true),
		failed:  r.NewStyle().Foreground(colorFailed).Bold(true),
	}
}

func (st styles) status(s batch.Status) lipgloss.Style {
	switch s {
	case batch.StatusOK:
		return st.ok
	case batch.StatusSkipped:
		return st.skipped
	default:
		return st.failed
	}
}

var consoleHeaders = []string{"status", "input", "organization", "members", "dropped", "pages", "output"}

// Console writes the summary table of s to w, followed by one coded line
// per failed or skipped input. Colors are dropped when w is not a terminal.
func Console(w io.Writer, s *batch.Summary) error {
	st := newStyles(lipgloss.NewRenderer(w))

	rows := make([][]string, 0, len(s.Results))
	for _, r := range s.Results {
		rows = append(rows, []string{
			string(r.Status),
			r.Input,
			r.Org,
			strconv.Itoa(r.Members),
			strconv.Itoa(r.Dropped),
			pagesText(s.Mode, r),
			r.Output,
		})
	}

	widths := make([]int, len(consoleHeaders))
	for i, h := range consoleHeaders {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}
	// Padding counts toward the style width.
	for i := range widths {
		widths[i] += 2
	}

	var b strings.Builder
	b.WriteString(st.title.Render(fmt.Sprintf("credgrid %s  layout %s  run %s", s.Mode, s.Layout, s.RunID)))
	b.WriteString("\n")

	sep := st.muted.Render("│")
	for i, h := range consoleHeaders {
		if i > 0 {
			b.WriteString(sep)
		}
		b.WriteString(st.header.Width(widths[i]).Render(h))
	}
	b.WriteString("\n")

	for i, row := range rows {
		status := s.Results[i].Status
		for j, cell := range row {
			if j > 0 {
				b.WriteString(sep)
			}
			style := st.cell
			if j == 0 {
				style = st.status(status).Padding(0, 1)
			}
			b.WriteString(style.Width(widths[j]).Render(cell))
		}
		b.WriteString("\n")
	}

	for _, r := range s.Results {
		if r.Err == nil {
			continue
		}
		msg := r.Message()
		b.WriteString(st.status(r.Status).Render(msg.Code))
		b.WriteString(" ")
		b.WriteString(r.Input)
		b.WriteString(": ")
		b.WriteString(msg.Message + ". " + msg.Action)
		b.WriteString("\n")
		b.WriteString(st.muted.Render("    " + r.Err.Error()))
		b.WriteString("\n")
	}

	b.WriteString(fmt.Sprintf("%s  %s  %s  in %s\n",
		st.ok.Render(fmt.Sprintf("%d ok", s.Count(batch.StatusOK))),
		st.skipped.Render(fmt.Sprintf("%d skipped", s.Count(batch.StatusSkipped))),
		st.failed.Render(fmt.Sprintf("%d failed", s.Count(batch.StatusFailed))),
		s.Duration().Round(time.Millisecond),
	))

	_, err := io.WriteString(w, b.String())
	return err
}

// pagesText is blank for modes that do not lay out pages.
func pagesText(mode string, r batch.Result) string {
	if mode == "csv" || r.Pages == 0 {
		return ""
	}
	return strconv.Itoa(r.Pages)
}
