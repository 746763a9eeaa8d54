package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// column describes one table column of a management screen.
type column[E any] struct {
	title string
	width int
	cell  func(E) string
}

func padCell(s string, w int) string {
	if xansi.StringWidth(s) > w {
		s = xansi.Truncate(s, w, "…")
	}
	if pad := w - xansi.StringWidth(s); pad > 0 {
		s += strings.Repeat(" ", pad)
	}
	return s
}

// renderTable draws the visible page as a fixed-width grid with the
// selected row highlighted.
func renderTable[E any](cols []column[E], rows []E, selected int, width int) string {
	headStyle := lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	rowStyle := lipgloss.NewStyle()
	selStyle := lipgloss.NewStyle().
		Foreground(colorSelectedFg).
		Background(colorSelectedBg).
		Bold(true)

	var head strings.Builder
	for i, c := range cols {
		if i > 0 {
			head.WriteString("  ")
		}
		head.WriteString(padCell(c.title, c.width))
	}

	lines := []string{headStyle.Render(truncLine(head.String(), width))}
	for ri, r := range rows {
		var b strings.Builder
		for i, c := range cols {
			if i > 0 {
				b.WriteString("  ")
			}
			b.WriteString(padCell(c.cell(r), c.width))
		}
		st := rowStyle
		if ri == selected {
			st = selStyle
		}
		lines = append(lines, st.Render(truncLine(b.String(), width)))
	}
	return strings.Join(lines, "\n")
}

func truncLine(s string, width int) string {
	if width > 0 && xansi.StringWidth(s) > width {
		return xansi.Truncate(s, width, "…")
	}
	return s
}
