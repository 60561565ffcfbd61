package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// padRight pads s with spaces so its visual width equals width.
func padRight(s string, width int) string {
	if width <= 0 {
		return s
	}
	w := ansi.StringWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

// truncate shortens s to width cells, appending "…" if truncated.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return ansi.Truncate(s, width, "…")
}

// cell fits s into exactly width cells.
func cell(s string, width int) string {
	return padRight(truncate(s, width), width)
}

type column struct {
	title string
	width int
}

func renderRow(cols []column, values []string) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		v := ""
		if i < len(values) {
			v = values[i]
		}
		parts[i] = cell(v, c.width)
	}
	return strings.Join(parts, " ")
}

func renderHeader(cols []column) string {
	titles := make([]string, len(cols))
	for i, c := range cols {
		titles[i] = c.title
	}
	return headerStyle.Render(renderRow(cols, titles))
}

// showing is the pagination footer, e.g. "Showing 11 to 20 of 23 users".
func showing(page, pageSize, total int, noun string) string {
	if total == 0 {
		return "No " + noun + " to show"
	}
	from := (page-1)*pageSize + 1
	to := page * pageSize
	if to > total {
		to = total
	}
	return "Showing " + strconv.Itoa(from) + " to " + strconv.Itoa(to) + " of " + strconv.Itoa(total) + " " + noun
}

func pager(page, pages int) string {
	if pages < 1 {
		pages = 1
	}
	return dimStyle.Render("page " + strconv.Itoa(page) + "/" + strconv.Itoa(pages))
}

// placeWithFooter fills the screen with body, draws modal centred on top of
// it and pins the status line and footer to the bottom. Without a known size
// the modal is appended below the body.
func placeWithFooter(width, height int, body, modal, statusLine, footer string) string {
	if height == 0 || width == 0 {
		if modal != "" {
			body += "\n\n" + modal
		}
		return body + "\n\n" + statusLine + "\n" + footer
	}
	contentHeight := height - 2
	if contentHeight < 1 {
		contentHeight = 1
	}
	main := body
	if lipgloss.Height(body) < contentHeight {
		main = lipgloss.Place(width, contentHeight, lipgloss.Left, lipgloss.Top, body)
	}
	if modal != "" {
		x := (width - maxLineWidth(splitLines(modal))) / 2
		y := (contentHeight - lipgloss.Height(modal)) / 2
		main = overlayAt(main, modal, max(x, 0), max(y, 0), width, contentHeight)
	}
	return main + "\n" + statusLine + "\n" + footer
}

// overlayAt composites overlay onto base with its top-left corner at (x, y).
func overlayAt(base, overlay string, x, y, width, height int) string {
	baseLines := splitLines(base)
	overlayLines := splitLines(overlay)
	overlayWidth := maxLineWidth(overlayLines)
	for i, line := range overlayLines {
		row := y + i
		if row < 0 || row >= len(baseLines) || row >= height {
			continue
		}
		target := padRight(baseLines[row], width)
		left := ansi.Truncate(target, x, "")
		if w := ansi.StringWidth(left); w < x {
			left += strings.Repeat(" ", x-w)
		}
		overlayLine := padRight(line, overlayWidth)
		right := ansi.TruncateLeft(target, x+ansi.StringWidth(overlayLine), "")
		baseLines[row] = left + overlayLine + right
	}
	return strings.Join(baseLines, "\n")
}

func splitLines(s string) []string {
	if s == "" {
		return []string{""}
	}
	return strings.Split(s, "\n")
}

func maxLineWidth(lines []string) int {
	m := 0
	for _, line := range lines {
		if w := ansi.StringWidth(line); w > m {
			m = w
		}
	}
	return m
}

// newInput is a text field with a static cursor.
func newInput(prompt string, limit int) textinput.Model {
	in := textinput.New()
	in.Prompt = prompt
	in.CharLimit = limit
	in.Cursor.SetMode(cursor.CursorStatic)
	return in
}
