package view

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/jpalmerr/buildbar"
)

// Color palette
var (
	colorGreen = lipgloss.Color("42")
	colorRed   = lipgloss.Color("196")
	colorWhite = lipgloss.Color("255")
	colorGray  = lipgloss.Color("245")
)

// Styles defines the visual styles for the table.
type Styles struct {
	Header lipgloss.Style
	Muted  lipgloss.Style
	Error  lipgloss.Style

	StatusGreen lipgloss.Style
	StatusRed   lipgloss.Style
	StatusWhite lipgloss.Style
}

// DefaultStyles returns the styles used by [Table].
func DefaultStyles() Styles {
	return Styles{
		Header:      lipgloss.NewStyle().Bold(true).Foreground(colorWhite),
		Muted:       lipgloss.NewStyle().Foreground(colorGray),
		Error:       lipgloss.NewStyle().Bold(true).Foreground(colorRed),
		StatusGreen: lipgloss.NewStyle().Foreground(colorGreen),
		StatusRed:   lipgloss.NewStyle().Bold(true).Foreground(colorRed),
		StatusWhite: lipgloss.NewStyle().Foreground(colorWhite),
	}
}

// statusStyle picks the style matching the colour buildbar assigns.
func (s Styles) statusStyle(c buildbar.Color) lipgloss.Style {
	switch c {
	case buildbar.ColorGreen:
		return s.StatusGreen
	case buildbar.ColorRed:
		return s.StatusRed
	default:
		return s.StatusWhite
	}
}

const columnGap = "  "

// Table renders results as an aligned table with one row per monitor,
// in the given order. Start times are shown in loc.
func Table(results []buildbar.BuildStatus, loc *time.Location, styles Styles) string {
	if len(results) == 0 {
		return styles.Muted.Render("no monitors configured") + "\n"
	}

	headers := []string{"STATUS", "REPOSITORY", "STARTED", "LINK"}
	rows := make([][]string, len(results))
	colors := make([]buildbar.Color, len(results))
	for i, r := range results {
		_, color := buildbar.Appearance(r.Status)
		colors[i] = color
		rows[i] = []string{
			r.Status.String(),
			r.Name,
			buildbar.FormatTimestamp(r.Started, loc),
			r.Monitor.WebURL(),
		}
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := lipgloss.Width(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	b.WriteString(renderRow(headers, widths, func(int) lipgloss.Style { return styles.Header }))
	for i, row := range rows {
		status := styles.statusStyle(colors[i])
		b.WriteString(renderRow(row, widths, func(col int) lipgloss.Style {
			switch col {
			case 0:
				return status
			case 3:
				return styles.Muted
			default:
				return lipgloss.NewStyle()
			}
		}))
	}
	return b.String()
}

// renderRow pads each cell to its column width before styling it, so ANSI
// sequences do not disturb alignment. The last column is not padded.
func renderRow(cells []string, widths []int, style func(col int) lipgloss.Style) string {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		st := style(i)
		if i < len(cells)-1 {
			st = st.Width(widths[i])
		}
		parts[i] = st.Render(cell)
	}
	return strings.TrimRight(strings.Join(parts, columnGap), " ") + "\n"
}

// Error renders a failed collection.
func Error(err error, styles Styles) string {
	return styles.Error.Render("collection failed: ") + err.Error() + "\n"
}
