package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/serdegraph/pkg/builder"
	"github.com/matzehuels/serdegraph/pkg/classify"
)

var (
	colorCyan   = lipgloss.Color("36")  // primary actions
	colorGreen  = lipgloss.Color("35")  // success
	colorYellow = lipgloss.Color("220") // warnings
	colorRed    = lipgloss.Color("167") // errors
	colorBlue   = lipgloss.Color("75")  // commands
	colorWhite  = lipgloss.Color("255") // values
	colorGray   = lipgloss.Color("245") // secondary text
	colorDim    = lipgloss.Color("240") // muted text
)

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)

	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
	styleHeader  = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// categoryColors mirror the fill colours of the rendered diagrams, using
// the nearest terminal colours.
var categoryColors = map[classify.Category]lipgloss.Color{
	classify.Red:            lipgloss.Color("167"),
	classify.Green:          lipgloss.Color("71"),
	classify.GreenGradient:  lipgloss.Color("114"),
	classify.Blue:           lipgloss.Color("68"),
	classify.BlueGradient:   lipgloss.Color("111"),
	classify.Yellow:         lipgloss.Color("178"),
	classify.YellowGradient: lipgloss.Color("222"),
	classify.White:          lipgloss.Color("252"),
}

// categoryStyle renders a category name in its colour.
func categoryStyle(c classify.Category) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(categoryColors[c])
}

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

func printSuccess(format string, args ...any) {
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	fmt.Println(styleIconError.Render(iconError) + " " + fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + fmt.Sprintf(format, args...))
}

// printDetail prints an indented, dimmed line.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a file output line.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Println(keyStyle.Render(key) + " " + StyleValue.Render(value))
}

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// statsLine formats build statistics on a single line:
// "212 types · 318 strong · 40 weak · cached".
func statsLine(s builder.Stats, cached bool) string {
	parts := []string{fmt.Sprintf("%d types", s.Types)}
	if s.Strong > 0 {
		parts = append(parts, fmt.Sprintf("%d strong", s.Strong))
	}
	if s.Weak > 0 {
		parts = append(parts, fmt.Sprintf("%d weak", s.Weak))
	}
	if s.Skipped > 0 {
		parts = append(parts, fmt.Sprintf("%d skipped", s.Skipped))
	}

	status := styleComputed.Render(iconFresh)
	if cached {
		status = styleCached.Render(iconCached)
	}

	var b strings.Builder
	b.WriteString("  ")
	for i, part := range parts {
		if i > 0 {
			b.WriteString(StyleDim.Render(" · "))
		}
		b.WriteString(StyleDim.Render(part))
	}
	b.WriteString(StyleDim.Render(" · "))
	b.WriteString(status)
	return b.String()
}

// categoryTable renders a per-category count table in classify.All order,
// omitting empty categories.
func categoryTable(s builder.Stats) string {
	var rows [][]string
	var cats []classify.Category
	for _, c := range classify.All {
		if n := s.Categories[c]; n > 0 {
			rows = append(rows, []string{c.String(), fmt.Sprint(n)})
			cats = append(cats, c)
		}
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		Headers("Category", "Types").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader.Padding(0, 1)
			}
			st := lipgloss.NewStyle().Padding(0, 1)
			if col == 0 && row >= 0 && row < len(cats) {
				return st.Inherit(categoryStyle(cats[row]))
			}
			return st
		}).
		Render()
}

// typeTable renders one row per node with kind, category and edge counts.
func typeTable(nodes []builder.Node) string {
	rows := make([][]string, len(nodes))
	for i, n := range nodes {
		rows[i] = []string{n.ID, n.Kind.String(), n.Category.String(), fmt.Sprint(len(n.Strong)), fmt.Sprint(len(n.Weak))}
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		Headers("Type", "Kind", "Category", "Strong", "Weak").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader.Padding(0, 1)
			}
			st := lipgloss.NewStyle().Padding(0, 1)
			if col == 2 && row >= 0 && row < len(nodes) {
				return st.Inherit(categoryStyle(nodes[row].Category))
			}
			return st
		}).
		Render()
}
