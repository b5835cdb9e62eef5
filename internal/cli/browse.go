package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/serdegraph/pkg/builder"
	"github.com/matzehuels/serdegraph/pkg/classify"
	"github.com/matzehuels/serdegraph/pkg/dag"
)

// browseCommand creates the browse command, an interactive view of the
// classified types and their links.
func (c *CLI) browseCommand() *cobra.Command {
	var noCache bool
	cmd := &cobra.Command{
		Use:   "browse [model.json]",
		Short: "Browse types, categories and links interactively",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			path, err := modelPath(args, cfg)
			if err != nil {
				return err
			}
			res, _, buildErr := c.build(cmd.Context(), path, cfg, noCache)
			if res == nil {
				return buildErr
			}
			m, err := newTypeListModel(res)
			if err != nil {
				return err
			}
			if _, err := tea.NewProgram(m, tea.WithContext(cmd.Context())).Run(); err != nil {
				return err
			}
			return reportUnresolved(path, buildErr)
		},
	}
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	return cmd
}

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// typeListModel is the bubbletea model behind browse. The list shows the
// public types; enter opens the links of the one under the cursor.
type typeListModel struct {
	all    []builder.Node
	nodes  []builder.Node // all, filtered by category
	graph  *dag.DAG
	filter int // index into classify.All, -1 for every category

	cursor int
	offset int
	height int
	detail bool
}

func newTypeListModel(res *builder.Result) (typeListModel, error) {
	g, err := res.Graph()
	if err != nil {
		return typeListModel{}, fmt.Errorf("type graph: %w", err)
	}
	return typeListModel{
		all:    res.Nodes,
		nodes:  res.Nodes,
		graph:  g,
		filter: -1,
		height: 15,
	}, nil
}

func (m typeListModel) Init() tea.Cmd {
	return nil
}

func (m typeListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.detail {
			switch msg.String() {
			case "q", "ctrl+c":
				return m, tea.Quit
			case "esc", "enter", "backspace":
				m.detail = false
			}
			return m, nil
		}
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.cursor < len(m.nodes)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		case "tab":
			m = m.cycleFilter()
		case "enter":
			if len(m.nodes) > 0 {
				m.detail = true
			}
		}
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-7, 5)
	}
	return m, nil
}

// cycleFilter advances to the next category that has types, wrapping back
// to every category.
func (m typeListModel) cycleFilter() typeListModel {
	for {
		m.filter++
		if m.filter >= len(classify.All) {
			m.filter = -1
			m.nodes = m.all
			break
		}
		cat := classify.All[m.filter]
		var nodes []builder.Node
		for _, n := range m.all {
			if n.Category == cat {
				nodes = append(nodes, n)
			}
		}
		if len(nodes) > 0 {
			m.nodes = nodes
			break
		}
	}
	m.cursor, m.offset = 0, 0
	return m
}

func (m typeListModel) View() string {
	if m.detail {
		return m.detailView()
	}

	var b strings.Builder
	title := "Types"
	if m.filter >= 0 {
		title += " · " + classify.All[m.filter].String()
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ links  tab category  q quit"))
	b.WriteString("\n\n")

	if len(m.nodes) == 0 {
		b.WriteString(listDimStyle.Render("  no public types"))
		return b.String()
	}

	end := min(m.offset+m.height, len(m.nodes))
	var rows [][]string
	for i := m.offset; i < end; i++ {
		n := m.nodes[i]
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, n.ID, n.Kind.String(), n.Category.String(), fmt.Sprint(len(n.Strong) + len(n.Weak))})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Type", "Kind", "Category", "Links").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			idx := m.offset + row
			if idx >= len(m.nodes) {
				return lipgloss.NewStyle()
			}
			base := lipgloss.NewStyle()
			if col == 3 {
				base = categoryStyle(m.nodes[idx].Category)
			}
			if idx == m.cursor {
				return base.Bold(true)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, len(m.nodes))))
	return b.String()
}

func (m typeListModel) detailView() string {
	n := m.nodes[m.cursor]
	var b strings.Builder

	b.WriteString(listSelectedStyle.Render(n.ID))
	b.WriteString("  ")
	b.WriteString(categoryStyle(n.Category).Render(n.Category.String()))
	b.WriteString(listDimStyle.Render(" " + n.Kind.String()))
	b.WriteString("\n\n")

	section := func(title string, ids []string) {
		b.WriteString(styleHeader.Render(title))
		b.WriteString("\n")
		if len(ids) == 0 {
			b.WriteString(listDimStyle.Render("  none"))
			b.WriteString("\n")
		}
		for _, id := range ids {
			b.WriteString("  " + StyleDim.Render(iconArrow) + " " + m.label(id) + "\n")
		}
		b.WriteString("\n")
	}
	section("Strong links", n.Strong)
	section("Weak links", n.Weak)
	section("Referenced by", m.graph.Parents(n.ID))

	// Reachable includes the type itself.
	if reach := len(m.graph.Reachable(n.ID)) - 1; reach > 0 {
		b.WriteString(listDimStyle.Render(fmt.Sprintf("reaches %d types transitively", reach)))
		b.WriteString("\n\n")
	}

	b.WriteString(listDimStyle.Render("⏎/esc back  q quit"))
	return b.String()
}

// label renders id in the colour of its category; hidden types are dimmed.
func (m typeListModel) label(id string) string {
	node, ok := m.graph.Node(id)
	if !ok {
		return id
	}
	cat, err := classify.ParseCategory(node.Meta.String(builder.MetaCategory))
	if err != nil {
		return id
	}
	if !node.Meta.Bool(builder.MetaPublic) {
		return categoryStyle(cat).Render(id) + listDimStyle.Render(" (hidden)")
	}
	return categoryStyle(cat).Render(id)
}
