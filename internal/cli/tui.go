package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	pathio "github.com/matzehuels/pathlattice/pkg/io"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// maxSequenceWidth truncates long sequences in tables.
const maxSequenceWidth = 48

// =============================================================================
// PathListModel - Interactive path browser
// =============================================================================

// PathListModel is the bubbletea model for browsing top-K paths. Enter
// toggles the detail view of the path under the cursor.
type PathListModel struct {
	Paths   []pathio.PathResult
	Cursor  int
	Height  int
	Offset  int
	Details bool
}

// NewPathListModel creates a new path list model.
func NewPathListModel(paths []pathio.PathResult) PathListModel {
	return PathListModel{
		Paths:  paths,
		Height: 15,
	}
}

func (m PathListModel) Init() tea.Cmd {
	return nil
}

func (m PathListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Paths)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter", " ":
			m.Details = !m.Details
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 12
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m PathListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Top Paths"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ details  q quit"))
	b.WriteString("\n\n")

	b.WriteString(pathTable(m.Paths, m.Offset, m.Height, m.Cursor))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Paths))))

	if m.Details && m.Cursor < len(m.Paths) {
		b.WriteString("\n\n")
		b.WriteString(pathDetails(m.Paths[m.Cursor]))
	}
	return b.String()
}

// pathDetails renders the full sequence, alignment and node IDs of p.
func pathDetails(p pathio.PathResult) string {
	var b strings.Builder
	b.WriteString(listSelectedStyle.Render(fmt.Sprintf("#%d", p.Rank)))
	b.WriteString(StyleDim.Render("  score "))
	b.WriteString(StyleNumber.Render(formatScore(p.Score)))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("sequence   "))
	b.WriteString(StyleValue.Render(p.Sequence))
	b.WriteString("\n")
	if p.Alignment != "" {
		b.WriteString(StyleDim.Render("alignment  "))
		b.WriteString(StyleValue.Render(p.Alignment))
		b.WriteString("\n")
	}
	ids := make([]string, len(p.Path))
	for i, id := range p.Path {
		ids[i] = strconv.Itoa(id)
	}
	b.WriteString(StyleDim.Render("nodes      "))
	b.WriteString(StyleValue.Render(strings.Join(ids, " ")))
	return b.String()
}

// =============================================================================
// Tables
// =============================================================================

// pathTable renders height rows of paths starting at offset. The row at
// cursor is highlighted; pass -1 for none.
func pathTable(paths []pathio.PathResult, offset, height, cursor int) string {
	end := offset + height
	if end > len(paths) {
		end = len(paths)
	}

	rows := [][]string{}
	for i := offset; i < end; i++ {
		p := paths[i]
		marker := "  "
		if i == cursor {
			marker = "▸ "
		}
		rows = append(rows, []string{
			marker,
			strconv.Itoa(p.Rank),
			formatScore(p.Score),
			truncate(p.Sequence, maxSequenceWidth),
			truncate(p.Alignment, maxSequenceWidth),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "#", "Score", "Sequence", "Alignment").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if offset+row == cursor {
				return listSelectedStyle
			}
			if col == 2 {
				return lipgloss.NewStyle().Foreground(colorCyan)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	return t.Render()
}

// printPaths prints every path as a table.
func printPaths(paths []pathio.PathResult) {
	if len(paths) == 0 {
		printWarning("No paths found")
		return
	}
	fmt.Println(pathTable(paths, 0, len(paths), -1))
}

// =============================================================================
// Helpers
// =============================================================================

func formatScore(s float64) string {
	return strconv.FormatFloat(s, 'g', 6, 64)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
