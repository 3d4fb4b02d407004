package cli

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/projlint/projlint/pkg/manifest"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// ExtrasListModel - Interactive extras group selection
// =============================================================================

// extrasGroup is a single optional dependency group shown in the picker.
type extrasGroup struct {
	Name     string
	Packages []string
}

// ExtrasListModel is the bubbletea model for selecting optional dependency groups.
type ExtrasListModel struct {
	Groups    []extrasGroup
	Cursor    int
	Checked   map[int]bool
	Confirmed bool
	Height    int
	Offset    int
}

// NewExtrasListModel creates a picker over the manifest's extras groups,
// sorted by group name.
func NewExtrasListModel(m *manifest.Manifest) ExtrasListModel {
	groups := make([]extrasGroup, 0, len(m.Extras))
	for name, pkgs := range m.Extras {
		sorted := append([]string(nil), pkgs...)
		sort.Strings(sorted)
		groups = append(groups, extrasGroup{Name: name, Packages: sorted})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Name < groups[j].Name })

	return ExtrasListModel{
		Groups:  groups,
		Cursor:  0,
		Checked: make(map[int]bool),
		Height:  15,
		Offset:  0,
	}
}

// Selected returns the names of the confirmed groups in display order.
func (m ExtrasListModel) Selected() []string {
	if !m.Confirmed {
		return nil
	}
	var names []string
	for i, g := range m.Groups {
		if m.Checked[i] {
			names = append(names, g.Name)
		}
	}
	return names
}

func (m ExtrasListModel) Init() tea.Cmd {
	return nil
}

func (m ExtrasListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			if m.Cursor < len(m.Groups)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case " ":
			m.Checked[m.Cursor] = !m.Checked[m.Cursor]
		case "a":
			for i := range m.Groups {
				m.Checked[i] = true
			}
		case "n":
			m.Checked = make(map[int]bool)
		case "enter":
			m.Confirmed = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m ExtrasListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Extras Groups"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ␣ toggle  a all  n none  ⏎ confirm  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Groups) {
		end = len(m.Groups)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		g := m.Groups[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		check := "○"
		if m.Checked[i] {
			check = "●"
		}

		pkgs := strings.Join(g.Packages, ", ")
		if len(pkgs) > 60 {
			pkgs = pkgs[:57] + "..."
		}

		rows = append(rows, []string{cursor, check, g.Name, fmt.Sprintf("%d", len(g.Packages)), pkgs})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "", "Group", "Pkgs", "Packages").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}

			actualIdx := m.Offset + row
			if actualIdx >= len(m.Groups) {
				return lipgloss.NewStyle()
			}
			isCurrent := actualIdx == m.Cursor
			isChecked := m.Checked[actualIdx]

			switch {
			case isCurrent && isChecked:
				return listSelectedStyle
			case isCurrent:
				return listNormalStyle.Bold(true)
			case isChecked:
				return lipgloss.NewStyle().Foreground(colorGreen)
			case col == 4:
				return listDimStyle
			}
			return listNormalStyle
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Groups))))

	return b.String()
}
