package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lotas/arxivgruppen/internal/types"
)

var (
	activeTabStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62")).Underline(true)
	inactiveTabStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	authorStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("75"))
	dimStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	cursorStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	statusStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	inputStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("229"))
)

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderNavbar() + "\n\n")

	switch m.view {
	case viewPapers:
		b.WriteString(m.renderPapers())
	case viewPrefs:
		b.WriteString(m.renderPrefs())
	}

	b.WriteString("\n" + m.renderFooter())
	return b.String()
}

func (m Model) renderNavbar() string {
	names := []string{"Papers", "Preferred Authors"}
	var tabs []string
	for i, name := range names {
		if viewType(i) == m.view {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	conn := dimStyle.Render("extension: not connected")
	if m.connected {
		conn = dimStyle.Render("extension: connected")
	}

	stats := dimStyle.Render(fmt.Sprintf("%d cached · %d groups",
		len(m.papers), m.pipe.Coord.ActiveGroups()))

	return " " + strings.Join(tabs, inactiveTabStyle.Render(" │ ")) + "   " + stats + "   " + conn
}

// renderPapers shows cached papers clustered by representative author.
func (m Model) renderPapers() string {
	if len(m.papers) == 0 {
		return dimStyle.Render("  No cached papers yet. Open some arXiv tabs.")
	}

	buckets := make(map[string][]*types.Paper)
	for _, p := range m.papers {
		key := p.Author
		if key == "" {
			key = "Unattributed"
		}
		buckets[key] = append(buckets[key], p)
	}
	var order []string
	for key := range buckets {
		order = append(order, key)
	}
	sort.Strings(order)

	var b strings.Builder
	idx := 0
	for _, author := range order {
		b.WriteString(" " + authorStyle.Render(author) +
			dimStyle.Render(fmt.Sprintf(" (%d)", len(buckets[author]))) + "\n")
		for _, p := range buckets[author] {
			prefix := "   "
			if idx == m.paperCursor {
				prefix = cursorStyle.Render(" > ")
			}
			title := p.Title
			if title == "" {
				title = p.ID
			}
			line := prefix + title + dimStyle.Render("  arXiv:"+p.ID)
			b.WriteString(line + "\n")
			idx++
		}
	}
	return b.String()
}

// renderPrefs shows the ordered preferred-author list.
func (m Model) renderPrefs() string {
	var b strings.Builder

	names := m.pipe.Prefs.List()
	if len(names) == 0 && !m.adding {
		b.WriteString(dimStyle.Render("  No preferred authors. Press 'a' to add one.") + "\n")
	}

	for i, name := range names {
		prefix := "   "
		if i == m.prefCursor && !m.adding {
			prefix = cursorStyle.Render(" > ")
		}
		b.WriteString(fmt.Sprintf("%s%2d. %s\n", prefix, i+1, name))
	}

	if m.adding {
		b.WriteString("\n " + inputStyle.Render("Add author: "+m.input+"▎") + "\n")
	}

	return b.String()
}

func (m Model) renderFooter() string {
	var help string
	switch {
	case m.adding:
		help = "enter: save · esc: cancel"
	case m.view == viewPrefs:
		help = "a: add · d: remove · K: raise priority · r: re-run all · tab: papers · q: quit"
	default:
		help = "r: re-run all · x: clear cache · tab: preferred authors · q: quit"
	}

	line := " " + statusStyle.Render(help)
	if m.status != "" {
		line += "   " + dimStyle.Render(m.status)
	}
	return line
}
