package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lotas/arxivgruppen/internal/pipeline"
	"github.com/lotas/arxivgruppen/internal/server"
	"github.com/lotas/arxivgruppen/internal/types"
)

// --- Messages ---

type wsEventMsg struct {
	msg server.IncomingMsg
}

type papersLoadedMsg struct {
	papers []*types.Paper
}

type tickMsg time.Time

type rerunDoneMsg struct{}

// View switching.
type viewType int

const (
	viewPapers viewType = iota
	viewPrefs
)

// Model is the top-level TUI model.
type Model struct {
	pipe       *pipeline.Pipeline
	srv        *server.Server
	loadPapers func() []*types.Paper

	view      viewType
	papers    []*types.Paper
	connected bool
	width     int
	height    int

	// Papers view
	paperCursor int

	// Prefs view
	prefCursor int
	adding     bool
	input      string

	status string
}

// NewModel builds the TUI model. loadPapers reads the current cached
// paper list (durable tier preferred, fast tier as fallback).
func NewModel(pipe *pipeline.Pipeline, srv *server.Server, loadPapers func() []*types.Paper) Model {
	return Model{
		pipe:       pipe,
		srv:        srv,
		loadPapers: loadPapers,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.listen(), m.reload(), tick())
}

// listen forwards one extension event into the bubbletea loop.
func (m Model) listen() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.srv.Events()
		if !ok {
			return nil
		}
		return wsEventMsg{msg: ev}
	}
}

func (m Model) reload() tea.Cmd {
	load := m.loadPapers
	return func() tea.Msg {
		return papersLoadedMsg{papers: load()}
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// handleEvent runs the pipeline for one extension event off the UI
// goroutine and reloads the paper list afterwards.
func (m Model) handleEvent(ev server.IncomingMsg) tea.Cmd {
	pipe := m.pipe
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		switch ev.Type {
		case "pageLoaded":
			pipe.HandlePageLoad(ctx, server.ParsePageLoad(ev))
		case "tabRemoved":
			pipe.HandleTabRemoved(ctx, ev.TabID)
		case "snapshot":
			if tabs, err := server.ParseSnapshot(ev); err == nil {
				pipe.RerunAll(ctx, tabs)
			}
		}
		return rerunDoneMsg{}
	}
}

// rerunAll asks the extension for a fresh snapshot; the reply arrives
// as a snapshot event and goes through handleEvent.
func (m Model) rerunAll() tea.Cmd {
	srv := m.srv
	return func() tea.Msg {
		srv.RequestSnapshot()
		return nil
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		m.connected = m.srv.Connected()
		return m, tick()

	case wsEventMsg:
		return m, tea.Batch(m.handleEvent(msg.msg), m.listen())

	case rerunDoneMsg:
		return m, m.reload()

	case papersLoadedMsg:
		m.papers = msg.papers
		if m.paperCursor >= len(m.papers) {
			m.paperCursor = max(0, len(m.papers)-1)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Text entry for a new preferred author captures everything.
	if m.adding {
		switch msg.Type {
		case tea.KeyEnter:
			if m.input != "" {
				m.pipe.Prefs.Add(m.input)
				m.status = "Added " + m.input
			}
			m.adding = false
			m.input = ""
			return m, m.rerunAll()
		case tea.KeyEsc:
			m.adding = false
			m.input = ""
			return m, nil
		case tea.KeyBackspace:
			if len(m.input) > 0 {
				r := []rune(m.input)
				m.input = string(r[:len(r)-1])
			}
			return m, nil
		case tea.KeyRunes, tea.KeySpace:
			m.input += string(msg.Runes)
			if msg.Type == tea.KeySpace {
				m.input += " "
			}
			return m, nil
		}
		return m, nil
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "tab":
		if m.view == viewPapers {
			m.view = viewPrefs
		} else {
			m.view = viewPapers
		}
		return m, nil

	case "up", "k":
		if m.view == viewPapers && m.paperCursor > 0 {
			m.paperCursor--
		} else if m.view == viewPrefs && m.prefCursor > 0 {
			m.prefCursor--
		}
		return m, nil

	case "down", "j":
		if m.view == viewPapers && m.paperCursor < len(m.papers)-1 {
			m.paperCursor++
		} else if m.view == viewPrefs && m.prefCursor < len(m.pipe.Prefs.List())-1 {
			m.prefCursor++
		}
		return m, nil

	case "a":
		if m.view == viewPrefs {
			m.adding = true
			m.input = ""
		}
		return m, nil

	case "d":
		if m.view == viewPrefs {
			names := m.pipe.Prefs.List()
			if m.prefCursor < len(names) {
				m.pipe.Prefs.Remove(names[m.prefCursor])
				m.status = "Removed " + names[m.prefCursor]
				if m.prefCursor > 0 {
					m.prefCursor--
				}
				return m, m.rerunAll()
			}
		}
		return m, nil

	case "K", "shift+up":
		if m.view == viewPrefs {
			names := m.pipe.Prefs.List()
			if m.prefCursor > 0 && m.prefCursor < len(names) {
				m.pipe.Prefs.MoveUp(names[m.prefCursor])
				m.prefCursor--
				return m, m.rerunAll()
			}
		}
		return m, nil

	case "r":
		m.status = "Re-running all open papers..."
		return m, m.rerunAll()

	case "x":
		m.pipe.Cache.Clear()
		m.pipe.Coord.Reset()
		m.status = "Cache cleared"
		return m, m.reload()
	}

	return m, nil
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
