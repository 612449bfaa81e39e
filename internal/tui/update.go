package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/maauso/adwizard/internal/session"
	"github.com/maauso/adwizard/internal/wizard"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		return m, nil
	case SnapshotMsg:
		return m.handleSnapshot(msg)
	case CatalogsMsg:
		return m.handleCatalogs(msg)
	case StartOverMsg:
		return m.handleStartOver(msg)
	case TickMsg:
		if m.Notice != "" && !m.NoticeVisible(msg.Time) {
			m.Notice = ""
		}
		return m, tea.Batch(loadSnapshot(m.ctx, m.deps.Session, m.gen), tickCmd())
	}
	return m, nil
}

// handleKeyPress processes keyboard input.
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.ConfirmingReset {
		switch msg.String() {
		case "y", "Y":
			m.ConfirmingReset = false
			return m, startOver(m.ctx, m.deps.Session)
		case "ctrl+c":
			return m, tea.Quit
		default:
			m.ConfirmingReset = false
			return m, nil
		}
	}

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "left", "h":
		if cur := wizard.Index(m.Route); cur > 0 {
			return m.goTo(wizard.Steps()[cur-1].Route)
		}
	case "right", "l", "enter":
		if !m.CanContinue() {
			m.Err = fmt.Errorf("%s is not done yet: run adwizard %s", m.Step().Name, m.Step().Command)
			return m, nil
		}
		if next, ok := wizard.Next(m.Step().Step); ok {
			return m.goTo(next.Route)
		}
	case "1", "2", "3", "4", "5", "6":
		target := int(msg.String()[0] - '1')
		if wizard.Unlocked(target, wizard.Index(m.Route)) {
			return m.goTo(wizard.Steps()[target].Route)
		}
	case "r":
		cmds := []tea.Cmd{loadSnapshot(m.ctx, m.deps.Session, m.gen)}
		if m.wantsCatalogs() {
			m.CatalogsLoading = true
			cmds = append(cmds, loadCatalogs(m.ctx, m.deps))
		}
		return m, tea.Batch(cmds...)
	case "x":
		m.ConfirmingReset = true
		return m, nil
	}
	return m, nil
}

// wantsCatalogs reports whether the avatar catalogs may be fetched now.
// Without a script the step cannot generate, so the backend is left alone.
func (m Model) wantsCatalogs() bool {
	return m.Step().Step == wizard.StepAvatar && !m.CatalogsLoading &&
		len(wizard.Missing(wizard.StepAvatar, m.Snapshot)) == 0
}

// goTo switches the active route. Entering the avatar step fetches the
// catalogs once.
func (m Model) goTo(route string) (tea.Model, tea.Cmd) {
	m.Route = route
	m.Err = nil
	if m.Catalogs == nil && m.wantsCatalogs() {
		m.CatalogsLoading = true
		return m, loadCatalogs(m.ctx, m.deps)
	}
	return m, nil
}

// handleSnapshot stores a fresh session read. The first one picks the
// starting route when none was given and enters it.
func (m Model) handleSnapshot(msg SnapshotMsg) (tea.Model, tea.Cmd) {
	if msg.Gen != m.gen {
		return m, nil
	}
	if msg.Err != nil {
		m.Err = fmt.Errorf("read session: %w", msg.Err)
		return m, nil
	}
	m.Snapshot = msg.Snapshot
	first := !m.Loaded
	m.Loaded = true
	if !first {
		return m, nil
	}
	route := m.Route
	if route == "" {
		route = wizard.Resume(m.Snapshot).Route
	}
	return m.goTo(route)
}

func (m Model) handleCatalogs(msg CatalogsMsg) (tea.Model, tea.Cmd) {
	m.CatalogsLoading = false
	c := msg.Catalogs
	m.Catalogs = &c
	m.CatalogsErr = msg.Err
	return m, nil
}

func (m Model) handleStartOver(msg StartOverMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.Err = fmt.Errorf("start over: %w", msg.Err)
		return m, nil
	}
	m.gen++
	m.Snapshot = session.Snapshot{}
	m.Catalogs = nil
	m.CatalogsErr = nil
	m = m.setNotice("Session cleared. Starting over.")
	return m.goTo(msg.Route)
}
