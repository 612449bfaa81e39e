// Package tui is the interactive wizard navigator. It shows the progress
// bar, lets the user move between unlocked steps and previews what each
// step has produced. The actions themselves run through the CLI.
package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/maauso/adwizard/internal/session"
	"github.com/maauso/adwizard/internal/steps"
	"github.com/maauso/adwizard/internal/wizard"
)

// NoticeDuration is how long a transient notice stays visible.
const NoticeDuration = steps.SuccessNoticeDuration

// Model is the navigator state.
type Model struct {
	ctx  context.Context
	deps steps.Deps

	// Route is the active step route. Empty until the first snapshot
	// arrives, then it resumes where the session left off.
	Route    string
	Snapshot session.Snapshot
	Loaded   bool
	Err      error

	// ConfirmingReset is set while the start over prompt is shown.
	ConfirmingReset bool

	Notice   string
	noticeAt time.Time

	// gen is bumped by start over so in-flight reads of the old session
	// are ignored.
	gen int

	Catalogs        *steps.Catalogs
	CatalogsLoading bool
	CatalogsErr     error

	Width int
}

// NewModel creates a navigator over deps. route may be empty to resume
// from the stored session.
func NewModel(ctx context.Context, deps steps.Deps, route string) Model {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if route != "" {
		if info, ok := wizard.ByRoute(route); ok {
			route = info.Route
		} else {
			route = ""
		}
	}
	return Model{ctx: ctx, deps: deps, Route: route}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(loadSnapshot(m.ctx, m.deps.Session, m.gen), tickCmd())
}

// Progress returns the progress bar for the active route.
func (m Model) Progress() wizard.Progress {
	return wizard.NewProgress(m.Route, m.Snapshot)
}

// Step returns the active step.
func (m Model) Step() wizard.StepInfo {
	if info, ok := wizard.ByRoute(m.Route); ok {
		return info
	}
	return wizard.First()
}

// CanContinue reports whether the active step's record exists. The image
// step may be skipped, so it always allows moving on.
func (m Model) CanContinue() bool {
	step := m.Step().Step
	if step == wizard.StepImage {
		return m.Snapshot.Has(session.KeyScript)
	}
	return wizard.Completed(step, m.Snapshot)
}

func (m Model) setNotice(text string) Model {
	m.Notice = text
	m.noticeAt = m.deps.Now()
	return m
}

// NoticeVisible reports whether the notice is still up at now.
func (m Model) NoticeVisible(now time.Time) bool {
	return m.Notice != "" && now.Sub(m.noticeAt) < NoticeDuration
}
