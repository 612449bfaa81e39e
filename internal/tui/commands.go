package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/maauso/adwizard/internal/session"
	"github.com/maauso/adwizard/internal/steps"
)

// RefreshInterval is how often the session store is re-read.
const RefreshInterval = 2 * time.Second

// loadSnapshot reads the session store on behalf of generation gen.
func loadSnapshot(ctx context.Context, sess *session.Session, gen int) tea.Cmd {
	return func() tea.Msg {
		snap, err := sess.Snapshot(ctx)
		return SnapshotMsg{Snapshot: snap, Gen: gen, Err: err}
	}
}

// loadCatalogs mounts a short-lived avatar screen to fetch both catalogs.
func loadCatalogs(ctx context.Context, deps steps.Deps) tea.Cmd {
	return func() tea.Msg {
		screen, err := steps.NewAvatarScreen(ctx, deps)
		if err != nil {
			return CatalogsMsg{Err: err}
		}
		defer screen.Close()
		err = screen.LoadCatalogs(ctx)
		return CatalogsMsg{Catalogs: screen.Catalogs(), Err: err}
	}
}

// startOver clears every session record.
func startOver(ctx context.Context, sess *session.Session) tea.Cmd {
	return func() tea.Msg {
		route, err := steps.StartOver(ctx, sess)
		return StartOverMsg{Route: route, Err: err}
	}
}

// tickCmd schedules the next store refresh.
func tickCmd() tea.Cmd {
	return tea.Tick(RefreshInterval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}
