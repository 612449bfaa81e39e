package tui

import (
	"time"

	"github.com/maauso/adwizard/internal/session"
	"github.com/maauso/adwizard/internal/steps"
)

// SnapshotMsg carries a fresh read of the session store. Gen is the
// model generation the read was issued in; reads from before a start over
// are dropped.
type SnapshotMsg struct {
	Snapshot session.Snapshot
	Gen      int
	Err      error
}

// CatalogsMsg is sent when the avatar and voice catalogs were fetched.
type CatalogsMsg struct {
	Catalogs steps.Catalogs
	Err      error
}

// StartOverMsg is sent once the session has been cleared.
type StartOverMsg struct {
	Route string
	Err   error
}

// TickMsg triggers a periodic reload so results written by the CLI in
// another terminal show up.
type TickMsg struct {
	Time time.Time
}
