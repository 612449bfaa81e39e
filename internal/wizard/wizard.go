// Package wizard describes the fixed ordering of the ad generation steps
// and computes the progress shown to the user.
//
// Two notions of "done" exist and are kept apart on purpose:
//   - Unlocked is position based: every step at or before the active route
//     may be navigated to. The progress bar uses it.
//   - Completed is data based: the step's session record exists. The
//     summary badges and the continue gates use it.
package wizard

import (
	"math"
	"strings"

	"github.com/maauso/adwizard/internal/session"
)

// Step identifies one wizard screen.
type Step int

// Wizard steps in route order.
const (
	StepProduct Step = iota
	StepScript
	StepImage
	StepVoice
	StepAvatar
	StepSummary
)

// StepInfo is the static description of a step.
type StepInfo struct {
	Step      Step
	Route     string
	Name      string
	ShortName string
	Icon      string
	// Command is the adwizard subcommand that runs the step.
	Command string
	// Key is the session record the step produces; empty for the summary.
	Key session.Key
}

var steps = []StepInfo{
	{Step: StepProduct, Route: "/product-upload", Name: "Product Upload", ShortName: "Product", Icon: "📦", Command: "product", Key: session.KeyProduct},
	{Step: StepScript, Route: "/script", Name: "Script Generation", ShortName: "Script", Icon: "📝", Command: "script", Key: session.KeyScript},
	{Step: StepImage, Route: "/image", Name: "Image Generation", ShortName: "Image", Icon: "🖼️", Command: "image render", Key: session.KeyImage},
	{Step: StepVoice, Route: "/voice", Name: "Voice Generation", ShortName: "Voice", Icon: "🎤", Command: "voice", Key: session.KeyVoice},
	{Step: StepAvatar, Route: "/avatar", Name: "Video Generation", ShortName: "Video", Icon: "🎬", Command: "avatar", Key: session.KeyAvatarVideo},
	{Step: StepSummary, Route: "/workflow", Name: "Summary", ShortName: "Summary", Icon: "📊", Command: "summary"},
}

// Steps returns the step catalogue in route order.
func Steps() []StepInfo {
	out := make([]StepInfo, len(steps))
	copy(out, steps)
	return out
}

// Info returns the description of s.
func (s Step) Info() StepInfo {
	if s < 0 || int(s) >= len(steps) {
		return StepInfo{Step: s}
	}
	return steps[s]
}

// String returns the step's display name.
func (s Step) String() string {
	return s.Info().Name
}

// First is where a fresh or reset session starts.
func First() StepInfo {
	return steps[0]
}

// Index returns the position of route in the catalogue, or -1.
func Index(route string) int {
	route = "/" + strings.Trim(strings.TrimSpace(route), "/")
	for i, st := range steps {
		if st.Route == route {
			return i
		}
	}
	return -1
}

// ByRoute looks up a step by its route ("/script" or "script").
func ByRoute(route string) (StepInfo, bool) {
	i := Index(route)
	if i < 0 {
		return StepInfo{}, false
	}
	return steps[i], true
}

// Unlocked reports whether the step at index may be navigated to while
// current is the active route index.
func Unlocked(index, current int) bool {
	return index <= current
}

// Completed reports whether step's record is present in snap.
func Completed(step Step, snap session.Snapshot) bool {
	key := step.Info().Key
	if key == "" {
		return false
	}
	return snap.Has(key)
}

// Percent returns the progress percentage for the active route index.
func Percent(current int) int {
	return int(math.Round(float64(current+1) / float64(len(steps)) * 100))
}

// Prerequisites lists the records that must exist before step's primary
// action may run. The script step has a weaker gate (session ID or an
// attached file) enforced by its controller.
func Prerequisites(step Step) []session.Key {
	switch step {
	case StepImage, StepVoice, StepAvatar:
		return []session.Key{session.KeyScript}
	default:
		return nil
	}
}

// Missing returns the prerequisites of step absent from snap.
func Missing(step Step, snap session.Snapshot) []session.Key {
	var out []session.Key
	for _, k := range Prerequisites(step) {
		if !snap.Has(k) {
			out = append(out, k)
		}
	}
	return out
}

// Next returns the step after s, or false on the last one.
func Next(s Step) (StepInfo, bool) {
	if int(s)+1 >= len(steps) || s < 0 {
		return StepInfo{}, false
	}
	return steps[s+1], true
}

// Resume returns the step after the furthest one with a record, so a
// skipped image does not hold the user back. A fresh session resumes at
// First.
func Resume(snap session.Snapshot) StepInfo {
	next := 0
	for i, st := range steps {
		if Completed(st.Step, snap) {
			next = i + 1
		}
	}
	if next >= len(steps) {
		next = len(steps) - 1
	}
	return steps[next]
}

// StepState is one rendered position of the progress bar.
type StepState struct {
	StepInfo
	Index int
	// Active is the current route.
	Active bool
	// Unlocked is the route-position notion (clickable).
	Unlocked bool
	// Passed is the route-position notion of done (shown with a check).
	Passed bool
	// IsNext is the step right after the active one.
	IsNext bool
	// Completed is the data-presence notion of done.
	Completed bool
}

// Progress is the navigator view for the active route.
type Progress struct {
	Current int
	States  []StepState
}

// NewProgress computes the progress bar for route against snap.
func NewProgress(route string, snap session.Snapshot) Progress {
	current := Index(route)
	p := Progress{Current: current, States: make([]StepState, len(steps))}
	for i, st := range steps {
		p.States[i] = StepState{
			StepInfo:  st,
			Index:     i,
			Active:    i == current,
			Unlocked:  Unlocked(i, current),
			Passed:    i < current,
			IsNext:    i == current+1,
			Completed: Completed(st.Step, snap),
		}
	}
	return p
}

// Label is the "Current Step: <name>" line. Unknown routes read as
// getting started on the first step.
func (p Progress) Label() string {
	if p.Current < 0 {
		return "Getting Started: " + steps[0].Name
	}
	return "Current Step: " + steps[p.Current].Name
}

// Percent returns the completion percentage of the active route.
func (p Progress) Percent() int {
	return Percent(p.Current)
}

// Position is the 1-based step number and total, e.g. (2, 6).
func (p Progress) Position() (int, int) {
	return p.Current + 1, len(steps)
}
