package steps

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/maauso/adwizard/internal/session"
	"github.com/maauso/adwizard/internal/storage"
	"github.com/maauso/adwizard/internal/wizard"
)

// StepStatus is one summary badge.
type StepStatus struct {
	wizard.StepInfo
	Completed bool
}

// Stat is one quick-stats counter.
type Stat struct {
	Label string
	Count int
}

// Shortcut routes back to an earlier step for editing.
type Shortcut struct {
	Label string
	Route string
}

// Shortcuts are the summary's edit actions.
var Shortcuts = []Shortcut{
	{Label: "Edit Product", Route: wizard.StepProduct.Info().Route},
	{Label: "Edit Script", Route: wizard.StepScript.Info().Route},
}

// Summary is the data behind the summary screen.
type Summary struct {
	Steps    []StepStatus
	Stats    []Stat
	Snapshot session.Snapshot
}

// summaryOrder is the badge order of the summary, which lists voice
// before image unlike the navigator.
var summaryOrder = []wizard.Step{
	wizard.StepProduct,
	wizard.StepScript,
	wizard.StepVoice,
	wizard.StepImage,
	wizard.StepAvatar,
}

var statLabels = map[wizard.Step]string{
	wizard.StepProduct: "Products",
	wizard.StepScript:  "Scripts",
	wizard.StepVoice:   "Voiceovers",
	wizard.StepImage:   "Images",
	wizard.StepAvatar:  "Videos",
}

// NewSummary builds the summary from snap. Completion is data based.
func NewSummary(snap session.Snapshot) Summary {
	sum := Summary{Snapshot: snap}
	for _, step := range summaryOrder {
		done := wizard.Completed(step, snap)
		sum.Steps = append(sum.Steps, StepStatus{StepInfo: step.Info(), Completed: done})

		count := 0
		if done {
			count = 1
		}
		sum.Stats = append(sum.Stats, Stat{Label: statLabels[step], Count: count})
	}
	return sum
}

// AssetKind identifies an uploaded product asset.
type AssetKind int

// Product asset kinds.
const (
	AssetImage AssetKind = iota
	AssetVideo
	AssetVoice
)

// AssetDisplayName strips the backend's "<session>_<kind>_" prefix (plus
// the index for images) from a stored asset filename.
func AssetDisplayName(kind AssetKind, stored string) string {
	skip := 2
	if kind == AssetImage {
		skip = 3
	}
	parts := strings.Split(stored, "_")
	if len(parts) <= skip {
		return stored
	}
	return strings.Join(parts[skip:], "_")
}

// StartOver deletes every session record and returns the first route.
func StartOver(ctx context.Context, sess *session.Session) (string, error) {
	if err := sess.Clear(ctx); err != nil {
		return "", err
	}
	return wizard.First().Route, nil
}

// ArtifactExporter saves a generated artifact. storage.Exporter
// implements it.
type ArtifactExporter interface {
	Export(ctx context.Context, base, src string, upload bool) (*storage.ExportResult, error)
}

// Artifact names a generated artifact of the session.
type Artifact string

// Exportable artifacts.
const (
	ArtifactVoice Artifact = "voice"
	ArtifactImage Artifact = "image"
	ArtifactVideo Artifact = "video"
)

// AllArtifacts lists every exportable artifact.
var AllArtifacts = []Artifact{ArtifactVoice, ArtifactImage, ArtifactVideo}

// ErrNothingToExport is returned when none of the requested artifacts exist.
var ErrNothingToExport = errors.New("steps: nothing to export")

// SummaryScreen shows the session overview and offers start over and export.
type SummaryScreen struct {
	*screen
}

// NewSummaryScreen mounts the summary screen. It makes no backend calls, so
// deps.Client may be nil.
func NewSummaryScreen(ctx context.Context, deps Deps) (*SummaryScreen, error) {
	s, err := mountLocal(ctx, "summary", deps)
	if err != nil {
		return nil, err
	}
	return &SummaryScreen{screen: s}, nil
}

// Summary returns the overview of the snapshot read at mount.
func (s *SummaryScreen) Summary() Summary {
	return NewSummary(s.Snapshot())
}

// StartOver clears the session and returns the route to go to.
func (s *SummaryScreen) StartOver(ctx context.Context) (string, error) {
	route, err := StartOver(ctx, s.session)
	if err != nil {
		return "", s.fail(err)
	}
	s.mu.Lock()
	s.snap = session.Snapshot{}
	s.mu.Unlock()
	return route, nil
}

// Export saves the requested artifacts that exist in the session. Missing
// ones are skipped. When upload is set each one is also pushed to S3.
func (s *SummaryScreen) Export(ctx context.Context, exp ArtifactExporter, upload bool, which ...Artifact) ([]storage.ExportResult, error) {
	if len(which) == 0 {
		which = AllArtifacts
	}
	snap := s.Snapshot()
	id := snap.SessionID
	if id == "" {
		id = "session"
	}

	o, err := s.begin(ctx, nil)
	if err != nil {
		return nil, err
	}

	var (
		results []storage.ExportResult
		errs    []error
	)
	for _, a := range which {
		src := artifactSource(snap, a)
		if src == "" {
			continue
		}
		res, err := exp.Export(o.ctx, fmt.Sprintf("%s-%s", a, id), src, upload)
		if res != nil {
			results = append(results, *res)
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	if len(results) == 0 && len(errs) == 0 {
		return nil, o.end(ErrNothingToExport)
	}
	return results, o.end(errors.Join(errs...))
}

func artifactSource(snap session.Snapshot, a Artifact) string {
	switch a {
	case ArtifactVoice:
		return snap.Voice.AudioDataURI()
	case ArtifactImage:
		if snap.Image != nil {
			return snap.Image.ImageData
		}
	case ArtifactVideo:
		if snap.AvatarVideo != nil {
			return snap.AvatarVideo.VideoURL
		}
	}
	return ""
}
