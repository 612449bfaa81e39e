package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/maauso/adwizard/internal/bootstrap"
	"github.com/maauso/adwizard/internal/session"
	"github.com/maauso/adwizard/internal/steps"
	"github.com/maauso/adwizard/internal/storage"
	"github.com/maauso/adwizard/internal/wizard"
)

func newSummaryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show everything generated so far (step 6)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := ctx.dependencies(cmd)
			if err != nil {
				return err
			}
			screen, err := steps.NewSummaryScreen(cmd.Context(), deps.Steps())
			if err != nil {
				return err
			}
			defer screen.Close()

			sum := screen.Summary()
			if ctx.jsonOutput() {
				return writeJSON(cmd, summaryJSON(sum))
			}
			renderSummary(cmd.OutOrStdout(), sum, shouldColorize(cmd.OutOrStdout()))
			return nil
		},
	}
}

type summaryStepJSON struct {
	Route     string `json:"route"`
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
}

type summaryOutput struct {
	SessionID   string               `json:"session_id,omitempty"`
	Steps       []summaryStepJSON    `json:"steps"`
	Stats       map[string]int       `json:"stats"`
	Product     *session.Product     `json:"product,omitempty"`
	Script      *session.Script      `json:"script,omitempty"`
	Voice       *session.Voice       `json:"voice,omitempty"`
	Image       *session.Image       `json:"image,omitempty"`
	AvatarVideo *session.AvatarVideo `json:"avatar_video,omitempty"`
	Shortcuts   []steps.Shortcut     `json:"shortcuts"`
}

func summaryJSON(sum steps.Summary) summaryOutput {
	out := summaryOutput{
		SessionID:   sum.Snapshot.SessionID,
		Stats:       make(map[string]int, len(sum.Stats)),
		Product:     sum.Snapshot.Product,
		Script:      sum.Snapshot.Script,
		Voice:       sum.Snapshot.Voice,
		Image:       sum.Snapshot.Image,
		AvatarVideo: sum.Snapshot.AvatarVideo,
		Shortcuts:   steps.Shortcuts,
	}
	for _, st := range sum.Steps {
		out.Steps = append(out.Steps, summaryStepJSON{Route: st.Route, Name: st.ShortName, Completed: st.Completed})
	}
	for _, s := range sum.Stats {
		out.Stats[strings.ToLower(s.Label)] = s.Count
	}
	return out
}

func renderSummary(w io.Writer, sum steps.Summary, colorize bool) {
	snap := sum.Snapshot

	fmt.Fprintln(w, renderSectionHeader("Workflow Summary", colorize))
	if snap.SessionID != "" {
		fmt.Fprintf(w, "Session: %s\n", snap.SessionID)
	}
	for _, st := range sum.Steps {
		kind, msg := statusWarn, "not started"
		if st.Completed {
			kind, msg = statusOK, ""
		}
		fmt.Fprintln(w, renderStatusLine(st.ShortName, kind, msg, colorize))
	}
	fmt.Fprintln(w)

	statRows := make([][]string, 0, len(sum.Stats))
	for _, s := range sum.Stats {
		statRows = append(statRows, []string{s.Label, strconv.Itoa(s.Count)})
	}
	fmt.Fprintln(w, renderTable([]string{"Quick Stats", "Count"}, statRows, []columnAlignment{alignLeft, alignRight}))

	if p := snap.Product; p != nil {
		fmt.Fprintln(w, renderSectionHeader("Product", colorize))
		rows := [][]string{{"Name", p.Name()}}
		if d := p.Description(); d != "" {
			rows = append(rows, []string{"Description", truncate(d, 70)})
		}
		var images []string
		for _, img := range p.Assets.Images {
			images = append(images, steps.AssetDisplayName(steps.AssetImage, img))
		}
		if len(images) > 0 {
			rows = append(rows, []string{"Images", strings.Join(images, ", ")})
		}
		if p.Assets.Video != "" {
			rows = append(rows, []string{"Video", steps.AssetDisplayName(steps.AssetVideo, p.Assets.Video)})
		}
		if p.Assets.Voice != "" {
			rows = append(rows, []string{"Voice", steps.AssetDisplayName(steps.AssetVoice, p.Assets.Voice)})
		}
		fmt.Fprintln(w, renderTable([]string{"Field", "Value"}, rows, nil))
	}
	if s := snap.Script; s != nil {
		fmt.Fprintln(w, renderSectionHeader("Script", colorize))
		fmt.Fprintln(w, s.Script)
		fmt.Fprintln(w)
	}
	if v := snap.Voice; v != nil {
		fmt.Fprintln(w, renderSectionHeader("Voice", colorize))
		fmt.Fprintln(w, v.VoiceText)
		fmt.Fprintf(w, "Audio: %s\n\n", yesNo(v.AudioBase64 != ""))
	}
	if img := snap.Image; img != nil {
		fmt.Fprintln(w, renderSectionHeader("Image", colorize))
		fmt.Fprintf(w, "Prompt: %s\n", img.OptimizedPrompt)
		if !strings.HasPrefix(img.ImageData, "data:") {
			fmt.Fprintf(w, "Image: %s\n", img.ImageData)
		}
		fmt.Fprintln(w)
	}
	if v := snap.AvatarVideo; v != nil {
		fmt.Fprintln(w, renderSectionHeader("Video", colorize))
		fmt.Fprintf(w, "Video: %s\n", v.VideoURL)
		fmt.Fprintf(w, "Avatar: %s  Voice: %s\n\n", v.AvatarID, v.VoiceID)
	}

	var hints []string
	for _, sc := range steps.Shortcuts {
		hints = append(hints, fmt.Sprintf("%s: adwizard %s", sc.Label, commandForRoute(sc.Route)))
	}
	hints = append(hints, "Start Over: adwizard reset")
	fmt.Fprintln(w, strings.Join(hints, " | "))
}

// commandForRoute maps a wizard route to the subcommand that runs it.
func commandForRoute(route string) string {
	info, ok := wizard.ByRoute(route)
	if !ok {
		return "status"
	}
	return info.Command
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show wizard progress and the next step",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := ctx.dependencies(cmd)
			if err != nil {
				return err
			}
			snap, err := deps.Session.Snapshot(cmd.Context())
			if err != nil {
				return err
			}
			route := wizard.Resume(snap).Route
			progress := wizard.NewProgress(route, snap)

			if ctx.jsonOutput() {
				pos, total := progress.Position()
				return writeJSON(cmd, struct {
					Label   string            `json:"label"`
					Percent int               `json:"percent"`
					Step    int               `json:"step"`
					Total   int               `json:"total"`
					Route   string            `json:"route"`
					Steps   []summaryStepJSON `json:"steps"`
				}{progress.Label(), progress.Percent(), pos, total, route, progressSteps(progress)})
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			pos, total := progress.Position()
			fmt.Fprintf(out, "%s (Step %d of %d, %d%% complete)\n", progress.Label(), pos, total, progress.Percent())
			fmt.Fprintln(out, progressBar(progress.Percent(), 30))
			for _, st := range progress.States {
				kind, msg := statusWarn, ""
				switch {
				case st.Completed:
					kind = statusOK
				case st.Active:
					kind, msg = statusInfo, "next: adwizard "+commandForRoute(st.Route)
					if missing := wizard.Missing(st.Step, snap); len(missing) > 0 {
						kind, msg = statusError, "needs a script first"
					}
				}
				fmt.Fprintln(out, renderStatusLine(st.ShortName, kind, msg, colorize))
			}
			return nil
		},
	}
}

func progressSteps(p wizard.Progress) []summaryStepJSON {
	out := make([]summaryStepJSON, 0, len(p.States))
	for _, st := range p.States {
		out = append(out, summaryStepJSON{Route: st.Route, Name: st.ShortName, Completed: st.Completed})
	}
	return out
}

func progressBar(percent, width int) string {
	filled := percent * width / 100
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}

func newResetCommand(ctx *commandContext) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "reset",
		Aliases: []string{"start-over"},
		Short:   "Start over: delete every stored step result",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				fmt.Fprint(cmd.OutOrStdout(), "Delete all wizard progress? [y/N] ")
				var answer string
				_, _ = fmt.Fscanln(cmd.InOrStdin(), &answer)
				if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
					fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
					return nil
				}
			}
			deps, err := ctx.dependencies(cmd)
			if err != nil {
				return err
			}
			screen, err := steps.NewSummaryScreen(cmd.Context(), deps.Steps())
			if err != nil {
				return err
			}
			defer screen.Close()

			route, err := screen.StartOver(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Session cleared. Start again with: adwizard %s\n", commandForRoute(route))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func newExportCommand(ctx *commandContext) *cobra.Command {
	var (
		upload bool
		only   []string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Save the generated voice, image and video to the output directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			which := make([]steps.Artifact, 0, len(only))
			for _, o := range only {
				a := steps.Artifact(strings.ToLower(strings.TrimSpace(o)))
				switch a {
				case steps.ArtifactVoice, steps.ArtifactImage, steps.ArtifactVideo:
					which = append(which, a)
				default:
					return fmt.Errorf("unknown artifact %q (choose voice, image or video)", o)
				}
			}

			deps, err := ctx.dependencies(cmd)
			if err != nil {
				return err
			}
			screen, err := steps.NewSummaryScreen(cmd.Context(), deps.Steps())
			if err != nil {
				return err
			}
			defer screen.Close()

			results, err := screen.Export(cmd.Context(), deps.Exporter, upload, which...)
			if errors.Is(err, steps.ErrNothingToExport) {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to export yet.")
				return nil
			}
			if ctx.jsonOutput() {
				if jerr := writeJSON(cmd, results); jerr != nil {
					return jerr
				}
				return err
			}

			rows := make([][]string, 0, len(results))
			for _, r := range results {
				rows = append(rows, []string{r.Name, r.MIME, strconv.Itoa(r.Size), r.Path, r.URL})
			}
			if len(rows) > 0 {
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"File", "Type", "Bytes", "Path", "URL"}, rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight},
				))
			}
			if errors.Is(err, storage.ErrS3NotConfigured) {
				return fmt.Errorf("%w: set S3_BUCKET and S3_REGION to upload", err)
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&upload, "upload", false, "Also upload each artifact to S3")
	cmd.Flags().StringSliceVar(&only, "only", nil, "Artifacts to export: voice, image, video (default all)")
	return cmd
}

// saveArtifact exports one freshly generated artifact for --save. The
// generation has already been persisted, so a failure here is a warning.
func saveArtifact(cmd *cobra.Command, deps *bootstrap.Dependencies, a steps.Artifact) (string, error) {
	summary, err := steps.NewSummaryScreen(cmd.Context(), deps.Steps())
	if err != nil {
		return "", err
	}
	defer summary.Close()

	results, err := summary.Export(cmd.Context(), deps.Exporter, false, a)
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return "", nil
	}
	return results[0].Path, nil
}

func warnSaveFailed(cmd *cobra.Command, a steps.Artifact, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Warning: could not save the %s: %v\n", a, err)
	fmt.Fprintf(cmd.ErrOrStderr(), "Retry with: adwizard export --only %s\n", a)
}
