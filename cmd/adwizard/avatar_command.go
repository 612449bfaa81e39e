package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maauso/adwizard/internal/api"
	"github.com/maauso/adwizard/internal/steps"
)

func newAvatarCommand(ctx *commandContext) *cobra.Command {
	var (
		form steps.AvatarForm
		save bool
	)

	cmd := &cobra.Command{
		Use:   "avatar",
		Short: "Generate the talking-avatar video (step 5)",
		Long: "Generate the avatar video from the voice text, or the script when no voice\n" +
			"was generated. Without --avatar or --voice the first catalog entry is used;\n" +
			"list them with `adwizard avatar avatars` and `adwizard avatar voices`.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := ctx.dependencies(cmd)
			if err != nil {
				return err
			}
			screen, err := steps.NewAvatarScreen(cmd.Context(), deps.Steps())
			if err != nil {
				return err
			}
			defer screen.Close()

			if err := screen.Ready(); err != nil {
				return err
			}
			if form.AvatarID == "" || form.VoiceID == "" {
				if err := screen.LoadCatalogs(cmd.Context()); err != nil {
					return err
				}
				c := screen.Catalogs()
				if c.AvatarsHint != "" && form.AvatarID == "" {
					return errors.New(c.AvatarsHint)
				}
				if c.VoicesHint != "" && form.VoiceID == "" {
					return errors.New(c.VoicesHint)
				}
			}

			attempt, err := screen.Generate(cmd.Context(), form)
			if err != nil {
				return err
			}

			var (
				saved   string
				saveErr error
			)
			if save && attempt.Status == steps.AttemptCompleted {
				saved, saveErr = saveArtifact(cmd, deps, steps.ArtifactVideo)
			}
			// Reported after the result so the generation output comes first.
			defer warnSaveFailed(cmd, steps.ArtifactVideo, saveErr)

			if ctx.jsonOutput() {
				return writeJSON(cmd, struct {
					Status   string `json:"status"`
					Message  string `json:"message"`
					VideoURL string `json:"video_url,omitempty"`
					SavedTo  string `json:"saved_to,omitempty"`
				}{attempt.BackendStatus, attempt.Message, attempt.VideoURL, saved})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, attempt.Message)
			if attempt.VideoURL != "" {
				fmt.Fprintf(out, "Video: %s\n", attempt.VideoURL)
			}
			if saved != "" {
				fmt.Fprintf(out, "Saved to %s\n", saved)
			}
			if attempt.Status == steps.AttemptCompleted {
				fmt.Fprintln(out, "Next: adwizard summary")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&form.AvatarID, "avatar", "", "Avatar ID")
	cmd.Flags().StringVar(&form.VoiceID, "voice", "", "Avatar voice ID")
	cmd.Flags().BoolVar(&save, "save", false, "Download the finished video to the output directory")
	cmd.AddCommand(newAvatarListCommand(ctx, "avatars"))
	cmd.AddCommand(newAvatarListCommand(ctx, "voices"))
	return cmd
}

// newAvatarListCommand lists one of the avatar catalogs.
func newAvatarListCommand(ctx *commandContext, which string) *cobra.Command {
	return &cobra.Command{
		Use:   which,
		Short: "List the available avatar " + which,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := ctx.dependencies(cmd)
			if err != nil {
				return err
			}
			screen, err := steps.NewAvatarScreen(cmd.Context(), deps.Steps())
			if err != nil {
				return err
			}
			defer screen.Close()

			var (
				rows [][]string
				list any
				hint string
			)
			if which == "avatars" {
				var avatars []api.AvatarOption
				if avatars, err = screen.LoadAvatars(cmd.Context()); err != nil {
					return err
				}
				for _, a := range avatars {
					rows = append(rows, []string{a.Label(), a.ID})
				}
				list, hint = avatars, screen.Catalogs().AvatarsHint
			} else {
				var voices []api.VoiceOption
				if voices, err = screen.LoadVoices(cmd.Context()); err != nil {
					return err
				}
				for _, v := range voices {
					rows = append(rows, []string{v.Label(), v.ID})
				}
				list, hint = voices, screen.Catalogs().VoicesHint
			}

			if ctx.jsonOutput() {
				return writeJSON(cmd, list)
			}
			if hint != "" {
				fmt.Fprintln(cmd.OutOrStdout(), hint)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Name", "ID"}, rows, nil))
			return nil
		},
	}
}
