package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maauso/adwizard/internal/steps"
)

func newVoiceCommand(ctx *commandContext) *cobra.Command {
	var (
		voice  string
		custom string
		save   bool
	)

	cmd := &cobra.Command{
		Use:   "voice",
		Short: "Synthesize the voiceover for the script (step 4)",
		Long: "Synthesize the voiceover. --voice takes a preset ID (see `adwizard voice presets`),\n" +
			"any other voice ID, or \"custom\" together with --custom-voice.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			voiceID, err := steps.ResolveVoiceID(voice, custom)
			if err != nil {
				return err
			}
			deps, err := ctx.dependencies(cmd)
			if err != nil {
				return err
			}
			screen, err := steps.NewVoiceScreen(cmd.Context(), deps.Steps())
			if err != nil {
				return err
			}
			defer screen.Close()

			rec, err := screen.Synthesize(cmd.Context(), voiceID)
			if err != nil {
				return err
			}

			var (
				saved   string
				saveErr error
			)
			if save {
				saved, saveErr = saveArtifact(cmd, deps, steps.ArtifactVoice)
			}
			// Reported after the result so the generation output comes first.
			defer warnSaveFailed(cmd, steps.ArtifactVoice, saveErr)

			if ctx.jsonOutput() {
				return writeJSON(cmd, struct {
					VoiceText   string `json:"voice_text"`
					AudioBase64 string `json:"audio_base64"`
					SavedTo     string `json:"saved_to,omitempty"`
				}{rec.VoiceText, rec.AudioBase64, saved})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Voice generated successfully!")
			fmt.Fprintln(out, renderSectionHeader("Voice Text", shouldColorize(out)))
			fmt.Fprintln(out, rec.VoiceText)
			if saved != "" {
				fmt.Fprintf(out, "Audio saved to %s\n", saved)
			} else {
				fmt.Fprintln(out, "Audio kept in the session; save it with `adwizard export --only voice`.")
			}
			fmt.Fprintln(out, "Next: adwizard avatar")
			return nil
		},
	}

	cmd.Flags().StringVar(&voice, "voice", steps.VoicePresets.Default(), "Voice preset ID, any voice ID, or \"custom\"")
	cmd.Flags().StringVar(&custom, "custom-voice", "", "Custom voice ID used with --voice custom")
	cmd.Flags().BoolVar(&save, "save", false, "Save the audio to the output directory")
	cmd.AddCommand(newVoicePresetsCommand(ctx))
	return cmd
}

func newVoicePresetsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "presets",
		Short:       "List the built-in voice presets",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if ctx.jsonOutput() {
				return writeJSON(cmd, steps.VoicePresets)
			}
			rows := make([][]string, 0, len(steps.VoicePresets))
			for _, p := range steps.VoicePresets {
				rows = append(rows, []string{p.Label, p.Value, p.Description})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Name", "Voice ID", "Description"}, rows, nil))
			return nil
		},
	}
}
