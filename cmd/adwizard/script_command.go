package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maauso/adwizard/internal/steps"
)

func newScriptCommand(ctx *commandContext) *cobra.Command {
	var form steps.ScriptForm

	cmd := &cobra.Command{
		Use:   "script",
		Short: "Generate the ad script (step 2)",
		Long: "Generate the ad script from the uploaded product, or from an attached image\n" +
			"or video. Pass \"custom\" to --format, --strategy or --style together with the\n" +
			"matching --custom-* flag to send free text. See `adwizard options` for presets.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := ctx.dependencies(cmd)
			if err != nil {
				return err
			}
			screen, err := steps.NewScriptScreen(cmd.Context(), deps.Steps())
			if err != nil {
				return err
			}
			defer screen.Close()

			rec, err := screen.Generate(cmd.Context(), form)
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, rec)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderSectionHeader("Generated Script", shouldColorize(out)))
			fmt.Fprintln(out, rec.Script)
			if rec.ImageCaption != "" {
				fmt.Fprintf(out, "\nImage caption: %s\n", rec.ImageCaption)
			}
			if rec.VideoCaption != "" {
				fmt.Fprintf(out, "Video caption: %s\n", rec.VideoCaption)
			}
			fmt.Fprintln(out, "\nNext: adwizard image render, or adwizard voice")
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&form.Prompt, "prompt", "", "Extra instructions for the script writer")
	flags.StringVar(&form.ImagePath, "image", "", "Image file to describe")
	flags.StringVar(&form.VideoPath, "video", "", "Video file to describe")
	flags.StringVar(&form.Format, "format", steps.ScriptFormats.Default(), "Ad format preset or \"custom\"")
	flags.StringVar(&form.CustomFormat, "custom-format", "", "Custom ad format text")
	flags.StringVar(&form.Strategy, "strategy", steps.CreativeStrategies.Default(), "Creative strategy preset or \"custom\"")
	flags.StringVar(&form.CustomStrategy, "custom-strategy", "", "Custom creative strategy text")
	flags.StringVar(&form.Style, "style", steps.ExecutionStyles.Default(), "Execution style preset or \"custom\"")
	flags.StringVar(&form.CustomStyle, "custom-style", "", "Custom execution style text")
	return cmd
}
