package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/maauso/adwizard/internal/steps"
)

func addImageOptionFlags(cmd *cobra.Command, opts *steps.ImageOptions) {
	cmd.Flags().StringVar(&opts.Style, "style", steps.ImageStyles.Default(), "Image style")
	cmd.Flags().StringVar(&opts.Tone, "tone", steps.ImageTones.Default(), "Image tone")
	cmd.Flags().StringVar(&opts.Size, "size", steps.ImageSizes.Default(), "Image size")
}

func newImageCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "image",
		Short: "Draft an image prompt and render the ad image (step 3)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newImagePromptCommand(ctx))
	cmd.AddCommand(newImageRenderCommand(ctx))
	return cmd
}

func newImagePromptCommand(ctx *commandContext) *cobra.Command {
	var opts steps.ImageOptions

	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Print the suggested image prompt without rendering",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := ctx.dependencies(cmd)
			if err != nil {
				return err
			}
			screen, err := steps.NewImageScreen(cmd.Context(), deps.Steps())
			if err != nil {
				return err
			}
			defer screen.Close()

			draft, err := screen.DraftPrompt(opts)
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, draft)
			}
			fmt.Fprintln(cmd.OutOrStdout(), draft.Prompt)
			return nil
		},
	}
	addImageOptionFlags(cmd, &opts)
	return cmd
}

func newImageRenderCommand(ctx *commandContext) *cobra.Command {
	var (
		opts       steps.RenderOptions
		prompt     string
		promptFile string
		edit       bool
		direct     bool
		save       bool
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the ad image from the drafted or given prompt",
		Long: "Render the ad image. Without --prompt or --prompt-file the suggested prompt\n" +
			"is used; --edit opens it in $VISUAL or $EDITOR first.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if prompt != "" && promptFile != "" {
				return errors.New("--prompt and --prompt-file are mutually exclusive")
			}
			deps, err := ctx.dependencies(cmd)
			if err != nil {
				return err
			}
			screen, err := steps.NewImageScreen(cmd.Context(), deps.Steps())
			if err != nil {
				return err
			}
			defer screen.Close()

			text := prompt
			if promptFile != "" {
				data, err := os.ReadFile(promptFile)
				if err != nil {
					return fmt.Errorf("read prompt file: %w", err)
				}
				text = string(data)
			}
			if strings.TrimSpace(text) == "" {
				draft, err := screen.DraftPrompt(opts.ImageOptions)
				if err != nil {
					return err
				}
				text = draft.Prompt
			}
			if edit {
				text, err = editText(cmd.Context(), text, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
				if err != nil {
					return err
				}
			}

			if direct {
				opts.Mode = steps.RenderDirect
			}
			rec, err := screen.Render(cmd.Context(), text, opts)
			if err != nil {
				return err
			}

			var (
				saved   string
				saveErr error
			)
			if save {
				saved, saveErr = saveArtifact(cmd, deps, steps.ArtifactImage)
			}
			// Reported after the result so the generation output comes first.
			defer warnSaveFailed(cmd, steps.ArtifactImage, saveErr)

			if ctx.jsonOutput() {
				return writeJSON(cmd, struct {
					OptimizedPrompt string `json:"optimized_prompt"`
					ImageData       string `json:"image_data"`
					SavedTo         string `json:"saved_to,omitempty"`
				}{rec.OptimizedPrompt, rec.ImageData, saved})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Image generated successfully!")
			fmt.Fprintf(out, "Prompt: %s\n", rec.OptimizedPrompt)
			if strings.HasPrefix(rec.ImageData, "data:") {
				fmt.Fprintf(out, "Image: inline data (%d bytes encoded)\n", len(rec.ImageData))
			} else {
				fmt.Fprintf(out, "Image: %s\n", rec.ImageData)
			}
			if saved != "" {
				fmt.Fprintf(out, "Saved to %s\n", saved)
			}
			fmt.Fprintln(out, "Next: adwizard voice")
			return nil
		},
	}

	addImageOptionFlags(cmd, &opts.ImageOptions)
	flags := cmd.Flags()
	flags.StringVar(&opts.Quality, "quality", steps.DefaultImageQuality, "Render quality (standard or hd)")
	flags.StringVar(&prompt, "prompt", "", "Image prompt to send instead of the suggestion")
	flags.StringVar(&promptFile, "prompt-file", "", "Read the image prompt from a file")
	flags.BoolVar(&edit, "edit", false, "Edit the prompt in $VISUAL or $EDITOR before rendering")
	flags.BoolVar(&direct, "direct", false, "Send the prompt to the image endpoint without optimization")
	flags.BoolVar(&save, "save", false, "Save the rendered image to the output directory")
	return cmd
}
