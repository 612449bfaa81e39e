package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maauso/adwizard/internal/steps"
)

func newProductCommand(ctx *commandContext) *cobra.Command {
	var form steps.ProductForm

	cmd := &cobra.Command{
		Use:   "product",
		Short: "Upload the product and its assets (step 1)",
		Example: "  adwizard product --name \"Widget X\" --description \"Cleans anything\" \\\n" +
			"    --image front.png --image side.png --video demo.mp4",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := ctx.dependencies(cmd)
			if err != nil {
				return err
			}
			screen, err := steps.NewProductScreen(cmd.Context(), deps.Steps())
			if err != nil {
				return err
			}
			defer screen.Close()

			rec, err := screen.Submit(cmd.Context(), form)
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, rec)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Product uploaded successfully!")
			fmt.Fprintf(out, "Session: %s\n", rec.SessionID)
			rows := [][]string{{"Name", rec.Name()}}
			if d := rec.Description(); d != "" {
				rows = append(rows, []string{"Description", d})
			}
			for _, img := range rec.Assets.Images {
				rows = append(rows, []string{"Image", steps.AssetDisplayName(steps.AssetImage, img)})
			}
			if rec.Assets.Video != "" {
				rows = append(rows, []string{"Video", steps.AssetDisplayName(steps.AssetVideo, rec.Assets.Video)})
			}
			if rec.Assets.Voice != "" {
				rows = append(rows, []string{"Voice", steps.AssetDisplayName(steps.AssetVoice, rec.Assets.Voice)})
			}
			fmt.Fprintln(out, renderTable([]string{"Field", "Value"}, rows, nil))
			fmt.Fprintln(out, "Next: adwizard script")
			return nil
		},
	}

	cmd.Flags().StringVar(&form.Name, "name", "", "Product name (required)")
	cmd.Flags().StringVar(&form.Description, "description", "", "Product description")
	cmd.Flags().StringArrayVar(&form.ImagePaths, "image", nil, "Product image file (repeatable)")
	cmd.Flags().StringVar(&form.VideoPath, "video", "", "Product video file")
	cmd.Flags().StringVar(&form.VoicePath, "voice", "", "Voice sample audio file")
	return cmd
}
