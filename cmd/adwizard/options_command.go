package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maauso/adwizard/internal/steps"
)

type optionGroup struct {
	Name    string        `json:"name"`
	Flag    string        `json:"flag"`
	Options steps.Options `json:"options"`
}

var optionGroups = []optionGroup{
	{Name: "Ad formats", Flag: "script --format", Options: steps.ScriptFormats},
	{Name: "Creative strategies", Flag: "script --strategy", Options: steps.CreativeStrategies},
	{Name: "Execution styles", Flag: "script --style", Options: steps.ExecutionStyles},
	{Name: "Image styles", Flag: "image --style", Options: steps.ImageStyles},
	{Name: "Image tones", Flag: "image --tone", Options: steps.ImageTones},
	{Name: "Image sizes", Flag: "image --size", Options: steps.ImageSizes},
	{Name: "Image qualities", Flag: "image render --quality", Options: steps.ImageQualities},
	{Name: "Voices", Flag: "voice --voice", Options: steps.VoicePresets},
}

func newOptionsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "options",
		Short:       "List the preset choices for every step",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if ctx.jsonOutput() {
				return writeJSON(cmd, optionGroups)
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, g := range optionGroups {
				fmt.Fprintln(out, renderSectionHeader(fmt.Sprintf("%s (%s)", g.Name, g.Flag), colorize))
				rows := make([][]string, 0, len(g.Options))
				for i, opt := range g.Options {
					value := opt.Value
					if i == 0 {
						value += " (default)"
					}
					rows = append(rows, []string{value, opt.Label, opt.Description})
				}
				fmt.Fprintln(out, renderTable([]string{"Value", "Label", "Description"}, rows, nil))
			}
			return nil
		},
	}
}
