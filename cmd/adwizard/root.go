package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var envFileFlag string
	var jsonFlag bool

	ctx := newCommandContext(&envFileFlag, &jsonFlag)

	rootCmd := &cobra.Command{
		Use:   "adwizard",
		Short: "Generate an ad step by step: product, script, image, voice, avatar video",
		Long: "adwizard walks through the ad generation wizard against the backend API.\n" +
			"Each step's result is kept in a session file, so steps can be run one at a\n" +
			"time and revisited. Run `adwizard status` to see where you are.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&envFileFlag, "env-file", defaultEnvFile, "Dotenv file read before the environment (missing files are ignored)")
	rootCmd.PersistentFlags().BoolVar(&jsonFlag, "json", false, "Print results as JSON")

	rootCmd.AddCommand(newProductCommand(ctx))
	rootCmd.AddCommand(newScriptCommand(ctx))
	rootCmd.AddCommand(newImageCommand(ctx))
	rootCmd.AddCommand(newVoiceCommand(ctx))
	rootCmd.AddCommand(newAvatarCommand(ctx))
	rootCmd.AddCommand(newSummaryCommand(ctx))
	rootCmd.AddCommand(newStatusCommand(ctx))
	rootCmd.AddCommand(newResetCommand(ctx))
	rootCmd.AddCommand(newExportCommand(ctx))
	rootCmd.AddCommand(newWizardCommand(ctx))
	rootCmd.AddCommand(newOptionsCommand(ctx))

	return rootCmd
}
