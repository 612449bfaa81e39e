package main

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/maauso/adwizard/internal/tui"
	"github.com/maauso/adwizard/internal/wizard"
)

func newWizardCommand(ctx *commandContext) *cobra.Command {
	var stepFlag string

	cmd := &cobra.Command{
		Use:     "wizard",
		Aliases: []string{"ui"},
		Short:   "Browse the wizard steps interactively",
		Long: "Opens the step navigator. It resumes after the last finished step,\n" +
			"shows the progress bar and previews each step's result. Use the other\n" +
			"subcommands to run the steps; the navigator picks up their results.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			route, err := stepRoute(stepFlag)
			if err != nil {
				return err
			}
			deps, err := ctx.dependencies(cmd)
			if err != nil {
				return err
			}

			opts := []tea.ProgramOption{
				tea.WithContext(cmd.Context()),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
			}
			if shouldColorize(cmd.OutOrStdout()) {
				opts = append(opts, tea.WithAltScreen())
			}

			model := tui.NewModel(cmd.Context(), deps.Steps(), route)
			if _, err := tea.NewProgram(model, opts...).Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
				return fmt.Errorf("run wizard: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&stepFlag, "step", "", "Open at this step (route, name or 1-6) instead of resuming")
	return cmd
}

// stepRoute resolves a --step value to a route. Empty means resume.
func stepRoute(value string) (string, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return "", nil
	}
	for i, st := range wizard.Steps() {
		switch value {
		case st.Route, strings.TrimPrefix(st.Route, "/"), strings.ToLower(st.ShortName), st.Command, fmt.Sprint(i + 1):
			return st.Route, nil
		}
	}
	return "", fmt.Errorf("unknown step %q", value)
}
