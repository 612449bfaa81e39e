package tui

import "github.com/charmbracelet/lipgloss"

// Color palette
const (
	colorPrimary   = "#7D56F4"
	colorSuccess   = "#04B575"
	colorError     = "#FF5F56"
	colorWarn      = "#F5A623"
	colorInfo      = "#626262"
	colorHighlight = "#FAFAFA"
	colorBorder    = "#874BFD"
)

// Styles for the navigator.
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(colorPrimary)).
			MarginBottom(1)

	ActiveStepStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(colorHighlight)).
			Background(lipgloss.Color(colorPrimary)).
			Padding(0, 1)

	DoneStepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorSuccess)).
			Padding(0, 1)

	OpenStepStyle = lipgloss.NewStyle().
			Padding(0, 1)

	LockedStepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorInfo)).
			Padding(0, 1)

	BarFilledStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorPrimary))

	BarEmptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorInfo))

	StatusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorSuccess))

	WarnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorWarn))

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorError))

	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorInfo))

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(colorBorder)).
			Padding(0, 1)
)
