package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	readyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	segmentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	// freshSegmentStyle marks the most recently appended segment. The
	// emphasis is time limited in the view, not a persisted attribute.
	freshSegmentStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("229")).
				Bold(true)

	speakerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("117"))

	logInfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))

	logWarnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	logErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	linkStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Underline(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1)
)
