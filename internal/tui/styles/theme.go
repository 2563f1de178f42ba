package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Header styles
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("13")).
			Padding(0, 1)

	// Status styles
	StatusFreeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")).
			Bold(true)

	StatusOwnedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("9")).
				Bold(true)

	// Footer styles
	HelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	TableStyle = lipgloss.NewStyle().
			BorderForeground(lipgloss.Color("8"))
)
