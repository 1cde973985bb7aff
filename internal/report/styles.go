// Package report renders calculations, records and the Hawl countdown for
// the terminal.
package report

import "github.com/charmbracelet/lipgloss"

var (
	primaryColor = lipgloss.Color("#2E8B57")
	warningColor = lipgloss.Color("#FFB347")
	subtleColor  = lipgloss.Color("#777777")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(subtleColor)

	warningStyle = lipgloss.NewStyle().
			Foreground(warningColor)

	subtleStyle = lipgloss.NewStyle().
			Foreground(subtleColor)

	dueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(subtleColor).
			Padding(0, 1)
)
