// Package themes holds the color palettes for the interactive planner.
package themes

import "github.com/charmbracelet/lipgloss"

// Theme defines the visual style for the TUI.
type Theme struct {
	Title         lipgloss.Style
	Subtitle      lipgloss.Style
	Label         lipgloss.Style
	FocusedLabel  lipgloss.Style
	Help          lipgloss.Style
	StatusError   lipgloss.Style
	StatusSuccess lipgloss.Style
	Choice        lipgloss.Style
	Box           lipgloss.Style
	Primary       lipgloss.Color
	Secondary     lipgloss.Color
	Muted         lipgloss.Color
	Error         lipgloss.Color
	Success       lipgloss.Color
}

// Default is the default theme.
var Default = Theme{
	Primary:   lipgloss.Color("#4C9AFF"),
	Secondary: lipgloss.Color("#79E2F2"),
	Muted:     lipgloss.Color("#737373"),
	Error:     lipgloss.Color("#ef4444"),
	Success:   lipgloss.Color("#10b981"),

	Title: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#4C9AFF")).
		MarginBottom(1),
	Subtitle: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#a3a3a3")),
	Label: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#a3a3a3")).
		Width(20),
	FocusedLabel: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#4C9AFF")).
		Bold(true).
		Width(20),
	Help: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#737373")),
	StatusError: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#ef4444")),
	StatusSuccess: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#10b981")),
	Choice: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#79E2F2")),
	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#404040")).
		Padding(0, 1),
}

// Plain has no colors, for tests and NO_COLOR terminals.
var Plain = Theme{
	Title:         lipgloss.NewStyle().Bold(true).MarginBottom(1),
	Subtitle:      lipgloss.NewStyle(),
	Label:         lipgloss.NewStyle().Width(20),
	FocusedLabel:  lipgloss.NewStyle().Bold(true).Width(20),
	Help:          lipgloss.NewStyle(),
	StatusError:   lipgloss.NewStyle(),
	StatusSuccess: lipgloss.NewStyle(),
	Choice:        lipgloss.NewStyle(),
	Box:           lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1),
}
