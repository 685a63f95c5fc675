// Package cli provides styled terminal output using lipgloss.
package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Pranay-Dommati/FInAi-sub001/internal/planner"
)

var (
	// PrimaryColor is the main theme color.
	PrimaryColor = lipgloss.Color("#4C9AFF")
	// SuccessColor indicates successful operations.
	SuccessColor = lipgloss.Color("#36B37E") // Green
	// WarningColor indicates warnings or caution messages.
	WarningColor = lipgloss.Color("#FFAB00") // Amber
	// ErrorColor indicates errors or failure messages.
	ErrorColor = lipgloss.Color("#FF5630") // Red
	// InfoColor indicates informational messages.
	InfoColor = lipgloss.Color("#79E2F2")
	// SubtleColor indicates less prominent UI elements.
	SubtleColor = lipgloss.Color("#6B778C") // Gray

	// TitleStyle is used for section titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor).
			MarginBottom(1)

	// SuccessStyle formats success messages.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor)

	// WarningStyle formats warning messages.
	WarningStyle = lipgloss.NewStyle().
			Foreground(WarningColor)

	// ErrorStyle formats error messages.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor)

	// InfoStyle formats informational messages.
	InfoStyle = lipgloss.NewStyle().
			Foreground(InfoColor)

	// SubtleStyle formats less prominent text.
	SubtleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)

	// BoldStyle makes text bold.
	BoldStyle = lipgloss.NewStyle().
			Bold(true)

	// BoxStyle is used for bordered content boxes.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#333")).
			Padding(1, 2)

	// LabelStyle pads key/value labels into a column.
	LabelStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			Width(22)
)

// Icons.
const (
	SuccessIcon = "✓"
	ErrorIcon   = "✗"
	WarningIcon = "⚠️"
	InfoIcon    = "ℹ️"
	ChartIcon   = "📊"
	BankIcon    = "🏦"
)

// GradeColor maps a health grade onto the theme: A grades green, B and C
// amber, D and F red.
func GradeColor(g planner.Grade) lipgloss.Color {
	switch g {
	case planner.GradeAPlus, planner.GradeA:
		return SuccessColor
	case planner.GradeB, planner.GradeC:
		return WarningColor
	default:
		return ErrorColor
	}
}

// GradeStyle renders a grade badge in its band color.
func GradeStyle(g planner.Grade) lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(GradeColor(g))
}

// PriorityStyle colors a recommendation priority.
func PriorityStyle(p planner.Priority) lipgloss.Style {
	switch p {
	case planner.PriorityHigh:
		return ErrorStyle
	case planner.PriorityMedium:
		return WarningStyle
	default:
		return InfoStyle
	}
}

// FormatSuccess formats a success message with icon.
func FormatSuccess(message string) string {
	return SuccessStyle.Render(SuccessIcon + " " + message)
}

// FormatError formats an error message with icon.
func FormatError(message string) string {
	return ErrorStyle.Render(ErrorIcon + " " + message)
}

// FormatWarning formats a warning message with icon.
func FormatWarning(message string) string {
	return WarningStyle.Render(WarningIcon + " " + message)
}

// FormatInfo formats an info message with icon.
func FormatInfo(message string) string {
	return InfoStyle.Render(InfoIcon + " " + message)
}

// FormatTitle formats a title with the chart icon.
func FormatTitle(title string) string {
	return TitleStyle.Render(ChartIcon + " " + title)
}

// RenderBox renders content in a styled box.
func RenderBox(title, content string) string {
	boxTitle := TitleStyle.
		UnsetMargins().
		Render(title)

	boxContent := lipgloss.JoinVertical(
		lipgloss.Left,
		boxTitle,
		content,
	)

	return BoxStyle.Render(boxContent)
}
