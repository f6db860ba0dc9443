// Package cli renders flow's terminal output with lipgloss and handles the
// few interactive prompts the commands need.
package cli

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette.
var (
	PrimaryColor = lipgloss.Color("#5FAFFF") // Blue
	SuccessColor = lipgloss.Color("#4ECDC4") // Teal
	WarningColor = lipgloss.Color("#FFE66D") // Yellow
	ErrorColor   = lipgloss.Color("#FF6B6B") // Red
	MutedColor   = lipgloss.Color("#666666") // Gray
	BorderColor  = lipgloss.Color("#333")
)

// Message styles.
var (
	TitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(PrimaryColor).MarginBottom(1)
	SuccessStyle = lipgloss.NewStyle().Foreground(SuccessColor)
	WarningStyle = lipgloss.NewStyle().Foreground(WarningColor)
	ErrorStyle   = lipgloss.NewStyle().Foreground(ErrorColor)
	PromptStyle  = lipgloss.NewStyle().Bold(true).Foreground(PrimaryColor)
	BoxStyle     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderColor).
			Padding(1, 2)
)

// Report styles.
var (
	// EstimateStyle names a budget estimate.
	EstimateStyle = lipgloss.NewStyle().Bold(true).Width(30)
	// AmountStyle right-aligns money columns.
	AmountStyle = lipgloss.NewStyle().Width(12).Align(lipgloss.Right)
	// AccountStyle shows the withdrawal → deposit pair of a transaction.
	AccountStyle = lipgloss.NewStyle().Foreground(MutedColor)
	// MutedStyle is used for IDs, counts and file formats.
	MutedStyle = lipgloss.NewStyle().Foreground(MutedColor)
	// EmphasisStyle highlights file paths and rule positions.
	EmphasisStyle = lipgloss.NewStyle().Bold(true)
)

// Icons.
const (
	SuccessIcon = "✓"
	ErrorIcon   = "✗"
	WarningIcon = "⚠️"
	FlowIcon    = "💸"
	ChartIcon   = "📊"
)

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

// FormatTitle formats a title with the flow icon.
func FormatTitle(title string) string {
	return TitleStyle.Render(FlowIcon + " " + title)
}

// FormatPrompt formats a prompt message.
func FormatPrompt(prompt string) string {
	return PromptStyle.Render(prompt + " → ")
}

// RenderBox renders content under a title in a rounded box.
func RenderBox(title, content string) string {
	return BoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		TitleStyle.UnsetMargins().Render(title),
		content,
	))
}
