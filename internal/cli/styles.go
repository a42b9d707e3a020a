// Package cli provides styled terminal output using lipgloss.
package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/claimdesk/internal/model"
)

var (
	// PrimaryColor is the main theme color (claims blue).
	PrimaryColor = lipgloss.Color("#4D96FF")
	// SuccessColor indicates successful operations.
	SuccessColor = lipgloss.Color("#6BCB77") // Green
	// WarningColor indicates warnings or caution messages.
	WarningColor = lipgloss.Color("#FFD93D") // Yellow
	// ErrorColor indicates errors or failure messages.
	ErrorColor = lipgloss.Color("#FF6B6B") // Red
	// InfoColor indicates informational messages.
	InfoColor = lipgloss.Color("#95E1D3") // Light teal
	// SubtleColor indicates less prominent UI elements.
	SubtleColor = lipgloss.Color("#666666") // Gray

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

	// TableHeaderStyle is used for table headers.
	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderBottom(true).
				BorderForeground(lipgloss.Color("#333"))

	// TableCellStyle formats table cells with appropriate padding.
	TableCellStyle = lipgloss.NewStyle().
			PaddingRight(2)

	// PromptStyle is used for the session prompt.
	PromptStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor)

	badgeStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Foreground(lipgloss.Color("#1A1A1A"))
)

// statusColors maps each claim status to its badge color.
var statusColors = map[model.ClaimStatus]lipgloss.Color{
	model.StatusSubmitted:     lipgloss.Color("#A0A0A0"),
	model.StatusAIReview:      lipgloss.Color("#C9A7EB"),
	model.StatusEstimated:     lipgloss.Color("#4D96FF"),
	model.StatusApproved:      lipgloss.Color("#6BCB77"),
	model.StatusInRepair:      lipgloss.Color("#FFD93D"),
	model.StatusPickUpPending: lipgloss.Color("#FFA94D"),
	model.StatusClosed:        lipgloss.Color("#4ECDC4"),
	model.StatusRejected:      lipgloss.Color("#FF6B6B"),
}

// Icons.
const (
	SuccessIcon = "✓"
	ErrorIcon   = "✗"
	WarningIcon = "⚠️"
	InfoIcon    = "ℹ️"
	ClaimIcon   = "📋"
	RobotIcon   = "🤖"
	CarIcon     = "🚗"
	WrenchIcon  = "🔧"
	CommentIcon = "💬"
)

// StatusBadge renders status as a colored badge.
func StatusBadge(status model.ClaimStatus) string {
	color, ok := statusColors[status]
	if !ok {
		color = SubtleColor
	}
	return badgeStyle.Background(color).Render(string(status))
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

// FormatTitle formats a title with the claim icon.
func FormatTitle(title string) string {
	return TitleStyle.Render(ClaimIcon + " " + title)
}

// FormatPrompt renders the session prompt for the acting role.
func FormatPrompt(role string) string {
	return PromptStyle.Render(role + " → ")
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
