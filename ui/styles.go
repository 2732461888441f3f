package ui

import "github.com/charmbracelet/lipgloss"

// Palette loosely follows the Steam client: blue accents on slate.
var (
	steamBlue  = lipgloss.AdaptiveColor{Light: "#1A73B8", Dark: "#66C0F4"}
	slate      = lipgloss.AdaptiveColor{Light: "#8F98A0", Dark: "#3D4450"}
	text       = lipgloss.AdaptiveColor{Light: "#1B2838", Dark: "#C7D5E0"}
	faint      = lipgloss.AdaptiveColor{Light: "#6B7785", Dark: "#8F98A0"}
	launchGold = lipgloss.AdaptiveColor{Light: "#A8770A", Dark: "#E5B143"}
	okGreen    = lipgloss.AdaptiveColor{Light: "#3B7A16", Dark: "#A4D007"}
	failRed    = lipgloss.AdaptiveColor{Light: "#B3261E", Dark: "#E25A4F"}
)

var (
	appStyle   = lipgloss.NewStyle().Padding(1, 2)
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF")).Background(steamBlue).Padding(0, 1)
	mutedStyle = lipgloss.NewStyle().Foreground(faint)

	// Entry list
	selectedStyle   = lipgloss.NewStyle().Bold(true).Foreground(steamBlue)
	normalStyle     = lipgloss.NewStyle().Foreground(text)
	cmdPreviewStyle = lipgloss.NewStyle().Foreground(faint).Italic(true)
	envStyle        = lipgloss.NewStyle().Foreground(launchGold)

	// Output pane
	borderStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(slate)
	outputTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(faint)

	// Help bar
	helpStyle    = lipgloss.NewStyle().Foreground(faint)
	helpKeyStyle = lipgloss.NewStyle().Bold(true).Foreground(steamBlue)

	// Forms and prompts
	labelStyle        = lipgloss.NewStyle().Bold(true).Foreground(steamBlue)
	inputStyle        = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(slate).Padding(0, 1)
	focusedInputStyle = inputStyle.BorderForeground(steamBlue)

	// Status line
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(okGreen)
	warningStyle = lipgloss.NewStyle().Bold(true).Foreground(launchGold)
	errorStyle   = lipgloss.NewStyle().Foreground(failRed)
)
