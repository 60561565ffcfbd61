package tui

import "github.com/charmbracelet/lipgloss"

// Catppuccin Mocha, the subset the dashboard uses.
const (
	colorPink     lipgloss.Color = "#f5c2e7"
	colorRed      lipgloss.Color = "#f38ba8"
	colorPeach    lipgloss.Color = "#fab387"
	colorYellow   lipgloss.Color = "#f9e2af"
	colorGreen    lipgloss.Color = "#a6e3a1"
	colorTeal     lipgloss.Color = "#94e2d5"
	colorLavender lipgloss.Color = "#b4befe"

	colorText     lipgloss.Color = "#cdd6f4"
	colorSubtext0 lipgloss.Color = "#a6adc8"
	colorOverlay0 lipgloss.Color = "#6c7086"
	colorSurface1 lipgloss.Color = "#45475a"
	colorSurface0 lipgloss.Color = "#313244"
)

const (
	colorAccent  = colorPink
	colorFocus   = colorLavender
	colorSuccess = colorGreen
	colorError   = colorRed
	colorWarning = colorYellow
	colorInfo    = colorTeal
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	tabStyle       = lipgloss.NewStyle().Foreground(colorSubtext0).Padding(0, 1)
	activeTabStyle = lipgloss.NewStyle().Foreground(colorText).Background(colorSurface1).Bold(true).Padding(0, 1)
	headerStyle    = lipgloss.NewStyle().Foreground(colorSubtext0).Bold(true)
	cursorStyle    = lipgloss.NewStyle().Background(colorSurface0).Foreground(colorFocus)
	selectedStyle  = lipgloss.NewStyle().Foreground(colorAccent)
	dimStyle       = lipgloss.NewStyle().Foreground(colorOverlay0)
	errorStyle     = lipgloss.NewStyle().Foreground(colorError)
	successStyle   = lipgloss.NewStyle().Foreground(colorSuccess)
	warningStyle   = lipgloss.NewStyle().Foreground(colorWarning)
	infoStyle      = lipgloss.NewStyle().Foreground(colorInfo)
	lowStockStyle  = lipgloss.NewStyle().Foreground(colorPeach).Bold(true)
	modalStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorFocus).Padding(0, 1)
)
