package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Oxocarbon color scheme - IBM Carbon inspired
// Following base16 oxocarbon-dark palette
var (
	// Base colors
	OxocarbonBase01 = lipgloss.Color("#393939") // Borders, secondary UI
	OxocarbonBase02 = lipgloss.Color("#525252") // Disabled/muted elements
	OxocarbonBase03 = lipgloss.Color("#767676") // Disabled/muted elements
	OxocarbonBase04 = lipgloss.Color("#dde1e6") // Secondary foreground
	OxocarbonBase05 = lipgloss.Color("#f2f4f8") // Primary foreground
	OxocarbonWhite  = lipgloss.Color("#ffffff")

	// Accent colors
	OxocarbonBlue   = lipgloss.Color("#78a9ff")
	OxocarbonRed    = lipgloss.Color("#ff5252")
	OxocarbonGreen  = lipgloss.Color("#42be65")
	OxocarbonPurple = lipgloss.Color("#be95ff") // main accent
	OxocarbonMauve  = lipgloss.Color("#d1aaff")
	OxocarbonPink   = lipgloss.Color("#ee5396")

	// Status colors using oxocarbon palette
	StatusActive    = OxocarbonPurple
	StatusCompleted = OxocarbonGreen
	StatusFailed    = OxocarbonRed
	StatusCancelled = OxocarbonPink
)

var (
	// App general style with a subtle border
	AppStyle = lipgloss.NewStyle().
			Padding(1, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(OxocarbonBase01)

	// Title style
	TitleStyle = lipgloss.NewStyle().
			Foreground(OxocarbonWhite).
			Background(OxocarbonPurple).
			Padding(0, 1).
			Bold(true)

	// Subtitle style
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(OxocarbonMauve).
			Bold(true)

	// Label in front of a progress bar
	LabelStyle = lipgloss.NewStyle().
			Foreground(OxocarbonBase04).
			Width(10)

	// Metadata style - slightly muted but still readable
	MetadataStyle = lipgloss.NewStyle().
			Foreground(OxocarbonBase04)

	// Log line styles
	LogStyle = lipgloss.NewStyle().
			Foreground(OxocarbonBase03)

	CompletedStyle = lipgloss.NewStyle().
			Foreground(StatusCompleted)

	FailedStyle = lipgloss.NewStyle().
			Foreground(StatusFailed)

	CancelledStyle = lipgloss.NewStyle().
			Foreground(StatusCancelled)

	// Help style
	HelpStyle = lipgloss.NewStyle().
			Foreground(OxocarbonBase03).
			Italic(true).
			MarginTop(1)

	// Footer style for status messages
	FooterStyle = lipgloss.NewStyle().
			Foreground(OxocarbonBase05).
			Background(OxocarbonBase01).
			Padding(0, 1)
)

// StatusLineStyle picks the style for a status line by its prefix
func StatusLineStyle(text string) lipgloss.Style {
	switch {
	case strings.HasPrefix(text, "Completed:"):
		return CompletedStyle
	case strings.HasPrefix(text, "Failed:"):
		return FailedStyle
	case strings.HasPrefix(text, "Cancelled:"):
		return CancelledStyle
	default:
		return LogStyle
	}
}
