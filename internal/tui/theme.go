package tui

import "github.com/charmbracelet/lipgloss"

// ────────────────────────────────────────────────────────────
// Color Palette — deep-water aesthetic
// ────────────────────────────────────────────────────────────
//
// All colors are defined here. No ad-hoc color literals anywhere.
// Designed for readability in dark terminals (iTerm2, Windows
// Terminal, Ghostty, Alacritty) and long planning sessions.

var (
	// Base
	colorBg        = lipgloss.Color("#0b1220")
	colorBgPanel   = lipgloss.Color("#121a2b")
	colorBgSurface = lipgloss.Color("#18233a")

	// Text
	colorText      = lipgloss.Color("#e6edf3")
	colorTextDim   = lipgloss.Color("#8b949e")
	colorTextMuted = lipgloss.Color("#484f58")

	// Accents
	colorBlue   = lipgloss.Color("#58a6ff")
	colorGreen  = lipgloss.Color("#3fb950")
	colorRed    = lipgloss.Color("#f85149")
	colorYellow = lipgloss.Color("#d29922")
	colorPurple = lipgloss.Color("#bc8cff")
	colorCyan   = lipgloss.Color("#76e3ea")

	// Structural
	colorDivider   = lipgloss.Color("#30363d")
	colorHighlight = lipgloss.Color("#1f6feb")
)

// ────────────────────────────────────────────────────────────
// Component Styles
// ────────────────────────────────────────────────────────────

// Header bar
var (
	headerBarStyle = lipgloss.NewStyle().
			Background(colorBgSurface).
			Foreground(colorText).
			Padding(0, 1)

	headerBrandStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorCyan)

	headerSepStyle = lipgloss.NewStyle().
			Foreground(colorTextMuted)

	headerMetaStyle = lipgloss.NewStyle().
			Foreground(colorTextDim)

	headerAdminStyle = lipgloss.NewStyle().
				Foreground(colorYellow).
				Bold(true)
)

// Panel chrome
var (
	panelStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.Border{
			Top:    "─",
			Bottom: "",
			Left:   "",
			Right:  "",
		}).
		BorderForeground(colorDivider)

	panelActiveStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Border(lipgloss.Border{
			Top:    "─",
			Bottom: "",
			Left:   "",
			Right:  "",
		}).
		BorderForeground(colorCyan)

	panelTitleStyle = lipgloss.NewStyle().
			Foreground(colorCyan).
			Bold(true)

	panelTitleDimStyle = lipgloss.NewStyle().
				Foreground(colorTextMuted).
				Bold(true)
)

// Site list
var (
	siteItemStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Padding(0, 1)

	siteSelectedStyle = lipgloss.NewStyle().
				Background(colorHighlight).
				Foreground(colorText).
				Bold(true).
				Padding(0, 1)

	siteRegionStyle = lipgloss.NewStyle().
			Foreground(colorTextDim)

	siteLevelBeginner = lipgloss.NewStyle().
				Foreground(colorGreen)

	siteLevelInter = lipgloss.NewStyle().
			Foreground(colorBlue)

	siteLevelAdvanced = lipgloss.NewStyle().
				Foreground(colorYellow)

	siteLevelTech = lipgloss.NewStyle().
			Foreground(colorRed)

	siteRatingStyle = lipgloss.NewStyle().
			Foreground(colorYellow)

	emptyStateStyle = lipgloss.NewStyle().
			Foreground(colorTextMuted).
			Padding(2, 4)
)

// Planner
var (
	plannerLabelStyle = lipgloss.NewStyle().
				Foreground(colorBlue)

	plannerValueStyle = lipgloss.NewStyle().
				Foreground(colorText)

	plannerMixStyle = lipgloss.NewStyle().
			Foreground(colorCyan).
			Bold(true)

	plannerStepHintStyle = lipgloss.NewStyle().
				Foreground(colorTextMuted)

	plannerErrStyle = lipgloss.NewStyle().
			Foreground(colorRed)

	plannerSectionStyle = lipgloss.NewStyle().
				Foreground(colorDivider)

	gasO2Style = lipgloss.NewStyle().
			Foreground(colorGreen)

	gasHeStyle = lipgloss.NewStyle().
			Foreground(colorPurple)

	gasN2Style = lipgloss.NewStyle().
			Foreground(colorBlue)

	gasBarEmptyStyle = lipgloss.NewStyle().
				Foreground(colorTextMuted)
)

// Logbook
var (
	diveItemStyle = lipgloss.NewStyle().
			Foreground(colorText)

	diveSelectedStyle = lipgloss.NewStyle().
				Background(colorHighlight).
				Foreground(colorText).
				Bold(true)

	diveMixStyle = lipgloss.NewStyle().
			Foreground(colorCyan)

	diveDepthStyle = lipgloss.NewStyle().
			Foreground(colorYellow)

	diveTimestampStyle = lipgloss.NewStyle().
				Foreground(colorTextMuted)

	statsLabelStyle = lipgloss.NewStyle().
			Foreground(colorBlue)

	statsValueStyle = lipgloss.NewStyle().
			Foreground(colorText)
)

// Feedback review
var (
	feedbackPendingStyle = lipgloss.NewStyle().
				Foreground(colorYellow)

	feedbackResolvedStyle = lipgloss.NewStyle().
				Foreground(colorGreen)

	feedbackDismissedStyle = lipgloss.NewStyle().
				Foreground(colorTextMuted)

	feedbackHelpfulStyle = lipgloss.NewStyle().
				Foreground(colorGreen)

	feedbackUnhelpfulStyle = lipgloss.NewStyle().
				Foreground(colorRed)
)

// Footer / status bar
var (
	statusStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Background(colorBgSurface).
			Padding(0, 1)

	statusAccentStyle = lipgloss.NewStyle().
				Foreground(colorCyan).
				Background(colorBgSurface).
				Bold(true).
				Padding(0, 1)

	hintKeyStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Bold(true)

	hintDescStyle = lipgloss.NewStyle().
			Foreground(colorTextMuted)
)
