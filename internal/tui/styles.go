package tui

import "github.com/charmbracelet/lipgloss"

// Semantic color palette.
var (
	colorPrimary     = lipgloss.Color("#00BFFF") // Cyan, primary accent
	colorAccent      = lipgloss.Color("#FFD700") // Gold, prestige
	colorSuccess     = lipgloss.Color("#00E676") // Green, affordable or unlocked
	colorDanger      = lipgloss.Color("#FF5252") // Red, errors
	colorMuted       = lipgloss.Color("#636363") // Gray, de-emphasized
	colorMutedLight  = lipgloss.Color("#8C8C8C") // Lighter gray, normal text
	colorWhite       = lipgloss.Color("#EEEEEE") // Off-white, primary text
	colorBrightWhite = lipgloss.Color("#FFFFFF") // Pure white, emphatic text
	colorSurface     = lipgloss.Color("#1E1E2E") // Dark surface, status bar bg
	colorSurfaceDim  = lipgloss.Color("#181825") // Darkest surface, footer bg
	colorBlue        = lipgloss.Color("#5B8DEF") // Blue, automation
)

// Selection indicator prepended to the active row.
const selectionIndicator = "▎"

// Row icons.
const (
	iconUnlocked  = "✓"
	iconAvailable = "◆"
	iconLocked    = "·"
	iconRuleOn    = "↻"
	iconRuleOff   = "–"
)

// Status bar styles.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(colorSurface).
			Foreground(colorWhite).
			Bold(true).
			Padding(0, 1)

	styleStatusLabel = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	styleStatusValue = lipgloss.NewStyle().
				Foreground(colorWhite)

	styleStatusPoints = lipgloss.NewStyle().
				Foreground(colorAccent)
)

// Row styles.
var (
	styleRowSelected = lipgloss.NewStyle().
				Foreground(colorBrightWhite).
				Bold(true)

	styleRowNormal = lipgloss.NewStyle().
			Foreground(colorMutedLight)

	styleRowReady = lipgloss.NewStyle().
			Foreground(colorSuccess)

	styleRowDim = lipgloss.NewStyle().
			Foreground(colorMuted)

	styleRowRule = lipgloss.NewStyle().
			Foreground(colorBlue)

	styleSelectionIndicator = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)
)

// Pane tab styles.
var (
	styleTabActive = lipgloss.NewStyle().
			Foreground(colorBrightWhite).
			Background(colorSurface).
			Bold(true).
			Padding(0, 1)

	styleTabInactive = lipgloss.NewStyle().
				Foreground(colorMuted).
				Padding(0, 1)
)

// Message log styles.
var (
	styleMessage = lipgloss.NewStyle().
			Foreground(colorMutedLight)

	styleMessageError = lipgloss.NewStyle().
				Foreground(colorDanger).
				Bold(true)
)

// Footer styles.
var (
	styleFooter = lipgloss.NewStyle().
			Foreground(colorMuted).
			Background(colorSurfaceDim).
			Border(lipgloss.NormalBorder(), true, false, false, false).
			BorderForeground(colorMuted)

	styleFooterKey = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	styleFooterSep = lipgloss.NewStyle().
			Foreground(colorMuted)

	styleFooterDesc = lipgloss.NewStyle().
			Foreground(colorMutedLight)
)

// Section border for separating view regions.
var styleSectionBorder = lipgloss.NewStyle().
	Border(lipgloss.NormalBorder(), true, false, false, false).
	BorderForeground(colorMuted)
