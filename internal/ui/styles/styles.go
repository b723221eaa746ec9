package styles

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Color palette - coherent with charmbracelet style
var (
	Primary   = lipgloss.Color("#7D56F4") // Purple (charmbracelet brand)
	Secondary = lipgloss.Color("#FF79C6") // Pink accent
	Success   = lipgloss.Color("#50FA7B") // Green
	Warning   = lipgloss.Color("#FFB86C") // Orange
	Error     = lipgloss.Color("#FF5555") // Red
	Muted     = lipgloss.Color("#6272A4") // Muted blue-gray
	Text      = lipgloss.Color("#F8F8F2") // Light text
	Subtle    = lipgloss.Color("#44475A") // Dark background accent
)

// Base styles
var (
	// Title style for headers
	Title = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFDF5")).
		Background(Primary).
		Padding(0, 1).
		Bold(true)

	// Normal text
	NormalText = lipgloss.NewStyle().
			Foreground(Text)

	// Muted text
	MutedText = lipgloss.NewStyle().
			Foreground(Muted)

	// Success text
	SuccessText = lipgloss.NewStyle().
			Foreground(Success)

	// Warning text
	WarningText = lipgloss.NewStyle().
			Foreground(Warning)

	// Error text
	ErrorText = lipgloss.NewStyle().
			Foreground(Error)

	// Spinner
	Spinner = lipgloss.NewStyle().
		Foreground(Primary)
)

// Mod list styles
var (
	ModName = lipgloss.NewStyle().
		Foreground(Text).
		Bold(true)

	ModVersion = lipgloss.NewStyle().
			Foreground(Muted)

	ModEngine = lipgloss.NewStyle().
			Foreground(Secondary)

	ModRunning = lipgloss.NewStyle().
			Foreground(Success).
			Bold(true)

	ModIdle = lipgloss.NewStyle().
		Foreground(Muted)

	ModEnabled = lipgloss.NewStyle().
			Foreground(Success)

	ModDisabled = lipgloss.NewStyle().
			Foreground(Warning)
)

// FormatModStatus returns a styled running indicator
func FormatModStatus(running bool) string {
	if running {
		return ModRunning.Render("running")
	}
	return ModIdle.Render("idle")
}

// FormatEnabled returns a styled enabled/disabled indicator for sub-mods
func FormatEnabled(enabled bool) string {
	if enabled {
		return ModEnabled.Render("enabled")
	}
	return ModDisabled.Render("disabled")
}

// FormatEngine returns the engine label, or nothing when unknown
func FormatEngine(engine string) string {
	if engine == "" {
		return ""
	}
	return ModEngine.Render("[" + engine + "]")
}

// FormatWarning formats a warning message
func FormatWarning(msg string) string {
	return WarningText.Render("! " + msg)
}

// Catalog view styles
var (
	// InstalledBadge for catalog mods already in the registry
	InstalledBadge = lipgloss.NewStyle().
			Foreground(Muted).
			Italic(true)

	// StatCount for likes and downloads
	StatCount = lipgloss.NewStyle().
			Foreground(Warning)
)

// FormatInstalledBadge returns a styled "installed" indicator
func FormatInstalledBadge() string {
	return InstalledBadge.Render("installed")
}

// FormatStat formats a catalog counter with its icon, e.g. "♥ 1.2k"
func FormatStat(icon string, count int64) string {
	if count <= 0 {
		return ""
	}
	if count >= 1000 {
		return StatCount.Render(fmt.Sprintf("%s %.1fk", icon, float64(count)/1000))
	}
	return StatCount.Render(fmt.Sprintf("%s %d", icon, count))
}
