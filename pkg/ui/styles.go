package ui

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	Primary   = lipgloss.Color("#7D56F4")
	Secondary = lipgloss.Color("#00D4AA")

	Success = lipgloss.Color("#00D26A")
	Warning = lipgloss.Color("#FFB800")
	Error   = lipgloss.Color("#FF3838")
	Muted   = lipgloss.Color("#6B7280")
	Bright  = lipgloss.Color("#FAFAFA")
)

// Pre-configured styles
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Bright).
			Background(Primary).
			Padding(0, 1)

	BannerStyle = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	VersionStyle = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	StatLabelStyle = lipgloss.NewStyle().
			Foreground(Muted)

	StatValueStyle = lipgloss.NewStyle().
			Foreground(Bright).
			Bold(true)

	TableStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(0, 1)

	URLStyle = lipgloss.NewStyle().
			Foreground(Secondary).
			Underline(true)

	CategoryStyle = lipgloss.NewStyle().
			Foreground(Bright).
			Background(lipgloss.Color("#3B3B4F")).
			Padding(0, 1)
)

// VerdictStyle returns the style for a rule verdict name.
func VerdictStyle(verdict string) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)
	switch verdict {
	case "failed":
		return base.Foreground(Error)
	case "cantTell":
		return base.Foreground(Warning)
	case "passed":
		return base.Foreground(Success)
	default:
		return base.Foreground(Muted)
	}
}

// StatusStyle returns the style for a case status. A mismatch is the only
// failing status.
func StatusStyle(status string) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)
	switch status {
	case "found":
		return base.Foreground(Success)
	case "mismatch":
		return base.Foreground(Error)
	case "unimplemented":
		return base.Foreground(Warning)
	default:
		return base.Foreground(Muted)
	}
}

// RateStyle colors a percentage: green from 90, amber from 50, red below.
func RateStyle(pct float64) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)
	switch {
	case pct >= 90:
		return base.Foreground(Success)
	case pct >= 50:
		return base.Foreground(Warning)
	default:
		return base.Foreground(Error)
	}
}
