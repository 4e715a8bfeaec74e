package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/waftester/a11ycorpus/pkg/defaults"
)

// Global UI state
var (
	noColorMode bool
	uiMu        sync.RWMutex
)

// SetNoColor disables colored output
func SetNoColor(noColor bool) {
	uiMu.Lock()
	defer uiMu.Unlock()
	noColorMode = noColor
	if noColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// IsNoColor returns whether color is disabled
func IsNoColor() bool {
	uiMu.RLock()
	defer uiMu.RUnlock()
	return noColorMode
}

const bannerArt = `
       _ _                                   
  __ _/ / | ___ ___  _ __ _ __  _   _ ___ 
 / _' | | |/ __/ _ \| '__| '_ \| | | / __|
| (_| | | | (_| (_) | |  | |_) | |_| \__ \
 \__,_|_|_|\___\___/|_|  | .__/ \__,_|___/
                         |_|              
`

// PrintBanner writes the application banner with version info to w.
func PrintBanner(w io.Writer) {
	for _, line := range strings.Split(bannerArt, "\n") {
		if line != "" {
			fmt.Fprintln(w, BannerStyle.Render(line))
		}
	}
	fmt.Fprintf(w, "            v%s\n\n", VersionStyle.Render(defaults.Version))
}

// Table renders label/value rows inside a rounded border.
func Table(title string, rows [][2]string) string {
	width := 0
	for _, r := range rows {
		if w := lipgloss.Width(r[0]); w > width {
			width = w
		}
	}
	label := StatLabelStyle.Width(width + 2)

	lines := make([]string, 0, len(rows)+1)
	if title != "" {
		lines = append(lines, TitleStyle.Render(title))
	}
	for _, r := range rows {
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top,
			label.Render(r[0]), StatValueStyle.Render(r[1])))
	}
	return TableStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
