package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles used throughout the TUI.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleDefault = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleHeading = lipgloss.NewStyle().
			Bold(true)

	styleReachable = lipgloss.NewStyle().
			Foreground(lipgloss.Color("40"))

	styleBlocked = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	stylePlayerInput = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))
)

// lineKind identifies the type of an output line for styling.
type lineKind int

const (
	kindDefault lineKind = iota
	kindHeading
	kindEntry
	kindBlocked
	kindSystem
)

// classifyLine determines what kind of output line this is.
func classifyLine(line string) lineKind {
	switch {
	case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
		return kindSystem
	case strings.Contains(line, "->[blocked]"):
		return kindBlocked
	case strings.HasSuffix(line, ":"):
		return kindHeading
	case strings.HasPrefix(line, "  "):
		return kindEntry
	default:
		return kindDefault
	}
}

// renderLineKind applies the style for a given lineKind.
func renderLineKind(line string, kind lineKind) string {
	switch kind {
	case kindHeading:
		return styleHeading.Render(line)
	case kindEntry:
		return styleReachable.Render(line)
	case kindBlocked:
		return styleBlocked.Render(line)
	case kindSystem:
		return styleSystem.Render(line)
	default:
		return styleDefault.Render(line)
	}
}

// styledPlayerInput renders the echoed input in green with "> " prefix.
func styledPlayerInput(input string) string {
	return stylePlayerInput.Render("> " + input)
}
