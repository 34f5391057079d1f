package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/Veraticus/contractdesk/internal/transform"
)

// renderMarkdown renders analysis text for the terminal. Rendering errors
// fall back to the cleaned source text.
func renderMarkdown(text, style string, width int) string {
	cleaned := transform.CleanAnalysis(text)
	if cleaned == "" {
		return ""
	}
	if style == "" {
		style = "dark"
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(max(width, 20)),
	)
	if err != nil {
		return cleaned
	}
	out, err := r.Render(cleaned)
	if err != nil {
		return cleaned
	}
	return strings.TrimRight(out, "\n")
}
