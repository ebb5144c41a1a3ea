package ui

import "github.com/charmbracelet/glamour"

// Markdown renders a markdown block for terminal display. Rendering
// failures fall back to the raw text; this is presentation only.
func Markdown(content string) string {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return content
	}
	out, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return out
}
