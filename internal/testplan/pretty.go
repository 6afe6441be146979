package testplan

import (
	"fmt"

	"github.com/charmbracelet/glamour"
)

// Pretty renders Markdown for a terminal without colour escapes.
func Pretty(md string, width int) (string, error) {
	if width <= 0 {
		width = 120
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("notty"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("create renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("render plan: %w", err)
	}
	return out, nil
}
