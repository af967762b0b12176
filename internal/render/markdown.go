// Package render formats buffered answers for the terminal.
package render

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

const defaultWidth = 100

// Renderers are keyed by wrap width.
var rendererCache sync.Map

// Markdown renders an answer as terminal markdown when enabled, without the
// blank lines glamour adds around the document. Plain trimmed text is
// returned when rendering is disabled or fails.
func Markdown(text string, width int, enabled bool) string {
	clean := strings.TrimSpace(text)
	if clean == "" || !enabled {
		return clean
	}
	if width <= 0 {
		width = defaultWidth
	}

	renderer, err := rendererFor(width)
	if err != nil {
		return clean
	}
	out, err := renderer.Render(clean)
	if err != nil {
		return clean
	}
	return strings.Trim(out, "\n")
}

func rendererFor(width int) (*glamour.TermRenderer, error) {
	if cached, ok := rendererCache.Load(width); ok {
		return cached.(*glamour.TermRenderer), nil
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, fmt.Errorf("create markdown renderer: %w", err)
	}
	actual, _ := rendererCache.LoadOrStore(width, renderer)
	return actual.(*glamour.TermRenderer), nil
}
