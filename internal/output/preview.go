package output

import (
	"fmt"

	"github.com/charmbracelet/glamour"
)

// MarkdownPreview renders markdown-formatted history to ANSI for a TTY,
// the one place Perth needs a real markdown renderer rather than plain
// text passthrough (`pane history --format markdown`, per SPEC_FULL.md).
func MarkdownPreview(markdown string) (string, error) {
	rendered, err := glamour.Render(markdown, "dark")
	if err != nil {
		return "", fmt.Errorf("render markdown preview: %w", err)
	}
	return rendered, nil
}
