// Package components provides shared UI components for the TUI.
package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/f3rmion/manchu/internal/align"
	"github.com/mattn/go-runewidth"
)

// TokenStyles styles tokens by selection state.
type TokenStyles struct {
	Normal lipgloss.Style
	Active lipgloss.Style
}

// DefaultTokenStyles highlight the active token in the accent colour.
var DefaultTokenStyles = TokenStyles{
	Normal: lipgloss.NewStyle().Foreground(lipgloss.Color("#f1faee")),
	Active: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#1a1a2e")).
		Background(lipgloss.Color("#ffe66d")),
}

// WrapTokens lays tokens out in lines no wider than width display cells,
// separated by single spaces. A token wider than width gets a line of its
// own. It returns the rendered lines and, for each token, the index of the
// line it landed on.
func WrapTokens(tokens []align.Token, width int, isActive func(align.TokenID) bool, styles TokenStyles) ([]string, map[align.TokenID]int) {
	lines := []string{}
	at := make(map[align.TokenID]int, len(tokens))
	if len(tokens) == 0 {
		return lines, at
	}

	var (
		line strings.Builder
		used int
	)
	flush := func() {
		lines = append(lines, line.String())
		line.Reset()
		used = 0
	}

	for _, tok := range tokens {
		w := runewidth.StringWidth(tok.Text)
		if used > 0 && width > 0 && used+1+w > width {
			flush()
		}
		if used > 0 {
			line.WriteByte(' ')
			used++
		}

		style := styles.Normal
		if isActive != nil && isActive(tok.ID()) {
			style = styles.Active
		}
		line.WriteString(style.Render(tok.Text))
		used += w
		at[tok.ID()] = len(lines)
	}
	flush()

	return lines, at
}
