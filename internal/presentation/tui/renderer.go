package tui

import (
	"os"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// Renderer turns screen markdown into terminal output.
type Renderer func(markdown string) (string, error)

// PlainRenderer returns the markdown unchanged.
func PlainRenderer(markdown string) (string, error) {
	return markdown, nil
}

// NewRenderer returns a glamour renderer. Styled output is used only when
// stdout is a terminal; pipes get the notty style.
func NewRenderer(wordWrap int) Renderer {
	style := glamour.WithAutoStyle()
	if !IsTerminal(os.Stdout) {
		style = glamour.WithStandardStyle("notty")
	}
	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(wordWrap))
	if err != nil {
		return PlainRenderer
	}
	return r.Render
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}
