package ui

import (
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

var (
	notFoundColor = lipgloss.Color("#FF3838") // red
	otherColor    = lipgloss.Color("#FFD93D") // yellow
	noticeColor   = lipgloss.Color("#00D4AA") // cyan
	mutedColor    = lipgloss.Color("#6B7280")
)

type styles struct {
	notFound lipgloss.Style
	other    lipgloss.Style
	notice   lipgloss.Style
	muted    lipgloss.Style
	title    lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	base := r.NewStyle().TabWidth(lipgloss.NoTabConversion)
	return styles{
		notFound: base.Foreground(notFoundColor),
		other:    base.Foreground(otherColor),
		notice:   base.Foreground(noticeColor),
		muted:    base.Foreground(mutedColor),
		title:    base.Bold(true),
	}
}

// severity picks the style of a broken link: 404 is red, every other
// status yellow.
func (s styles) severity(status int) lipgloss.Style {
	if status == http.StatusNotFound {
		return s.notFound
	}
	return s.other
}

// isTerminal reports whether w is a terminal file descriptor.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func newRenderer(w io.Writer, color bool) *lipgloss.Renderer {
	r := lipgloss.NewRenderer(w)
	if !color {
		r.SetColorProfile(termenv.Ascii)
	}
	return r
}
