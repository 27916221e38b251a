package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	clrBrand = lipgloss.Color("75") // blue
	clrGreen = lipgloss.Color("114")
	clrDim   = lipgloss.Color("245")
	clrCyan  = lipgloss.Color("81")
)

// styles wraps lipgloss renderers that respect TTY detection. When output is
// piped or redirected, styling is disabled and raw text is emitted.
type styles struct {
	enabled bool

	Header  lipgloss.Style
	Key     lipgloss.Style
	Value   lipgloss.Style
	URL     lipgloss.Style
	Dim     lipgloss.Style
	Success lipgloss.Style
}

func newStyles(w io.Writer) styles {
	enabled := false
	if f, ok := w.(*os.File); ok {
		enabled = term.IsTerminal(int(f.Fd()))
	}

	s := styles{enabled: enabled}
	if !enabled {
		noop := lipgloss.NewStyle()
		s.Header = noop
		s.Key = noop
		s.Value = noop
		s.URL = noop
		s.Dim = noop
		s.Success = noop
		return s
	}

	s.Header = lipgloss.NewStyle().Bold(true).Foreground(clrBrand)
	s.Key = lipgloss.NewStyle().Foreground(clrDim)
	s.Value = lipgloss.NewStyle().Bold(true)
	s.URL = lipgloss.NewStyle().Foreground(clrCyan).Underline(true)
	s.Dim = lipgloss.NewStyle().Foreground(clrDim)
	s.Success = lipgloss.NewStyle().Foreground(clrGreen)
	return s
}
