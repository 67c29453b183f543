package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/amir20/dtop/internal/core"
)

// headerRows and footerRows frame the content area on every view.
const (
	headerRows = 2
	footerRows = 1
)

// Renderer paints full frames from the application state. It implements
// core.Renderer and runs only on the consumer loop.
type Renderer struct {
	term  *Terminal
	theme Theme

	now func() time.Time
}

func NewRenderer(t *Terminal) *Renderer {
	return &Renderer{
		term:  t,
		theme: DefaultTheme(),
		now:   time.Now,
	}
}

// Render draws one frame and reports the usable content height back to the
// state so scrolling math matches what is on screen.
func (r *Renderer) Render(s *core.AppState) {
	width, height := r.term.Size()
	contentH := height - headerRows - footerRows
	if contentH < 1 {
		contentH = 1
	}
	s.ViewportHeight = contentH

	var b strings.Builder
	b.WriteString(r.renderHeader(s, width))
	b.WriteByte('\n')

	var content string
	switch s.View.Kind {
	case core.ViewLogs:
		content = r.renderLogView(s, width, contentH)
	default:
		content = r.renderContainerList(s, width, contentH)
	}

	if s.View.Kind == core.ViewActionMenu {
		content = Overlay(content, r.renderActionMenu(s), width, contentH)
	}
	if s.ShowHelp {
		content = Overlay(content, r.renderHelp(s, width, contentH), width, contentH)
	}

	b.WriteString(content)
	b.WriteByte('\n')
	b.WriteString(r.renderFooter(s, width))

	r.term.WriteFrame(b.String())
}

// renderHeader shows the title bar, active filters, and any unexpired
// connection errors.
func (r *Renderer) renderHeader(s *core.AppState, width int) string {
	accent := lipgloss.NewStyle().Foreground(r.theme.Accent).Bold(true)
	muted := lipgloss.NewStyle().Foreground(r.theme.Muted)
	critical := lipgloss.NewStyle().Foreground(r.theme.Critical)

	left := accent.Render("dtop")
	var parts []string
	if s.HostFilter != "" {
		parts = append(parts, "host="+string(s.HostFilter))
	}
	if s.SearchText != "" || s.View.Kind == core.ViewSearch {
		text := s.SearchText
		if s.View.Kind == core.ViewSearch {
			text += "▏"
		}
		parts = append(parts, "search="+text)
	}
	if s.ShowAll {
		parts = append(parts, "all")
	}
	if len(parts) > 0 {
		left += muted.Render("  " + strings.Join(parts, "  "))
	}

	line := TruncateStyled(left, width)

	errLine := ""
	if errs := s.ActiveConnectionErrors(); len(errs) > 0 {
		errLine = TruncateStyled(critical.Render("✗ "+strings.Join(errs, "  ")), width)
	}
	return line + "\n" + errLine
}

func (r *Renderer) renderFooter(s *core.AppState, width int) string {
	muted := lipgloss.NewStyle().Foreground(r.theme.Muted)

	var hint string
	switch s.View.Kind {
	case core.ViewLogs:
		hint = "j/k scroll  g/G top/bottom  esc back  ? help"
	case core.ViewActionMenu:
		hint = "j/k select  enter run  esc cancel"
	case core.ViewSearch:
		hint = "type to filter  enter apply  esc clear"
	default:
		hint = "j/k move  enter logs  x actions  / search  a all  s sort  ? help  q quit"
	}
	return TruncateStyled(muted.Render(hint), width)
}
