package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/amir20/dtop/internal/core"
)

func actionLabel(a core.ContainerAction) string {
	switch a {
	case core.ActionStart:
		return "start"
	case core.ActionStop:
		return "stop"
	case core.ActionRestart:
		return "restart"
	case core.ActionRemove:
		return "remove"
	default:
		return "?"
	}
}

// renderActionMenu draws the modal listing the actions valid for the
// targeted container's state.
func (r *Renderer) renderActionMenu(s *core.AppState) string {
	c, ok := s.Containers[s.View.Key]
	if !ok {
		return ""
	}
	actions := core.AvailableActions(c.State)

	sel := lipgloss.NewStyle().Background(r.theme.SelBg).Bold(true)
	var lines []string
	lines = append(lines, "")
	for i, a := range actions {
		label := "  " + actionLabel(a) + "  "
		if i == s.ActionIndex {
			label = sel.Render("▸ " + actionLabel(a) + "  ")
		}
		lines = append(lines, " "+label)
	}
	lines = append(lines, "")

	w := 24
	if tw := len([]rune(c.Name)) + 6; tw > w {
		w = tw
	}
	return renderBox(Truncate(c.Name, w-4), strings.Join(lines, "\n"), w, len(lines)+2, &r.theme)
}

// renderHelp draws the key binding overlay.
func (r *Renderer) renderHelp(s *core.AppState, width, height int) string {
	fg := lipgloss.NewStyle().Foreground(r.theme.Accent)
	muted := lipgloss.NewStyle().Foreground(r.theme.Muted)

	type binding struct{ key, desc string }
	var bindings []binding
	if s.View.Kind == core.ViewLogs {
		bindings = []binding{
			{"j/k", "scroll"},
			{"pgup/pgdn", "scroll half page"},
			{"g/G", "oldest / newest"},
			{"o", "open in web viewer"},
			{"esc", "back to list"},
		}
	} else {
		bindings = []binding{
			{"j/k", "move selection"},
			{"enter", "view logs"},
			{"x", "container actions"},
			{"/", "search"},
			{"a", "show stopped containers"},
			{"h", "filter by host"},
			{"s", "cycle sort field"},
			{"u/n/c/m", "sort by uptime/name/cpu/mem"},
			{"o", "open in web viewer"},
			{"q", "quit"},
		}
	}

	const keyW = 11
	var lines []string
	lines = append(lines, "")
	for _, b := range bindings {
		lines = append(lines, "  "+fg.Render(padRight(b.key, keyW))+muted.Render(b.desc))
	}
	lines = append(lines, "")

	w := 42
	if w > width-4 {
		w = width - 4
	}
	h := len(lines) + 2
	if h > height-2 {
		h = height - 2
	}
	return renderBox("help", strings.Join(lines, "\n"), w, h, &r.theme)
}
