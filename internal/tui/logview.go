package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/amir20/dtop/internal/core"
)

// renderLogView draws the visible slice of the log buffer with a title line
// naming the container.
func (r *Renderer) renderLogView(s *core.AppState, width, height int) string {
	muted := lipgloss.NewStyle().Foreground(r.theme.Muted)
	accent := lipgloss.NewStyle().Foreground(r.theme.Accent)

	l := s.Log
	if l == nil {
		return muted.Render("  no log view open")
	}

	title := string(l.Key.HostID) + "/" + l.Key.ContainerID
	if c, ok := s.Containers[l.Key]; ok {
		title = string(c.HostID) + "/" + c.Name
	}

	var b strings.Builder
	b.WriteString(TruncateStyled(accent.Render(title), width))

	rows := height - 1
	if rows < 1 {
		rows = 1
	}

	if !l.Loaded {
		b.WriteByte('\n')
		b.WriteString(muted.Render("  loading logs…"))
		return b.String()
	}
	if len(l.Entries) == 0 {
		b.WriteByte('\n')
		b.WriteString(muted.Render("  no log output"))
		return b.String()
	}

	start := l.ScrollOffset
	if l.AtBottom {
		start = len(l.Entries) - rows
	}
	if start > len(l.Entries)-1 {
		start = len(l.Entries) - 1
	}
	if start < 0 {
		start = 0
	}
	end := start + rows
	if end > len(l.Entries) {
		end = len(l.Entries)
	}

	if l.FetchingOlder && start == 0 {
		b.WriteByte('\n')
		b.WriteString(muted.Render("  fetching older logs…"))
	}
	for i := start; i < end; i++ {
		e := l.Entries[i]
		b.WriteByte('\n')
		line := muted.Render(e.Timestamp.Format("15:04:05")) + " " + e.Message
		b.WriteString(TruncateStyled(line, width))
	}
	return b.String()
}
