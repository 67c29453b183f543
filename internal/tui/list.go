package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/amir20/dtop/internal/core"
)

// fixed column widths; the name column absorbs whatever is left.
const (
	hostColW   = 12
	uptimeColW = 8
	cpuColW    = 7
	memColW    = 7
	netColW    = 10
)

// renderContainerList draws the table: a sort-aware header row and one row
// per visible container, keeping the selection inside the window.
func (r *Renderer) renderContainerList(s *core.AppState, width, height int) string {
	muted := lipgloss.NewStyle().Foreground(r.theme.Muted)

	nameW := width - 3 - (hostColW+2) - (uptimeColW+2) - (cpuColW+2) - (memColW+2) - (netColW+2)*2
	if nameW < 8 {
		nameW = 8
	}

	var b strings.Builder
	b.WriteString(r.renderListHeader(s, nameW))

	if len(s.SortedKeys) == 0 {
		b.WriteByte('\n')
		b.WriteString(muted.Render("  no containers"))
		return b.String()
	}

	rows := height - 1
	if rows < 1 {
		rows = 1
	}
	start := 0
	if s.Selected >= rows {
		start = s.Selected - rows + 1
	}
	end := start + rows
	if end > len(s.SortedKeys) {
		end = len(s.SortedKeys)
	}

	now := r.now()
	for i := start; i < end; i++ {
		b.WriteByte('\n')
		b.WriteString(r.renderRow(s.Containers[s.SortedKeys[i]], nameW, width, i == s.Selected, now))
	}
	return b.String()
}

// renderListHeader marks the active sort column with a direction arrow.
func (r *Renderer) renderListHeader(s *core.AppState, nameW int) string {
	muted := lipgloss.NewStyle().Foreground(r.theme.Muted)

	arrow := "↓"
	if s.Sort.Direction == core.SortAscending {
		arrow = "↑"
	}
	mark := func(f core.SortField) string {
		if s.Sort.Field == f {
			return arrow
		}
		return ""
	}

	cells := []string{
		" ",
		padRight("NAME"+mark(core.SortName), nameW),
		padRight("HOST", hostColW),
		rightAlign("UPTIME"+mark(core.SortUptime), uptimeColW),
		rightAlign("CPU%"+mark(core.SortCPU), cpuColW),
		rightAlign("MEM%"+mark(core.SortMemory), memColW),
		rightAlign("NET RX", netColW),
		rightAlign("NET TX", netColW),
	}
	return muted.Render(strings.Join(cells, "  "))
}

func (r *Renderer) renderRow(c *core.Container, nameW, width int, selected bool, now time.Time) string {
	name := Truncate(c.Name, nameW)
	if h := r.theme.HealthIndicator(c.Health); c.Health != core.HealthNone && len([]rune(name)) < nameW-2 {
		name = name + " " + h
	}

	cpu, mem, rx, tx := "-", "-", "-", "-"
	if c.State == core.StateRunning {
		cpu = fmt.Sprintf("%.1f", c.Stats.CPUPercent)
		mem = fmt.Sprintf("%.1f", c.Stats.MemoryPercent)
		rx = humanize.Bytes(uint64(c.Stats.NetworkRx)) + "/s"
		tx = humanize.Bytes(uint64(c.Stats.NetworkTx)) + "/s"
	}

	cells := []string{
		r.theme.StateIndicator(c.State),
		padStyled(name, nameW),
		padRight(Truncate(string(c.HostID), hostColW), hostColW),
		rightAlign(FormatUptime(c.Created, now), uptimeColW),
		rightAlign(cpu, cpuColW),
		rightAlign(mem, memColW),
		rightAlign(rx, netColW),
		rightAlign(tx, netColW),
	}
	line := strings.Join(cells, "  ")

	if selected {
		return lipgloss.NewStyle().Background(r.theme.SelBg).Render(TruncateStyled(line, width))
	}
	return TruncateStyled(line, width)
}

// padStyled pads to width measuring through ANSI sequences, needed for the
// name cell which may carry a styled health glyph.
func padStyled(s string, w int) string {
	sw := lipgloss.Width(s)
	if sw >= w {
		return TruncateStyled(s, w)
	}
	return s + strings.Repeat(" ", w-sw)
}
