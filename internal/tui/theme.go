package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/amir20/dtop/internal/core"
)

// Theme holds all colors used by the TUI. Views reference theme fields,
// never raw color values.
type Theme struct {
	Critical lipgloss.Color // red
	Warning  lipgloss.Color // yellow
	Healthy  lipgloss.Color // green
	Accent   lipgloss.Color // cyan
	Muted    lipgloss.Color // gray
	Border   lipgloss.Color // dark gray
	SelBg    lipgloss.Color // selection background
}

// DefaultTheme returns the default color theme using standard terminal colors.
func DefaultTheme() Theme {
	return Theme{
		Critical: lipgloss.Color("9"),
		Warning:  lipgloss.Color("11"),
		Healthy:  lipgloss.Color("10"),
		Accent:   lipgloss.Color("14"),
		Muted:    lipgloss.Color("8"),
		Border:   lipgloss.Color("240"),
		SelBg:    lipgloss.Color("236"),
	}
}

// UsageColor returns green/yellow/red based on a usage percentage.
func (t Theme) UsageColor(percent float64) lipgloss.Color {
	switch {
	case percent >= 80:
		return t.Critical
	case percent >= 60:
		return t.Warning
	default:
		return t.Healthy
	}
}

// StateColor returns a color for a container state.
func (t Theme) StateColor(state core.ContainerState) lipgloss.Color {
	switch state {
	case core.StateRunning:
		return t.Healthy
	case core.StateRestarting, core.StatePaused:
		return t.Warning
	case core.StateExited, core.StateDead:
		return t.Critical
	default:
		return t.Muted
	}
}

// StateIndicator returns a colored circle for a container state. Active
// states use ● (filled), inactive use ○ (empty).
func (t Theme) StateIndicator(state core.ContainerState) string {
	style := lipgloss.NewStyle().Foreground(t.StateColor(state))
	switch state {
	case core.StateRunning, core.StateRestarting:
		return style.Render("●")
	default:
		return style.Render("○")
	}
}

// HealthIndicator returns a colored symbol for container health status.
func (t Theme) HealthIndicator(health core.HealthStatus) string {
	switch health {
	case core.HealthHealthy:
		return lipgloss.NewStyle().Foreground(t.Healthy).Render("✓")
	case core.HealthUnhealthy:
		return lipgloss.NewStyle().Foreground(t.Critical).Render("✗")
	case core.HealthStarting:
		return lipgloss.NewStyle().Foreground(t.Warning).Render("!")
	default:
		return " "
	}
}
