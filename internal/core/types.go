package core

import (
	"strings"
	"time"
)

// HostID identifies a connected Docker daemon. It doubles as the routing key
// for log and action requests back to the right client connection.
type HostID = string

// ContainerKey uniquely identifies a container across hosts. ContainerID is
// the daemon-truncated 12-character id.
type ContainerKey struct {
	HostID      HostID
	ContainerID string
}

// ContainerState is the lifecycle state reported by the daemon.
type ContainerState int

const (
	StateUnknown ContainerState = iota
	StateRunning
	StatePaused
	StateRestarting
	StateRemoving
	StateExited
	StateDead
	StateCreated
)

// ParseContainerState maps a daemon state string to a ContainerState.
// Matching is substring-based since the daemon sometimes embeds the state
// in a longer status line ("Up 2 hours (healthy)", "Exited (0) 3 days ago").
func ParseContainerState(s string) ContainerState {
	lower := strings.ToLower(s)
	switch {
	case strings.Contains(lower, "running"), strings.Contains(lower, "up "):
		return StateRunning
	case strings.Contains(lower, "paused"):
		return StatePaused
	case strings.Contains(lower, "restarting"):
		return StateRestarting
	case strings.Contains(lower, "removing"):
		return StateRemoving
	case strings.Contains(lower, "exited"):
		return StateExited
	case strings.Contains(lower, "dead"):
		return StateDead
	case strings.Contains(lower, "created"):
		return StateCreated
	default:
		return StateUnknown
	}
}

func (s ContainerState) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateRestarting:
		return "restarting"
	case StateRemoving:
		return "removing"
	case StateExited:
		return "exited"
	case StateDead:
		return "dead"
	case StateCreated:
		return "created"
	default:
		return "unknown"
	}
}

// HealthStatus is the result of a container health check.
type HealthStatus int

const (
	HealthNone HealthStatus = iota // no health check configured
	HealthStarting
	HealthHealthy
	HealthUnhealthy
)

// ParseHealthStatus maps a daemon health string to a HealthStatus. The
// input is either a bare health value ("starting") or a list Status text
// where health appears as a suffix ("Up 3 hours (health: starting)").
// "starting" needs the health prefix in Status text so that a container in
// the Restarting state is not mistaken for one with a starting healthcheck.
// Returns HealthNone for anything unrecognized.
func ParseHealthStatus(s string) HealthStatus {
	lower := strings.ToLower(s)
	switch {
	case strings.Contains(lower, "unhealthy"):
		return HealthUnhealthy
	case strings.Contains(lower, "healthy"):
		return HealthHealthy
	case lower == "starting" || strings.Contains(lower, "health: starting"):
		return HealthStarting
	default:
		return HealthNone
	}
}

func (h HealthStatus) String() string {
	switch h {
	case HealthStarting:
		return "starting"
	case HealthHealthy:
		return "healthy"
	case HealthUnhealthy:
		return "unhealthy"
	default:
		return ""
	}
}

// ContainerStats holds the transient per-tick metrics for a container.
// Overwritten wholesale on every stat event.
type ContainerStats struct {
	CPUPercent    float64
	MemoryPercent float64
	// Network rates in bytes per second.
	NetworkRx float64
	NetworkTx float64
}

// Container is the state machine's record of one container. Producers hand
// it over on creation and never retain a reference afterwards.
type Container struct {
	ID      string
	Name    string
	State   ContainerState
	Health  HealthStatus
	Created time.Time // zero if unknown
	Stats   ContainerStats
	HostID  HostID
	// ViewerURL is the optional external log viewer base for this host.
	ViewerURL string
}

// Key returns the container's identity across hosts.
func (c *Container) Key() ContainerKey {
	return ContainerKey{HostID: c.HostID, ContainerID: c.ID}
}

// LogEntry is one parsed log line: daemon timestamp plus message body with
// the timestamp prefix stripped.
type LogEntry struct {
	Timestamp time.Time
	Message   string
}

// ContainerAction is a lifecycle command dispatched from the action menu.
type ContainerAction int

const (
	ActionStart ContainerAction = iota
	ActionStop
	ActionRestart
	ActionRemove
)

func (a ContainerAction) String() string {
	switch a {
	case ActionStart:
		return "Start"
	case ActionStop:
		return "Stop"
	case ActionRestart:
		return "Restart"
	case ActionRemove:
		return "Remove"
	default:
		return ""
	}
}

// AvailableActions returns the actions valid for a container state, in menu
// order.
func AvailableActions(state ContainerState) []ContainerAction {
	switch state {
	case StateRunning:
		return []ContainerAction{ActionStop, ActionRestart, ActionRemove}
	case StatePaused:
		return []ContainerAction{ActionStop, ActionRemove}
	case StateExited, StateCreated, StateDead:
		return []ContainerAction{ActionStart, ActionRemove}
	default:
		return nil
	}
}

// SortField selects the secondary sort key for the container list. Hosts
// always sort first.
type SortField int

const (
	SortUptime SortField = iota
	SortName
	SortCPU
	SortMemory
)

// Next cycles to the following sort field.
func (f SortField) Next() SortField {
	switch f {
	case SortUptime:
		return SortName
	case SortName:
		return SortCPU
	case SortCPU:
		return SortMemory
	default:
		return SortUptime
	}
}

// DefaultDirection returns the natural direction for a field: names read
// A-to-Z, everything else shows higher/newer first.
func (f SortField) DefaultDirection() SortDirection {
	if f == SortName {
		return SortAscending
	}
	return SortDescending
}

func (f SortField) String() string {
	switch f {
	case SortUptime:
		return "Uptime"
	case SortName:
		return "Name"
	case SortCPU:
		return "CPU"
	case SortMemory:
		return "Memory"
	default:
		return ""
	}
}

// SortDirection orders the active sort field.
type SortDirection int

const (
	SortAscending SortDirection = iota
	SortDescending
)

// Toggle flips the direction.
func (d SortDirection) Toggle() SortDirection {
	if d == SortAscending {
		return SortDescending
	}
	return SortAscending
}

// SortState combines the active field with its direction.
type SortState struct {
	Field     SortField
	Direction SortDirection
}

// NewSortState returns a SortState with the field's default direction.
func NewSortState(field SortField) SortState {
	return SortState{Field: field, Direction: field.DefaultDirection()}
}

// ViewKind tags the active view.
type ViewKind int

const (
	ViewContainerList ViewKind = iota
	ViewLogs
	ViewActionMenu
	ViewSearch
)

// ViewState is the active view plus, for container-scoped views, the key it
// was opened on.
type ViewState struct {
	Kind ViewKind
	Key  ContainerKey // set for ViewLogs and ViewActionMenu
}

// Host is the per-daemon surface the state machine drives. Implementations
// run all work asynchronously and report back through the event channel;
// none of these calls block.
type Host interface {
	ID() HostID
	// ViewerURL returns the external log viewer base, or "".
	ViewerURL() string
	// TailLogs fetches recent history for the container, emits it as one
	// LogBatchPrepend, then follows the live stream emitting LogLine events.
	// The returned func cancels the stream.
	TailLogs(containerID string, created time.Time) (cancel func())
	// FetchOlderLogs fetches log history older than oldest, sized by the
	// density of the currently loaded [oldest, newest] batch, and emits the
	// result as a LogBatchPrepend.
	FetchOlderLogs(containerID string, oldest, newest, created time.Time)
	// ExecuteAction dispatches a lifecycle command, reporting progress via
	// ActionInProgress/ActionSuccess/ActionError events.
	ExecuteAction(containerID string, action ContainerAction)
}

// Renderer draws the current state to the terminal. Called only from the
// consumer loop.
type Renderer interface {
	Render(s *AppState)
}
