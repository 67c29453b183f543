package core

// Event is the closed union carried by the event channel. Producers only
// ever send; the state machine is the single consumer. Per-producer order is
// preserved by the channel; nothing is guaranteed across producers, so every
// container-scoped event carries its ContainerKey and handlers treat unknown
// keys as no-ops.
type Event interface{ isEvent() }

// Producer events.

// InitialContainerList is the one-shot batch a host monitor emits after
// enumerating existing containers.
type InitialContainerList struct {
	HostID     HostID
	Containers []Container
}

// ContainerCreated reports a newly started container (host id travels inside
// the Container).
type ContainerCreated struct{ Container Container }

// ContainerDestroyed reports that a container stopped or was removed.
type ContainerDestroyed struct{ Key ContainerKey }

// ContainerStateChanged updates a tracked container's lifecycle state.
type ContainerStateChanged struct {
	Key   ContainerKey
	State ContainerState
}

// ContainerStat is a metrics tick for a running container.
type ContainerStat struct {
	Key   ContainerKey
	Stats ContainerStats
}

// ContainerHealthChanged updates a tracked container's health status.
type ContainerHealthChanged struct {
	Key    ContainerKey
	Health HealthStatus
}

// HostConnected folds a freshly connected host into the engine. Emitted
// before any container events from that host.
type HostConnected struct{ Host Host }

// ConnectionError reports a failed host connect or ping. Non-fatal; shown
// transiently.
type ConnectionError struct {
	HostID  HostID
	Message string
}

// LogLine is one live log line from the followed container.
type LogLine struct {
	Key   ContainerKey
	Entry LogEntry
}

// LogBatchPrepend carries a chunk of log history older than everything
// currently loaded. HasMore reports whether more history may exist beyond it.
type LogBatchPrepend struct {
	Key     ContainerKey
	Entries []LogEntry
	HasMore bool
}

// Action lifecycle reports. The state machine does not touch container state
// on these; the lifecycle monitor remains the single source of truth.
type ActionInProgress struct {
	Key    ContainerKey
	Action ContainerAction
}
type ActionSuccess struct {
	Key    ContainerKey
	Action ContainerAction
}
type ActionError struct {
	Key     ContainerKey
	Action  ContainerAction
	Message string
}

// User intents. The keyboard reader broadcasts these blindly; each handler
// applies only in the views where it makes sense.

type Quit struct{}
type Resize struct{}
type SelectPrevious struct{}
type SelectNext struct{}
type EnterPressed struct{}
type ExitView struct{}
type ScrollUp struct{}
type ScrollDown struct{}
type ScrollToTop struct{}
type ScrollToBottom struct{}
type ScrollPageUp struct{}
type ScrollPageDown struct{}
type RequestOlderLogs struct{ Key ContainerKey }
type OpenExternalViewer struct{}
type ToggleHelp struct{}
type CycleSortField struct{}
type SetSortField struct{ Field SortField }
type ToggleShowAll struct{}
type CycleHostFilter struct{}
type ShowActionMenu struct{}
type SelectActionUp struct{}
type SelectActionDown struct{}
type ExecuteAction struct{}
type EnterSearchMode struct{}
type ExitSearchMode struct{}

// SearchKeyEvent is a raw key routed to the search input while search mode
// is active: either one printable rune or a backspace.
type SearchKeyEvent struct {
	Rune      rune
	Backspace bool
}

func (InitialContainerList) isEvent()   {}
func (ContainerCreated) isEvent()       {}
func (ContainerDestroyed) isEvent()     {}
func (ContainerStateChanged) isEvent()  {}
func (ContainerStat) isEvent()          {}
func (ContainerHealthChanged) isEvent() {}
func (HostConnected) isEvent()          {}
func (ConnectionError) isEvent()        {}
func (LogLine) isEvent()                {}
func (LogBatchPrepend) isEvent()        {}
func (ActionInProgress) isEvent()       {}
func (ActionSuccess) isEvent()          {}
func (ActionError) isEvent()            {}
func (Quit) isEvent()                   {}
func (Resize) isEvent()                 {}
func (SelectPrevious) isEvent()         {}
func (SelectNext) isEvent()             {}
func (EnterPressed) isEvent()           {}
func (ExitView) isEvent()               {}
func (ScrollUp) isEvent()               {}
func (ScrollDown) isEvent()             {}
func (ScrollToTop) isEvent()            {}
func (ScrollToBottom) isEvent()         {}
func (ScrollPageUp) isEvent()           {}
func (ScrollPageDown) isEvent()         {}
func (RequestOlderLogs) isEvent()       {}
func (OpenExternalViewer) isEvent()     {}
func (ToggleHelp) isEvent()             {}
func (CycleSortField) isEvent()         {}
func (SetSortField) isEvent()           {}
func (ToggleShowAll) isEvent()          {}
func (CycleHostFilter) isEvent()        {}
func (ShowActionMenu) isEvent()         {}
func (SelectActionUp) isEvent()         {}
func (SelectActionDown) isEvent()       {}
func (ExecuteAction) isEvent()          {}
func (EnterSearchMode) isEvent()        {}
func (ExitSearchMode) isEvent()         {}
func (SearchKeyEvent) isEvent()         {}
