package core

import (
	"log/slog"
	"os"
	"sort"
	"time"
)

// connectionError is a transient host failure shown in the banner until it
// expires.
type connectionError struct {
	Message string
	At      time.Time
}

// connectionErrorTTL is how long a connection error stays visible.
const connectionErrorTTL = 10 * time.Second

// AppState owns every piece of mutable UI-relevant state. It is mutated only
// from the consumer loop, so none of it is locked. Handlers never block;
// anything that touches a daemon is delegated to the Host implementations
// which report back through the event channel.
type AppState struct {
	// Containers indexed by (host, id), plus the filtered+sorted projection
	// the table renders from. The two are rebuilt together in the same
	// transition; SortedKeys never references a key missing from Containers.
	Containers map[ContainerKey]*Container
	SortedKeys []ContainerKey

	// Selected is the index into SortedKeys, or -1 when the list is empty.
	Selected int

	View     ViewState
	ShowHelp bool

	Sort    SortState
	ShowAll bool

	// SearchText filters by substring against name, id, and host; applied
	// live on every keystroke.
	SearchText string

	// HostFilter narrows the list to one host ("" = all hosts).
	HostFilter HostID

	// Log is the buffer for the currently viewed container, nil outside the
	// log view.
	Log *LogState

	// ActionIndex is the selection inside the action menu.
	ActionIndex int

	// Hosts holds every successfully connected daemon, folded in as
	// connections succeed.
	Hosts map[HostID]Host

	ConnectionErrors map[HostID]connectionError

	ShouldQuit bool

	// ViewportHeight is the last content height reported by the renderer,
	// used for page scrolling.
	ViewportHeight int

	// SSHSession disables opening external URLs when the process runs over
	// SSH.
	SSHSession bool

	// OpenURL launches the platform browser. Injectable for tests.
	OpenURL func(url string)

	// SetTextInput flips the keyboard reader between intent mode and raw
	// text mode for the search bar. Optional.
	SetTextInput func(active bool)

	now func() time.Time
}

// NewAppState creates an empty state machine.
func NewAppState() *AppState {
	_, ssh1 := os.LookupEnv("SSH_CLIENT")
	_, ssh2 := os.LookupEnv("SSH_TTY")
	_, ssh3 := os.LookupEnv("SSH_CONNECTION")

	return &AppState{
		Containers:       make(map[ContainerKey]*Container),
		Selected:         -1,
		View:             ViewState{Kind: ViewContainerList},
		Sort:             NewSortState(SortUptime),
		Hosts:            make(map[HostID]Host),
		ConnectionErrors: make(map[HostID]connectionError),
		SSHSession:       ssh1 || ssh2 || ssh3,
		ViewportHeight:   24,
		now:              time.Now,
	}
}

// HandleEvent applies one event and reports whether the UI must be redrawn
// immediately. Stat ticks return false so bursts ride the periodic redraw
// instead of forcing frames.
func (s *AppState) HandleEvent(ev Event) bool {
	switch ev := ev.(type) {
	case ContainerStat:
		return s.handleContainerStat(ev.Key, ev.Stats)
	case LogLine:
		return s.handleLogLine(ev.Key, ev.Entry)
	case LogBatchPrepend:
		return s.handleLogBatchPrepend(ev.Key, ev.Entries, ev.HasMore)
	case InitialContainerList:
		return s.handleInitialContainerList(ev.HostID, ev.Containers)
	case ContainerCreated:
		return s.handleContainerCreated(ev.Container)
	case ContainerDestroyed:
		return s.handleContainerDestroyed(ev.Key)
	case ContainerStateChanged:
		return s.handleContainerStateChanged(ev.Key, ev.State)
	case ContainerHealthChanged:
		return s.handleContainerHealthChanged(ev.Key, ev.Health)
	case HostConnected:
		return s.handleHostConnected(ev.Host)
	case ConnectionError:
		return s.handleConnectionError(ev.HostID, ev.Message)
	case Quit:
		s.ShouldQuit = true
		return false
	case Resize:
		return true
	case SelectPrevious:
		return s.handleSelectPrevious()
	case SelectNext:
		return s.handleSelectNext()
	case EnterPressed:
		return s.handleEnterPressed()
	case ExitView:
		return s.handleExitView()
	case ScrollUp:
		return s.handleScrollUp()
	case ScrollDown:
		return s.handleScrollDown()
	case ScrollToTop:
		return s.handleScrollToTop()
	case ScrollToBottom:
		return s.handleScrollToBottom()
	case ScrollPageUp:
		return s.handleScrollPageUp()
	case ScrollPageDown:
		return s.handleScrollPageDown()
	case RequestOlderLogs:
		return s.handleRequestOlderLogs(ev.Key)
	case OpenExternalViewer:
		return s.handleOpenExternalViewer()
	case ToggleHelp:
		s.ShowHelp = !s.ShowHelp
		return true
	case CycleSortField:
		return s.handleCycleSortField()
	case SetSortField:
		return s.handleSetSortField(ev.Field)
	case ToggleShowAll:
		return s.handleToggleShowAll()
	case CycleHostFilter:
		return s.handleCycleHostFilter()
	case ShowActionMenu:
		return s.handleShowActionMenu()
	case SelectActionUp:
		return s.handleSelectActionUp()
	case SelectActionDown:
		return s.handleSelectActionDown()
	case ExecuteAction:
		return s.handleExecuteAction()
	case ActionInProgress, ActionSuccess:
		// Container state catches up via the lifecycle monitor's
		// start/die events; nothing to mutate here.
		return false
	case ActionError:
		slog.Warn("container action failed", "container", ev.Key.ContainerID, "action", ev.Action, "error", ev.Message)
		return false
	case EnterSearchMode:
		return s.handleEnterSearchMode()
	case ExitSearchMode:
		return s.handleExitSearchMode()
	case SearchKeyEvent:
		return s.handleSearchKeyEvent(ev)
	default:
		return false
	}
}

func (s *AppState) handleHostConnected(h Host) bool {
	if h == nil {
		return false
	}
	s.Hosts[h.ID()] = h
	delete(s.ConnectionErrors, h.ID())
	return true
}

func (s *AppState) handleConnectionError(hostID HostID, message string) bool {
	s.ConnectionErrors[hostID] = connectionError{Message: message, At: s.now()}
	s.pruneConnectionErrors()
	return true
}

// pruneConnectionErrors drops errors past their display window.
func (s *AppState) pruneConnectionErrors() {
	cutoff := s.now().Add(-connectionErrorTTL)
	for id, e := range s.ConnectionErrors {
		if e.At.Before(cutoff) {
			delete(s.ConnectionErrors, id)
		}
	}
}

// ActiveConnectionErrors returns unexpired errors sorted by host for a
// stable banner.
func (s *AppState) ActiveConnectionErrors() []string {
	s.pruneConnectionErrors()
	ids := make([]string, 0, len(s.ConnectionErrors))
	for id := range s.ConnectionErrors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id+": "+s.ConnectionErrors[id].Message)
	}
	return out
}

// SelectedContainer returns the container under the cursor, or nil.
func (s *AppState) SelectedContainer() *Container {
	if s.Selected < 0 || s.Selected >= len(s.SortedKeys) {
		return nil
	}
	return s.Containers[s.SortedKeys[s.Selected]]
}

func (s *AppState) setTextInput(active bool) {
	if s.SetTextInput != nil {
		s.SetTextInput(active)
	}
}
