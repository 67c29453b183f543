package core

import "time"

// olderFetchThreshold is how close to the top of the buffer the cursor may
// get before another page of history is requested.
const olderFetchThreshold = 10

// LogState buffers the log view for one container. Entries are ordered
// oldest first; the tail appends at the end while pagination prepends at
// the front.
type LogState struct {
	Key     ContainerKey
	Entries []LogEntry

	// ScrollOffset is the index of the top visible line. Ignored while
	// AtBottom, which pins the view to the newest line and keeps it there
	// as the tail grows.
	ScrollOffset int
	AtBottom     bool

	// HasMore is whether older history may still exist upstream.
	// FetchingOlder guards against overlapping backfill requests.
	HasMore       bool
	FetchingOlder bool

	// Loaded flips once the initial batch has arrived; until then the view
	// shows a loading notice and prepends are treated as the first fill.
	Loaded bool

	cancelTail func()
}

// openLogView starts tailing the selected container and switches views.
func (s *AppState) openLogView() bool {
	c := s.SelectedContainer()
	if c == nil {
		return false
	}
	host, ok := s.Hosts[c.HostID]
	if !ok {
		return false
	}
	// Replacing the log state always cancels the previous tail first.
	s.closeLogView()
	s.Log = &LogState{
		Key:        c.Key(),
		AtBottom:   true,
		cancelTail: host.TailLogs(c.ID, c.Created),
	}
	s.View = ViewState{Kind: ViewLogs, Key: c.Key()}
	return true
}

// closeLogView stops the tail and drops the buffer.
func (s *AppState) closeLogView() {
	if s.Log == nil {
		return
	}
	if s.Log.cancelTail != nil {
		s.Log.cancelTail()
	}
	s.Log = nil
}

func (s *AppState) handleLogLine(key ContainerKey, entry LogEntry) bool {
	if s.Log == nil || s.Log.Key != key {
		return false
	}
	s.Log.Entries = append(s.Log.Entries, entry)
	return s.View.Kind == ViewLogs
}

// handleLogBatchPrepend folds a history batch into the buffer. The first
// batch fills the view; later ones extend it upward while preserving what
// the user is looking at.
func (s *AppState) handleLogBatchPrepend(key ContainerKey, entries []LogEntry, hasMore bool) bool {
	l := s.Log
	if l == nil || l.Key != key {
		// Batch for a container whose view was already closed.
		return false
	}
	if !l.Loaded {
		l.Entries = append(entries, l.Entries...)
		l.Loaded = true
		l.HasMore = hasMore
		return true
	}
	l.FetchingOlder = false
	l.HasMore = hasMore
	if len(entries) == 0 {
		return true
	}
	l.Entries = append(entries, append([]LogEntry(nil), l.Entries...)...)
	if !l.AtBottom {
		// Shift the viewport down by the prepended count so the visible
		// lines do not jump.
		l.ScrollOffset += len(entries)
	}
	return true
}

// maxScrollOffset is the offset at which the last line is the bottom of the
// viewport.
func (s *AppState) maxScrollOffset() int {
	if s.Log == nil {
		return 0
	}
	max := len(s.Log.Entries) - s.ViewportHeight
	if max < 0 {
		max = 0
	}
	return max
}

func (s *AppState) handleScrollUp() bool {
	if s.View.Kind != ViewLogs || s.Log == nil {
		return false
	}
	l := s.Log
	if l.AtBottom {
		l.AtBottom = false
		l.ScrollOffset = s.maxScrollOffset()
	}
	if l.ScrollOffset > 0 {
		l.ScrollOffset--
	}
	s.maybeRequestOlder()
	return true
}

func (s *AppState) handleScrollDown() bool {
	if s.View.Kind != ViewLogs || s.Log == nil {
		return false
	}
	l := s.Log
	if l.AtBottom {
		return false
	}
	l.ScrollOffset++
	if l.ScrollOffset >= s.maxScrollOffset() {
		l.ScrollOffset = s.maxScrollOffset()
		l.AtBottom = true
	}
	return true
}

func (s *AppState) handleScrollToTop() bool {
	if s.View.Kind != ViewLogs || s.Log == nil {
		return false
	}
	s.Log.AtBottom = false
	s.Log.ScrollOffset = 0
	s.maybeRequestOlder()
	return true
}

func (s *AppState) handleScrollToBottom() bool {
	if s.View.Kind != ViewLogs || s.Log == nil {
		return false
	}
	s.Log.AtBottom = true
	s.Log.ScrollOffset = s.maxScrollOffset()
	return true
}

func (s *AppState) handleScrollPageUp() bool {
	if s.View.Kind != ViewLogs || s.Log == nil {
		return false
	}
	l := s.Log
	if l.AtBottom {
		l.AtBottom = false
		l.ScrollOffset = s.maxScrollOffset()
	}
	l.ScrollOffset -= s.ViewportHeight / 2
	if l.ScrollOffset < 0 {
		l.ScrollOffset = 0
	}
	s.maybeRequestOlder()
	return true
}

func (s *AppState) handleScrollPageDown() bool {
	if s.View.Kind != ViewLogs || s.Log == nil {
		return false
	}
	l := s.Log
	if l.AtBottom {
		return false
	}
	l.ScrollOffset += s.ViewportHeight / 2
	if l.ScrollOffset >= s.maxScrollOffset() {
		l.ScrollOffset = s.maxScrollOffset()
		l.AtBottom = true
	}
	return true
}

// maybeRequestOlder kicks off a backfill once the viewport nears the top of
// the buffer. At most one request is in flight per view.
func (s *AppState) maybeRequestOlder() {
	l := s.Log
	if l == nil || !l.Loaded || !l.HasMore || l.FetchingOlder {
		return
	}
	if l.ScrollOffset > olderFetchThreshold {
		return
	}
	s.requestOlder()
}

func (s *AppState) requestOlder() {
	l := s.Log
	if len(l.Entries) == 0 {
		return
	}
	host, ok := s.Hosts[l.Key.HostID]
	if !ok {
		return
	}
	var created time.Time
	if c, ok := s.Containers[l.Key]; ok {
		created = c.Created
	}
	l.FetchingOlder = true
	host.FetchOlderLogs(l.Key.ContainerID, l.Entries[0].Timestamp, l.Entries[len(l.Entries)-1].Timestamp, created)
}

func (s *AppState) handleRequestOlderLogs(key ContainerKey) bool {
	l := s.Log
	if l == nil || l.Key != key || !l.Loaded || !l.HasMore || l.FetchingOlder {
		return false
	}
	s.requestOlder()
	return false
}
