package core

import (
	"reflect"
	"testing"
	"time"
)

type fakeHost struct {
	id          HostID
	viewerURL   string
	tailCalls   int
	cancelCalls int
	fetchCalls  []fetchCall
	actions     []ContainerAction
}

type fetchCall struct {
	containerID    string
	oldest, newest time.Time
	created        time.Time
}

func (h *fakeHost) ID() HostID        { return h.id }
func (h *fakeHost) ViewerURL() string { return h.viewerURL }

func (h *fakeHost) TailLogs(containerID string, created time.Time) func() {
	h.tailCalls++
	return func() { h.cancelCalls++ }
}

func (h *fakeHost) FetchOlderLogs(containerID string, oldest, newest, created time.Time) {
	h.fetchCalls = append(h.fetchCalls, fetchCall{containerID, oldest, newest, created})
}

func (h *fakeHost) ExecuteAction(containerID string, action ContainerAction) {
	h.actions = append(h.actions, action)
}

func newTestState(hosts ...*fakeHost) *AppState {
	s := NewAppState()
	s.SSHSession = false
	for _, h := range hosts {
		s.Hosts[h.id] = h
	}
	return s
}

func testContainer(host HostID, id, name string, state ContainerState, created time.Time) Container {
	return Container{ID: id, Name: name, State: state, Created: created, HostID: host}
}

func TestInitialListSelectsFirst(t *testing.T) {
	s := newTestState(&fakeHost{id: "local"})
	now := time.Now()

	redraw := s.HandleEvent(InitialContainerList{HostID: "local", Containers: []Container{
		testContainer("local", "aaa", "nginx", StateRunning, now),
		testContainer("local", "bbb", "redis", StateRunning, now.Add(-time.Hour)),
	}})
	if !redraw {
		t.Fatal("initial list should force a redraw")
	}
	if len(s.SortedKeys) != 2 {
		t.Fatalf("got %d visible containers, want 2", len(s.SortedKeys))
	}
	if s.Selected != 0 {
		t.Fatalf("selected = %d, want 0", s.Selected)
	}
	// Default sort is uptime descending, newest created first.
	if s.SortedKeys[0].ContainerID != "aaa" {
		t.Fatalf("first key = %q, want aaa", s.SortedKeys[0].ContainerID)
	}
}

func TestInitialListReplacesHostContainers(t *testing.T) {
	s := newTestState(&fakeHost{id: "local"})
	now := time.Now()

	s.HandleEvent(InitialContainerList{HostID: "local", Containers: []Container{
		testContainer("local", "old", "stale", StateRunning, now),
	}})
	s.HandleEvent(InitialContainerList{HostID: "local", Containers: []Container{
		testContainer("local", "new", "fresh", StateRunning, now),
	}})

	if _, ok := s.Containers[ContainerKey{"local", "old"}]; ok {
		t.Fatal("reconnect left a stale container behind")
	}
	if len(s.SortedKeys) != 1 || s.SortedKeys[0].ContainerID != "new" {
		t.Fatalf("sorted keys = %v, want [new]", s.SortedKeys)
	}
}

func TestShowAllToggle(t *testing.T) {
	s := newTestState(&fakeHost{id: "local"})
	now := time.Now()

	s.HandleEvent(InitialContainerList{HostID: "local", Containers: []Container{
		testContainer("local", "aaa", "nginx", StateRunning, now),
		testContainer("local", "bbb", "redis", StateExited, now.Add(-time.Minute)),
	}})
	if len(s.SortedKeys) != 1 {
		t.Fatalf("running-only view has %d entries, want 1", len(s.SortedKeys))
	}

	s.HandleEvent(ToggleShowAll{})
	if len(s.SortedKeys) != 2 {
		t.Fatalf("show-all view has %d entries, want 2", len(s.SortedKeys))
	}

	s.HandleEvent(ToggleShowAll{})
	if len(s.SortedKeys) != 1 || s.SortedKeys[0].ContainerID != "aaa" {
		t.Fatalf("after toggling back got %v, want only nginx", s.SortedKeys)
	}
}

func TestDestroyedClampsSelection(t *testing.T) {
	s := newTestState(&fakeHost{id: "local"})
	now := time.Now()

	s.HandleEvent(InitialContainerList{HostID: "local", Containers: []Container{
		testContainer("local", "aaa", "one", StateRunning, now),
		testContainer("local", "bbb", "two", StateRunning, now.Add(-time.Minute)),
	}})
	s.HandleEvent(SelectNext{})
	if s.Selected != 1 {
		t.Fatalf("selected = %d, want 1", s.Selected)
	}

	s.HandleEvent(ContainerDestroyed{Key: ContainerKey{"local", "bbb"}})
	if s.Selected != 0 {
		t.Fatalf("selected = %d after destroy, want 0", s.Selected)
	}

	s.HandleEvent(ContainerDestroyed{Key: ContainerKey{"local", "aaa"}})
	if s.Selected != -1 {
		t.Fatalf("selected = %d on empty list, want -1", s.Selected)
	}
}

func TestDestroyUnknownIsIgnored(t *testing.T) {
	s := newTestState(&fakeHost{id: "local"})
	if s.HandleEvent(ContainerDestroyed{Key: ContainerKey{"local", "ghost"}}) {
		t.Fatal("destroying an unknown container should not redraw")
	}
}

func TestStatDoesNotForceRedraw(t *testing.T) {
	s := newTestState(&fakeHost{id: "local"})
	now := time.Now()
	s.HandleEvent(InitialContainerList{HostID: "local", Containers: []Container{
		testContainer("local", "aaa", "nginx", StateRunning, now),
	}})

	stats := ContainerStats{CPUPercent: 12.5, MemoryPercent: 3.1}
	if s.HandleEvent(ContainerStat{Key: ContainerKey{"local", "aaa"}, Stats: stats}) {
		t.Fatal("stat tick should not force a redraw")
	}
	got := s.Containers[ContainerKey{"local", "aaa"}].Stats
	if !reflect.DeepEqual(got, stats) {
		t.Fatalf("stats = %+v, want %+v", got, stats)
	}
}

func TestStateChangeClearsStats(t *testing.T) {
	s := newTestState(&fakeHost{id: "local"})
	now := time.Now()
	s.HandleEvent(InitialContainerList{HostID: "local", Containers: []Container{
		testContainer("local", "aaa", "nginx", StateRunning, now),
	}})
	key := ContainerKey{"local", "aaa"}
	s.HandleEvent(ContainerStat{Key: key, Stats: ContainerStats{CPUPercent: 50}})

	s.ShowAll = true
	if !s.HandleEvent(ContainerStateChanged{Key: key, State: StateExited}) {
		t.Fatal("state change should redraw")
	}
	if s.Containers[key].Stats != (ContainerStats{}) {
		t.Fatal("stats should be cleared when the container stops")
	}
}

func TestSortHostDominates(t *testing.T) {
	s := newTestState(&fakeHost{id: "alpha"}, &fakeHost{id: "beta"})
	now := time.Now()

	s.HandleEvent(InitialContainerList{HostID: "beta", Containers: []Container{
		testContainer("beta", "b1", "aardvark", StateRunning, now),
	}})
	s.HandleEvent(InitialContainerList{HostID: "alpha", Containers: []Container{
		testContainer("alpha", "a1", "zebra", StateRunning, now.Add(-time.Hour)),
	}})

	s.HandleEvent(SetSortField{Field: SortName})
	if s.SortedKeys[0].HostID != "alpha" {
		t.Fatalf("host order should dominate sort field, got %v first", s.SortedKeys[0])
	}
}

func TestSortMissingCreatedAlwaysLast(t *testing.T) {
	s := newTestState(&fakeHost{id: "local"})
	now := time.Now()

	s.HandleEvent(InitialContainerList{HostID: "local", Containers: []Container{
		testContainer("local", "dated", "dated", StateRunning, now),
		testContainer("local", "undated", "undated", StateRunning, time.Time{}),
	}})

	for _, dir := range []SortDirection{SortDescending, SortAscending} {
		s.Sort = SortState{Field: SortUptime, Direction: dir}
		s.rebuildList()
		if s.SortedKeys[len(s.SortedKeys)-1].ContainerID != "undated" {
			t.Fatalf("direction %v: undated container should sort last, got %v", dir, s.SortedKeys)
		}
	}
}

func TestSetSortFieldTogglesDirection(t *testing.T) {
	s := newTestState(&fakeHost{id: "local"})

	s.HandleEvent(SetSortField{Field: SortCPU})
	if s.Sort.Field != SortCPU || s.Sort.Direction != SortDescending {
		t.Fatalf("sort = %+v, want cpu descending", s.Sort)
	}
	s.HandleEvent(SetSortField{Field: SortCPU})
	if s.Sort.Direction != SortAscending {
		t.Fatalf("repeated press should flip direction, got %+v", s.Sort)
	}
	s.HandleEvent(SetSortField{Field: SortName})
	if s.Sort.Field != SortName || s.Sort.Direction != SortAscending {
		t.Fatalf("sort = %+v, want name ascending", s.Sort)
	}
}

func TestSearchFiltersPerKeystroke(t *testing.T) {
	s := newTestState(&fakeHost{id: "local"})
	now := time.Now()
	s.HandleEvent(InitialContainerList{HostID: "local", Containers: []Container{
		testContainer("local", "aaa", "nginx", StateRunning, now),
		testContainer("local", "bbb", "redis", StateRunning, now.Add(-time.Minute)),
	}})

	s.HandleEvent(EnterSearchMode{})
	if s.View.Kind != ViewSearch {
		t.Fatalf("view = %v, want search", s.View.Kind)
	}
	for _, r := range "red" {
		s.HandleEvent(SearchKeyEvent{Rune: r})
	}
	if len(s.SortedKeys) != 1 || s.SortedKeys[0].ContainerID != "bbb" {
		t.Fatalf("search 'red' shows %v, want only redis", s.SortedKeys)
	}

	s.HandleEvent(SearchKeyEvent{Backspace: true})
	if s.SearchText != "re" {
		t.Fatalf("search text = %q after backspace, want %q", s.SearchText, "re")
	}

	// Enter applies the filter and returns to the list.
	s.HandleEvent(EnterPressed{})
	if s.View.Kind != ViewContainerList {
		t.Fatalf("view = %v after enter, want container list", s.View.Kind)
	}
	if len(s.SortedKeys) != 1 {
		t.Fatal("filter should stay applied after leaving search")
	}

	// Esc from the list level does not touch the text, but esc inside
	// search discards it.
	s.HandleEvent(EnterSearchMode{})
	s.HandleEvent(ExitView{})
	if s.SearchText != "" || len(s.SortedKeys) != 2 {
		t.Fatalf("esc should clear the search, text=%q keys=%v", s.SearchText, s.SortedKeys)
	}
}

func TestSearchGateToggles(t *testing.T) {
	s := newTestState(&fakeHost{id: "local"})
	var gate []bool
	s.SetTextInput = func(active bool) { gate = append(gate, active) }

	s.HandleEvent(EnterSearchMode{})
	s.HandleEvent(ExitSearchMode{})
	if !reflect.DeepEqual(gate, []bool{true, false}) {
		t.Fatalf("gate calls = %v, want [true false]", gate)
	}
}

func TestHostFilterCycles(t *testing.T) {
	s := newTestState(&fakeHost{id: "alpha"}, &fakeHost{id: "beta"})
	now := time.Now()
	s.HandleEvent(InitialContainerList{HostID: "alpha", Containers: []Container{
		testContainer("alpha", "a1", "one", StateRunning, now),
	}})
	s.HandleEvent(InitialContainerList{HostID: "beta", Containers: []Container{
		testContainer("beta", "b1", "two", StateRunning, now),
	}})

	s.HandleEvent(CycleHostFilter{})
	if s.HostFilter != "alpha" || len(s.SortedKeys) != 1 {
		t.Fatalf("filter = %q keys = %v, want alpha only", s.HostFilter, s.SortedKeys)
	}
	s.HandleEvent(CycleHostFilter{})
	if s.HostFilter != "beta" {
		t.Fatalf("filter = %q, want beta", s.HostFilter)
	}
	s.HandleEvent(CycleHostFilter{})
	if s.HostFilter != "" || len(s.SortedKeys) != 2 {
		t.Fatalf("filter = %q, want all hosts again", s.HostFilter)
	}
}

func TestConnectionErrorExpires(t *testing.T) {
	s := newTestState()
	base := time.Now()
	s.now = func() time.Time { return base }

	s.HandleEvent(ConnectionError{HostID: "remote", Message: "dial tcp: connection refused"})
	if got := s.ActiveConnectionErrors(); len(got) != 1 {
		t.Fatalf("active errors = %v, want one", got)
	}

	base = base.Add(11 * time.Second)
	if got := s.ActiveConnectionErrors(); len(got) != 0 {
		t.Fatalf("errors should expire after 10s, got %v", got)
	}
}

func TestActionMenuFlow(t *testing.T) {
	h := &fakeHost{id: "local"}
	s := newTestState(h)
	now := time.Now()
	s.HandleEvent(InitialContainerList{HostID: "local", Containers: []Container{
		testContainer("local", "aaa", "nginx", StateRunning, now),
	}})

	s.HandleEvent(ShowActionMenu{})
	if s.View.Kind != ViewActionMenu {
		t.Fatalf("view = %v, want action menu", s.View.Kind)
	}

	// Running containers offer stop, restart, remove.
	s.HandleEvent(SelectActionDown{})
	s.HandleEvent(ExecuteAction{})
	if !reflect.DeepEqual(h.actions, []ContainerAction{ActionRestart}) {
		t.Fatalf("executed %v, want [restart]", h.actions)
	}
	if s.View.Kind != ViewContainerList {
		t.Fatalf("view = %v after execute, want container list", s.View.Kind)
	}
}

func TestActionMenuBounds(t *testing.T) {
	s := newTestState(&fakeHost{id: "local"})
	now := time.Now()
	s.ShowAll = true
	s.HandleEvent(InitialContainerList{HostID: "local", Containers: []Container{
		testContainer("local", "aaa", "stopped", StateExited, now),
	}})
	s.HandleEvent(ShowActionMenu{})

	// Exited containers offer start and remove: two entries.
	s.HandleEvent(SelectActionDown{})
	if s.HandleEvent(SelectActionDown{}) {
		t.Fatal("cursor should stop at the last action")
	}
	if s.ActionIndex != 1 {
		t.Fatalf("action index = %d, want 1", s.ActionIndex)
	}
	if s.HandleEvent(SelectActionUp{}); s.ActionIndex != 0 {
		t.Fatalf("action index = %d, want 0", s.ActionIndex)
	}
}

func TestDestroyedClosesItsViews(t *testing.T) {
	h := &fakeHost{id: "local"}
	s := newTestState(h)
	now := time.Now()
	s.HandleEvent(InitialContainerList{HostID: "local", Containers: []Container{
		testContainer("local", "aaa", "nginx", StateRunning, now),
	}})

	s.HandleEvent(EnterPressed{})
	if s.View.Kind != ViewLogs || h.tailCalls != 1 {
		t.Fatalf("enter should open logs and start a tail, view=%v tails=%d", s.View.Kind, h.tailCalls)
	}

	s.HandleEvent(ContainerDestroyed{Key: ContainerKey{"local", "aaa"}})
	if s.View.Kind != ViewContainerList || s.Log != nil {
		t.Fatal("destroying the viewed container should close the log view")
	}
	if h.cancelCalls != 1 {
		t.Fatalf("tail cancel calls = %d, want 1", h.cancelCalls)
	}
}

func TestMapAndProjectionStayConsistent(t *testing.T) {
	s := newTestState(&fakeHost{id: "local"})
	now := time.Now()
	s.ShowAll = true

	for i, id := range []string{"a", "b", "c", "d"} {
		s.HandleEvent(ContainerCreated{Container: testContainer("local", id, "c"+id, StateRunning, now.Add(time.Duration(i)*time.Second))})
	}
	// Duplicate create and untracked destroy are both harmless.
	s.HandleEvent(ContainerCreated{Container: testContainer("local", "a", "ca", StateRunning, now)})
	s.HandleEvent(ContainerDestroyed{Key: ContainerKey{"local", "ghost"}})
	s.HandleEvent(ContainerDestroyed{Key: ContainerKey{"local", "b"}})
	s.HandleEvent(ContainerDestroyed{Key: ContainerKey{"local", "d"}})

	if len(s.SortedKeys) != len(s.Containers) {
		t.Fatalf("projection has %d keys, map has %d", len(s.SortedKeys), len(s.Containers))
	}
	seen := make(map[ContainerKey]bool)
	for _, key := range s.SortedKeys {
		if seen[key] {
			t.Fatalf("duplicate key %v in projection", key)
		}
		seen[key] = true
		if _, ok := s.Containers[key]; !ok {
			t.Fatalf("projection key %v missing from map", key)
		}
	}
}

func TestOpenExternalViewer(t *testing.T) {
	h := &fakeHost{id: "local", viewerURL: "https://logs.example.com"}
	s := newTestState(h)
	now := time.Now()
	var opened []string
	s.OpenURL = func(url string) { opened = append(opened, url) }

	c := testContainer("local", "abcdef123456", "nginx", StateRunning, now)
	c.ViewerURL = "https://logs.example.com"
	s.HandleEvent(InitialContainerList{HostID: "local", Containers: []Container{c}})

	s.HandleEvent(OpenExternalViewer{})
	want := []string{"https://logs.example.com/container/abcdef123456"}
	if !reflect.DeepEqual(opened, want) {
		t.Fatalf("opened %v, want %v", opened, want)
	}

	s.SSHSession = true
	s.HandleEvent(OpenExternalViewer{})
	if len(opened) != 1 {
		t.Fatal("viewer should not open over an ssh session")
	}
}
