package core

import (
	"log/slog"
	"os/exec"
	"runtime"
	"sort"
)

func (s *AppState) handleSelectPrevious() bool {
	if s.View.Kind != ViewContainerList || len(s.SortedKeys) == 0 {
		return false
	}
	if s.Selected > 0 {
		s.Selected--
		return true
	}
	return false
}

func (s *AppState) handleSelectNext() bool {
	if s.View.Kind != ViewContainerList || len(s.SortedKeys) == 0 {
		return false
	}
	if s.Selected < len(s.SortedKeys)-1 {
		s.Selected++
		return true
	}
	return false
}

// handleEnterPressed is context dependent: opens the log view from the list,
// executes from the action menu, applies the filter from search.
func (s *AppState) handleEnterPressed() bool {
	switch s.View.Kind {
	case ViewContainerList:
		return s.openLogView()
	case ViewSearch:
		return s.handleExitSearchMode()
	default:
		return false
	}
}

// handleExitView backs out one layer: help overlay, then the current view,
// landing on the container list.
func (s *AppState) handleExitView() bool {
	if s.ShowHelp {
		s.ShowHelp = false
		return true
	}
	switch s.View.Kind {
	case ViewLogs:
		s.closeLogView()
		s.View = ViewState{Kind: ViewContainerList}
		return true
	case ViewActionMenu:
		s.View = ViewState{Kind: ViewContainerList}
		return true
	case ViewSearch:
		return s.cancelSearch()
	default:
		return false
	}
}

func (s *AppState) handleCycleSortField() bool {
	if s.View.Kind != ViewContainerList {
		return false
	}
	f := s.Sort.Field.Next()
	s.Sort = SortState{Field: f, Direction: f.DefaultDirection()}
	s.rebuildList()
	return true
}

// handleSetSortField jumps straight to a field; pressing it again flips the
// direction.
func (s *AppState) handleSetSortField(field SortField) bool {
	if s.View.Kind != ViewContainerList {
		return false
	}
	if s.Sort.Field == field {
		s.Sort.Direction = s.Sort.Direction.Toggle()
	} else {
		s.Sort = SortState{Field: field, Direction: field.DefaultDirection()}
	}
	s.rebuildList()
	return true
}

func (s *AppState) handleToggleShowAll() bool {
	if s.View.Kind != ViewContainerList {
		return false
	}
	s.ShowAll = !s.ShowAll
	s.rebuildList()
	return true
}

// handleCycleHostFilter steps all -> host1 -> host2 -> ... -> all.
func (s *AppState) handleCycleHostFilter() bool {
	if s.View.Kind != ViewContainerList || len(s.Hosts) < 2 {
		return false
	}
	ids := s.hostIDs()
	if s.HostFilter == "" {
		s.HostFilter = ids[0]
	} else {
		next := ""
		for i, id := range ids {
			if id == s.HostFilter && i+1 < len(ids) {
				next = ids[i+1]
				break
			}
		}
		s.HostFilter = next
	}
	s.rebuildList()
	return true
}

func (s *AppState) hostIDs() []HostID {
	ids := make([]HostID, 0, len(s.Hosts))
	for id := range s.Hosts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// handleOpenExternalViewer opens the selected container in the configured
// web log viewer. Suppressed over SSH where there is no local browser.
func (s *AppState) handleOpenExternalViewer() bool {
	if s.View.Kind != ViewContainerList && s.View.Kind != ViewLogs {
		return false
	}
	if s.SSHSession {
		return false
	}
	c := s.SelectedContainer()
	if s.View.Kind == ViewLogs && s.Log != nil {
		c = s.Containers[s.Log.Key]
	}
	if c == nil || c.ViewerURL == "" {
		return false
	}
	url := c.ViewerURL + "/container/" + c.ID
	if s.OpenURL != nil {
		s.OpenURL(url)
	} else {
		openBrowser(url)
	}
	return false
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		slog.Warn("could not open browser", "url", url, "error", err)
	}
}
