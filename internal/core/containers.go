package core

import (
	"strings"
)

func (s *AppState) handleInitialContainerList(hostID HostID, list []Container) bool {
	// Replace everything previously known for this host so a reconnect
	// cannot leave ghosts behind.
	for key := range s.Containers {
		if key.HostID == hostID {
			delete(s.Containers, key)
		}
	}
	for i := range list {
		c := list[i]
		s.Containers[c.Key()] = &c
	}
	s.rebuildList()
	return true
}

func (s *AppState) handleContainerCreated(c Container) bool {
	s.Containers[c.Key()] = &c
	s.rebuildList()
	return true
}

func (s *AppState) handleContainerDestroyed(key ContainerKey) bool {
	if _, ok := s.Containers[key]; !ok {
		return false
	}
	delete(s.Containers, key)
	// A destroyed container's log view is useless; fall back to the list.
	if s.Log != nil && s.Log.Key == key {
		s.closeLogView()
		s.View = ViewState{Kind: ViewContainerList}
	}
	if s.View.Kind == ViewActionMenu && s.View.Key == key {
		s.View = ViewState{Kind: ViewContainerList}
	}
	s.rebuildList()
	return true
}

func (s *AppState) handleContainerStateChanged(key ContainerKey, state ContainerState) bool {
	c, ok := s.Containers[key]
	if !ok || c.State == state {
		return false
	}
	c.State = state
	if state != StateRunning {
		c.Stats = ContainerStats{}
	}
	s.rebuildList()
	return true
}

func (s *AppState) handleContainerStat(key ContainerKey, stats ContainerStats) bool {
	c, ok := s.Containers[key]
	if !ok {
		return false
	}
	c.Stats = stats
	if s.Sort.Field == SortCPU || s.Sort.Field == SortMemory {
		s.rebuildList()
	}
	// Stat ticks arrive every second per running container; let the
	// periodic redraw pick them up.
	return false
}

func (s *AppState) handleContainerHealthChanged(key ContainerKey, health HealthStatus) bool {
	c, ok := s.Containers[key]
	if !ok || c.Health == health {
		return false
	}
	c.Health = health
	return true
}

// rebuildList recomputes the visible projection: filter, sort, then clamp
// the selection. Every mutation of the container map funnels through here.
func (s *AppState) rebuildList() {
	keys := make([]ContainerKey, 0, len(s.Containers))
	for key, c := range s.Containers {
		if s.matchesFilters(c) {
			keys = append(keys, key)
		}
	}
	s.sortKeys(keys)
	s.SortedKeys = keys
	s.adjustSelection()
}

func (s *AppState) matchesFilters(c *Container) bool {
	if !s.ShowAll && c.State != StateRunning {
		return false
	}
	if s.HostFilter != "" && c.HostID != s.HostFilter {
		return false
	}
	if s.SearchText != "" {
		needle := strings.ToLower(s.SearchText)
		if !strings.Contains(strings.ToLower(c.Name), needle) &&
			!strings.Contains(strings.ToLower(c.ID), needle) &&
			!strings.Contains(strings.ToLower(string(c.HostID)), needle) {
			return false
		}
	}
	return true
}

// sortKeys orders by host first, then the active field. Containers with an
// unknown creation time sort after dated ones regardless of direction.
func (s *AppState) sortKeys(keys []ContainerKey) {
	field, dir := s.Sort.Field, s.Sort.Direction
	lessFn := func(a, b *Container) int {
		switch field {
		case SortName:
			return strings.Compare(a.Name, b.Name)
		case SortCPU:
			return compareFloat(a.Stats.CPUPercent, b.Stats.CPUPercent)
		case SortMemory:
			return compareFloat(a.Stats.MemoryPercent, b.Stats.MemoryPercent)
		default: // SortUptime
			return compareCreated(a, b)
		}
	}
	stableSortKeys(keys, func(ka, kb ContainerKey) bool {
		if ka.HostID != kb.HostID {
			return ka.HostID < kb.HostID
		}
		a, b := s.Containers[ka], s.Containers[kb]
		if field == SortUptime {
			// Undated entries pin to the end in either direction.
			az, bz := a.Created.IsZero(), b.Created.IsZero()
			if az != bz {
				return bz
			}
			if az && bz {
				return false
			}
		}
		cmp := lessFn(a, b)
		if dir == SortDescending {
			cmp = -cmp
		}
		return cmp < 0
	})
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// compareCreated treats newer-created as greater, so the default descending
// direction shows the newest containers first.
func compareCreated(a, b *Container) int {
	switch {
	case a.Created.Before(b.Created):
		return -1
	case a.Created.After(b.Created):
		return 1
	default:
		return 0
	}
}

func stableSortKeys(keys []ContainerKey, less func(a, b ContainerKey) bool) {
	// Insertion sort keeps equal elements in place; lists are small enough
	// that O(n^2) never shows up.
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && less(keys[j], keys[j-1]); j-- {
			keys[j], keys[j-1] = keys[j-1], keys[j]
		}
	}
}

// adjustSelection keeps the cursor valid across list changes: clamp to the
// end when the list shrinks, select the first entry when one appears, clear
// it when the list empties.
func (s *AppState) adjustSelection() {
	switch {
	case len(s.SortedKeys) == 0:
		s.Selected = -1
	case s.Selected >= len(s.SortedKeys):
		s.Selected = len(s.SortedKeys) - 1
	case s.Selected < 0:
		s.Selected = 0
	}
}
