package core

// handleShowActionMenu opens the start/stop/restart/remove menu for the
// selected container. The entries depend on its current state.
func (s *AppState) handleShowActionMenu() bool {
	if s.View.Kind != ViewContainerList {
		return false
	}
	c := s.SelectedContainer()
	if c == nil {
		return false
	}
	if len(AvailableActions(c.State)) == 0 {
		return false
	}
	s.View = ViewState{Kind: ViewActionMenu, Key: c.Key()}
	s.ActionIndex = 0
	return true
}

func (s *AppState) handleSelectActionUp() bool {
	if s.View.Kind != ViewActionMenu {
		return false
	}
	if s.ActionIndex > 0 {
		s.ActionIndex--
		return true
	}
	return false
}

func (s *AppState) handleSelectActionDown() bool {
	if s.View.Kind != ViewActionMenu {
		return false
	}
	c, ok := s.Containers[s.View.Key]
	if !ok {
		return false
	}
	if s.ActionIndex < len(AvailableActions(c.State))-1 {
		s.ActionIndex++
		return true
	}
	return false
}

// handleExecuteAction fires the chosen action and drops back to the list.
// Progress and outcome come back as Action* events from the executor.
func (s *AppState) handleExecuteAction() bool {
	if s.View.Kind != ViewActionMenu {
		return false
	}
	key := s.View.Key
	s.View = ViewState{Kind: ViewContainerList}
	c, ok := s.Containers[key]
	if !ok {
		return true
	}
	actions := AvailableActions(c.State)
	if s.ActionIndex < 0 || s.ActionIndex >= len(actions) {
		return true
	}
	if host, ok := s.Hosts[key.HostID]; ok {
		host.ExecuteAction(key.ContainerID, actions[s.ActionIndex])
	}
	return true
}
