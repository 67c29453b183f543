package core

// handleEnterSearchMode opens the search bar and switches the keyboard
// reader into text mode so plain letters stop triggering intents.
func (s *AppState) handleEnterSearchMode() bool {
	if s.View.Kind != ViewContainerList {
		return false
	}
	s.View = ViewState{Kind: ViewSearch}
	s.setTextInput(true)
	return true
}

// handleExitSearchMode applies the current search text and returns to the
// list. The filter keeps working after leaving the bar.
func (s *AppState) handleExitSearchMode() bool {
	if s.View.Kind != ViewSearch {
		return false
	}
	s.View = ViewState{Kind: ViewContainerList}
	s.setTextInput(false)
	return true
}

// cancelSearch discards the search text entirely (esc rather than enter).
func (s *AppState) cancelSearch() bool {
	if s.View.Kind != ViewSearch {
		return false
	}
	s.SearchText = ""
	s.View = ViewState{Kind: ViewContainerList}
	s.setTextInput(false)
	s.rebuildList()
	return true
}

// handleSearchKeyEvent applies one keystroke to the search text and re-runs
// the filter immediately, so the list narrows as the user types.
func (s *AppState) handleSearchKeyEvent(ev SearchKeyEvent) bool {
	if s.View.Kind != ViewSearch {
		return false
	}
	if ev.Backspace {
		if len(s.SearchText) == 0 {
			return false
		}
		runes := []rune(s.SearchText)
		s.SearchText = string(runes[:len(runes)-1])
	} else {
		s.SearchText += string(ev.Rune)
	}
	s.rebuildList()
	return true
}
