package core

import (
	"time"
)

// redrawInterval bounds how stale the screen may get while events that do
// not force a redraw (stat ticks mostly) keep arriving.
const redrawInterval = 500 * time.Millisecond

// Run consumes events until Quit arrives or the channel closes. It blocks
// up to redrawInterval for the first event, then drains whatever else is
// already queued, so a burst of events costs one render instead of one per
// event. The screen also refreshes on the interval itself to keep uptimes
// and stats ticking.
func Run(events <-chan Event, state *AppState, renderer Renderer) {
	renderer.Render(state)

	for {
		redraw := false

		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			if state.HandleEvent(ev) {
				redraw = true
			}
		case <-time.After(redrawInterval):
			redraw = true
		}

		// Drain without blocking; the batch renders once.
	drain:
		for {
			select {
			case ev, ok := <-events:
				if !ok {
					return
				}
				if state.HandleEvent(ev) {
					redraw = true
				}
			default:
				break drain
			}
		}

		if state.ShouldQuit {
			return
		}
		if redraw {
			renderer.Render(state)
		}
	}
}
