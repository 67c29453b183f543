package docker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/docker/docker/api/types/container"

	"github.com/amir20/dtop/internal/core"
)

const (
	// stopGracePeriod is passed to stop/restart before the daemon kills the
	// container.
	stopGracePeriod = 10 // seconds

	actionTimeout = 30 * time.Second
)

// ExecuteAction runs one lifecycle command in the background, bracketed by
// ActionInProgress and ActionSuccess/ActionError events. The list itself
// catches up through the lifecycle event stream, not through these.
func (h *Host) ExecuteAction(containerID string, action core.ContainerAction) {
	key := core.ContainerKey{HostID: h.id, ContainerID: containerID}

	go func() {
		h.emit(core.ActionInProgress{Key: key, Action: action})

		ctx, cancel := context.WithTimeout(h.ctx, actionTimeout)
		defer cancel()

		var err error
		switch action {
		case core.ActionStart:
			err = h.client.ContainerStart(ctx, containerID, container.StartOptions{})
		case core.ActionStop:
			timeout := stopGracePeriod
			err = h.client.ContainerStop(ctx, containerID, container.StopOptions{Timeout: &timeout})
		case core.ActionRestart:
			timeout := stopGracePeriod
			err = h.client.ContainerRestart(ctx, containerID, container.StopOptions{Timeout: &timeout})
		case core.ActionRemove:
			err = h.client.ContainerRemove(ctx, containerID, container.RemoveOptions{Force: true})
		default:
			err = fmt.Errorf("unknown action %v", action)
		}

		if err != nil {
			slog.Warn("container action failed", "host", h.id, "container", containerID, "action", action, "error", err)
			h.emit(core.ActionError{Key: key, Action: action, Message: err.Error()})
			return
		}
		h.emit(core.ActionSuccess{Key: key, Action: action})
	}()
}
