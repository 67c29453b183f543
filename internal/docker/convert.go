package docker

import (
	"strings"
	"time"

	"github.com/docker/docker/api/types/container"

	"github.com/amir20/dtop/internal/core"
)

// shortIDLen matches the truncated ids docker prints; every key in the app
// uses this form so events, stats, and list entries line up.
const shortIDLen = 12

func shortID(id string) string {
	if len(id) > shortIDLen {
		return id[:shortIDLen]
	}
	return id
}

// containerName strips docker's leading "/" from the first name.
func containerName(names []string) string {
	if len(names) == 0 {
		return ""
	}
	return strings.TrimPrefix(names[0], "/")
}

// fromSummary converts a list entry. The Status text carries health as a
// "(healthy)" suffix when a healthcheck exists.
func (h *Host) fromSummary(c container.Summary) core.Container {
	return core.Container{
		ID:        shortID(c.ID),
		Name:      containerName(c.Names),
		State:     core.ParseContainerState(c.State),
		Health:    core.ParseHealthStatus(c.Status),
		Created:   time.Unix(c.Created, 0),
		HostID:    h.id,
		ViewerURL: h.viewerURL,
	}
}

// fromInspect converts an inspect response, used for containers discovered
// through the event stream where no list entry exists.
func (h *Host) fromInspect(c container.InspectResponse) core.Container {
	out := core.Container{
		ID:        shortID(c.ID),
		Name:      strings.TrimPrefix(c.Name, "/"),
		HostID:    h.id,
		ViewerURL: h.viewerURL,
	}
	if created, err := time.Parse(time.RFC3339Nano, c.Created); err == nil {
		out.Created = created
	}
	if c.State != nil {
		out.State = core.ParseContainerState(c.State.Status)
		if c.State.Health != nil {
			out.Health = core.ParseHealthStatus(c.State.Health.Status)
		}
	}
	return out
}
