package docker

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/events"
	"github.com/docker/docker/api/types/filters"

	"github.com/amir20/dtop/internal/core"
)

// streamRetryDelay is the pause before reattaching a broken event stream.
const streamRetryDelay = 1 * time.Second

// monitor tracks one host's containers: the initial listing, the lifecycle
// event stream, and a stats task per running container.
type monitor struct {
	host *Host

	// Injectable for tests; production uses the API client's Events.
	eventsFn func(ctx context.Context, opts events.ListOptions) (<-chan events.Message, <-chan error)
	// Injectable for tests; production uses the API client's ContainerList.
	listFn func(ctx context.Context, opts container.ListOptions) ([]container.Summary, error)
	// Injectable for tests; production streams daemon stats.
	statsFn func(ctx context.Context, containerID string)

	mu          sync.Mutex
	statCancels map[string]context.CancelFunc // short id -> cancel
}

func newMonitor(h *Host) *monitor {
	m := &monitor{
		host:        h,
		statCancels: make(map[string]context.CancelFunc),
	}
	m.eventsFn = h.client.Events
	m.listFn = h.client.ContainerList
	m.statsFn = func(ctx context.Context, containerID string) {
		h.streamStats(ctx, containerID)
	}
	return m
}

func (m *monitor) run(ctx context.Context) {
	if err := m.fetchInitial(ctx); err != nil {
		slog.Warn("initial container list failed", "host", m.host.id, "error", err)
		m.host.emit(core.ConnectionError{HostID: m.host.id, Message: err.Error()})
	}

	for {
		err := m.watch(ctx)
		if ctx.Err() != nil {
			m.stopAllStats()
			return
		}
		if err != nil {
			slog.Warn("event stream lost, reattaching", "host", m.host.id, "error", err)
		} else {
			slog.Debug("event stream closed, reattaching", "host", m.host.id)
		}
		select {
		case <-ctx.Done():
			m.stopAllStats()
			return
		case <-time.After(streamRetryDelay):
		}
	}
}

// fetchInitial lists everything once, publishes it as a single batch, and
// spins up stats for the running containers.
func (m *monitor) fetchInitial(ctx context.Context) error {
	list, err := m.listFn(ctx, container.ListOptions{All: true})
	if err != nil {
		return err
	}

	containers := make([]core.Container, 0, len(list))
	for _, c := range list {
		containers = append(containers, m.host.fromSummary(c))
	}
	m.host.emit(core.InitialContainerList{HostID: m.host.id, Containers: containers})

	for _, c := range containers {
		if c.State == core.StateRunning {
			m.startStats(ctx, c.ID)
		}
	}
	return nil
}

func (m *monitor) watch(ctx context.Context) error {
	opts := events.ListOptions{
		Filters: filters.NewArgs(
			filters.Arg("type", "container"),
			filters.Arg("event", "start"),
			filters.Arg("event", "die"),
			filters.Arg("event", "stop"),
			filters.Arg("event", "health_status"),
		),
	}
	msgCh, errCh := m.eventsFn(ctx, opts)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errCh:
			return err
		case msg, ok := <-msgCh:
			if !ok {
				return nil
			}
			m.handleMessage(ctx, msg)
		}
	}
}

func (m *monitor) handleMessage(ctx context.Context, msg events.Message) {
	id := shortID(msg.Actor.ID)
	action := msg.Action
	// health_status arrives as "health_status: healthy".
	if strings.HasPrefix(string(action), "health_status") {
		action = "health_status"
	}

	switch action {
	case events.ActionStart:
		m.handleStart(ctx, id)
	case events.ActionDie, events.ActionStop:
		m.handleStop(id)
	case "health_status":
		m.handleHealth(ctx, msg, id)
	}
}

func (m *monitor) handleStart(ctx context.Context, id string) {
	inspect, err := m.host.client.ContainerInspect(ctx, id)
	if err != nil {
		slog.Warn("inspect after start failed", "host", m.host.id, "container", id, "error", err)
		return
	}
	m.host.emit(core.ContainerCreated{Container: m.host.fromInspect(inspect)})
	m.startStats(ctx, id)
}

// handleStop tears down the stats task and removes the container from the
// list. Emitted even when the container was never tracked; the state
// machine drops unknown keys.
func (m *monitor) handleStop(id string) {
	m.stopStats(id)
	m.host.emit(core.ContainerDestroyed{Key: core.ContainerKey{HostID: m.host.id, ContainerID: id}})
}

// handleHealth resolves the new status from the event attributes, falling
// back to an inspect when the attribute is absent. Unresolvable statuses
// are dropped rather than guessed.
func (m *monitor) handleHealth(ctx context.Context, msg events.Message, id string) {
	status := core.HealthNone
	if raw, ok := msg.Actor.Attributes["health_status"]; ok {
		status = core.ParseHealthStatus(raw)
	}
	if status == core.HealthNone {
		if raw := string(msg.Action); len(raw) > len("health_status: ") {
			status = core.ParseHealthStatus(raw[len("health_status: "):])
		}
	}
	if status == core.HealthNone {
		inspect, err := m.host.client.ContainerInspect(ctx, id)
		if err != nil || inspect.State == nil || inspect.State.Health == nil {
			return
		}
		status = core.ParseHealthStatus(inspect.State.Health.Status)
	}
	if status == core.HealthNone {
		return
	}
	m.host.emit(core.ContainerHealthChanged{
		Key:    core.ContainerKey{HostID: m.host.id, ContainerID: id},
		Health: status,
	})
}

// startStats launches the stats stream for a container. A no-op when a
// task for the id is already active, so at most one runs per id.
func (m *monitor) startStats(ctx context.Context, id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.statCancels[id]; ok {
		return
	}
	statCtx, cancel := context.WithCancel(ctx)
	m.statCancels[id] = cancel
	go m.statsFn(statCtx, id)
}

func (m *monitor) stopStats(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cancel, ok := m.statCancels[id]; ok {
		cancel()
		delete(m.statCancels, id)
	}
}

func (m *monitor) stopAllStats() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, cancel := range m.statCancels {
		cancel()
		delete(m.statCancels, id)
	}
}
