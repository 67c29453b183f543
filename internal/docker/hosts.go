package docker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/amir20/dtop/internal/core"
)

const (
	pingTimeout    = 10 * time.Second
	connectTimeout = 30 * time.Second
)

// Manager probes configured daemons and hands connected hosts to the event
// loop.
type Manager struct {
	events chan<- core.Event
}

func NewManager(events chan<- core.Event) *Manager {
	return &Manager{events: events}
}

// ConnectAll probes every spec concurrently and returns once the first host
// is usable, bounded by connectTimeout. Hosts that are still connecting
// keep going in the background and surface later as HostConnected events.
// Failures are reported as ConnectionError events; the only fatal case is
// no host ever succeeding.
func (m *Manager) ConnectAll(ctx context.Context, specs []Spec) error {
	if len(specs) == 0 {
		return errors.New("no hosts configured")
	}

	results := make(chan bool, len(specs))
	for _, spec := range specs {
		go func(spec Spec) {
			results <- m.connectOne(ctx, spec)
		}(spec)
	}

	firstSuccess := make(chan struct{}, 1)
	allFailed := make(chan struct{})
	go func() {
		any := false
		for range specs {
			if <-results {
				any = true
				select {
				case firstSuccess <- struct{}{}:
				default:
				}
			}
		}
		if !any {
			close(allFailed)
		}
	}()

	select {
	case <-firstSuccess:
		return nil
	case <-allFailed:
		return errors.New("could not connect to any docker host")
	case <-time.After(connectTimeout):
		return errors.New("timed out connecting to docker hosts")
	case <-ctx.Done():
		return ctx.Err()
	}
}

// connectOne builds a client, pings it, and on success starts the host's
// lifecycle monitor. Reports whether the host came up.
func (m *Manager) connectOne(ctx context.Context, spec Spec) bool {
	id := HostIDFor(spec.Addr)

	fail := func(err error) bool {
		slog.Warn("host connection failed", "host", id, "addr", spec.Addr, "error", err)
		select {
		case m.events <- core.ConnectionError{HostID: id, Message: err.Error()}:
		case <-ctx.Done():
		}
		return false
	}

	c, err := newClient(spec.Addr)
	if err != nil {
		return fail(err)
	}
	if err := ping(ctx, c, pingTimeout); err != nil {
		c.Close()
		return fail(err)
	}

	host := &Host{
		id:        id,
		viewerURL: spec.ViewerURL,
		client:    c,
		ctx:       ctx,
		events:    m.events,
	}
	slog.Info("host connected", "host", id, "addr", spec.Addr)
	host.emit(core.HostConnected{Host: host})

	go newMonitor(host).run(ctx)
	return true
}
