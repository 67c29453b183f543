package docker

import (
	"testing"
	"time"

	"github.com/docker/docker/api/types/container"

	"github.com/amir20/dtop/internal/core"
)

func TestFromSummary(t *testing.T) {
	h := &Host{id: "local", viewerURL: "https://logs.example.com"}
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	c := h.fromSummary(container.Summary{
		ID:      "abc123def456789aabbcc",
		Names:   []string{"/nginx"},
		State:   "running",
		Status:  "Up 3 hours (healthy)",
		Created: created.Unix(),
	})

	if c.ID != "abc123def456" {
		t.Fatalf("id = %q, want 12-char form", c.ID)
	}
	if c.Name != "nginx" {
		t.Fatalf("name = %q, want slash stripped", c.Name)
	}
	if c.State != core.StateRunning {
		t.Fatalf("state = %v, want running", c.State)
	}
	if c.Health != core.HealthHealthy {
		t.Fatalf("health = %v, want healthy", c.Health)
	}
	if !c.Created.Equal(created) {
		t.Fatalf("created = %v, want %v", c.Created, created)
	}
	if c.HostID != "local" || c.ViewerURL != "https://logs.example.com" {
		t.Fatalf("host fields not carried over: %+v", c)
	}
}

func TestFromSummaryNoHealthcheck(t *testing.T) {
	h := &Host{id: "local"}
	c := h.fromSummary(container.Summary{
		ID:     "abc123def456789aabbcc",
		Names:  []string{"/redis"},
		State:  "exited",
		Status: "Exited (0) 2 hours ago",
	})
	if c.Health != core.HealthNone {
		t.Fatalf("health = %v, want none", c.Health)
	}
	if c.State != core.StateExited {
		t.Fatalf("state = %v, want exited", c.State)
	}
}

func TestFromSummaryRestartingHasNoHealth(t *testing.T) {
	h := &Host{id: "local"}
	c := h.fromSummary(container.Summary{
		ID:     "abc123def456789aabbcc",
		Names:  []string{"/flaky"},
		State:  "restarting",
		Status: "Restarting (0) 2 seconds ago",
	})
	if c.Health != core.HealthNone {
		t.Fatalf("health = %v for a restarting container without healthcheck, want none", c.Health)
	}
	if c.State != core.StateRestarting {
		t.Fatalf("state = %v, want restarting", c.State)
	}
}

func TestHostIDFor(t *testing.T) {
	tests := []struct {
		addr string
		want core.HostID
	}{
		{"local", "local"},
		{"", "local"},
		{"ssh://deploy@web1.example.com:2222", "web1.example.com"},
		{"tcp://10.0.0.5:2375", "10.0.0.5"},
		{"tls://db.example.com:2376", "db.example.com"},
	}
	for _, tt := range tests {
		if got := HostIDFor(tt.addr); got != tt.want {
			t.Fatalf("HostIDFor(%q) = %q, want %q", tt.addr, got, tt.want)
		}
	}
}
