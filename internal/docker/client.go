package docker

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/docker/cli/cli/connhelper"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/tlsconfig"

	"github.com/amir20/dtop/internal/core"
)

// Spec describes one daemon to connect to. Addr forms:
//
//	local                 local daemon via the standard environment
//	unix:///path/sock     explicit socket
//	ssh://user@host[:p]   tunnel through the system ssh client
//	tcp://host:2375       plain TCP
//	tls://host:2376       TCP with mutual TLS from DOCKER_CERT_PATH
type Spec struct {
	Addr      string
	ViewerURL string
}

// Host wraps one connected daemon and implements core.Host. All methods
// spawn goroutines and report through the event channel; nothing blocks the
// caller.
type Host struct {
	id        core.HostID
	viewerURL string
	client    *client.Client

	// ctx bounds every goroutine the host spawns; cancelled on shutdown.
	ctx    context.Context
	events chan<- core.Event
}

func (h *Host) ID() core.HostID   { return h.id }
func (h *Host) ViewerURL() string { return h.viewerURL }

// Client returns the underlying API client.
func (h *Host) Client() *client.Client { return h.client }

func (h *Host) emit(ev core.Event) {
	select {
	case h.events <- ev:
	case <-h.ctx.Done():
	}
}

// newClient builds an API client for the address without contacting the
// daemon; liveness is checked separately with a ping.
func newClient(addr string) (*client.Client, error) {
	switch {
	case addr == "" || addr == "local":
		return client.NewClientWithOpts(
			client.FromEnv,
			client.WithAPIVersionNegotiation(),
			client.WithUserAgent("Docker-Client/dtop"),
		)

	case strings.HasPrefix(addr, "ssh://"):
		helper, err := connhelper.GetConnectionHelper(addr)
		if err != nil {
			return nil, fmt.Errorf("ssh helper: %w", err)
		}
		httpClient := &http.Client{
			Transport: &http.Transport{DialContext: helper.Dialer},
		}
		return client.NewClientWithOpts(
			client.WithHTTPClient(httpClient),
			client.WithHost(helper.Host),
			client.WithDialContext(helper.Dialer),
			client.WithAPIVersionNegotiation(),
		)

	case strings.HasPrefix(addr, "tls://"):
		certDir := os.Getenv("DOCKER_CERT_PATH")
		if certDir == "" {
			home, _ := os.UserHomeDir()
			certDir = filepath.Join(home, ".docker")
		}
		tlsc, err := tlsconfig.Client(tlsconfig.Options{
			CAFile:   filepath.Join(certDir, "ca.pem"),
			CertFile: filepath.Join(certDir, "cert.pem"),
			KeyFile:  filepath.Join(certDir, "key.pem"),
		})
		if err != nil {
			return nil, fmt.Errorf("tls config: %w", err)
		}
		httpClient := &http.Client{
			Transport: &http.Transport{TLSClientConfig: tlsc},
		}
		return client.NewClientWithOpts(
			client.WithHTTPClient(httpClient),
			client.WithHost("tcp://"+strings.TrimPrefix(addr, "tls://")),
			client.WithAPIVersionNegotiation(),
			client.WithUserAgent("Docker-Client/dtop"),
		)

	case strings.HasPrefix(addr, "tcp://"), strings.HasPrefix(addr, "unix://"):
		return client.NewClientWithOpts(
			client.WithHost(addr),
			client.WithTLSClientConfigFromEnv(),
			client.WithAPIVersionNegotiation(),
			client.WithUserAgent("Docker-Client/dtop"),
		)

	default:
		return nil, fmt.Errorf("invalid host %q: use local, ssh://user@host[:port], tcp://host:port, or tls://host:port", addr)
	}
}

// HostIDFor derives the identifier shown in the UI from an address: "local"
// for the local daemon, otherwise the hostname part.
func HostIDFor(addr string) core.HostID {
	if addr == "" || addr == "local" {
		return "local"
	}
	if u, err := url.Parse(addr); err == nil && u.Host != "" {
		return core.HostID(u.Hostname())
	}
	return core.HostID(addr)
}

// ping verifies the daemon answers within the timeout.
func ping(ctx context.Context, c *client.Client, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	_, err := c.Ping(ctx)
	return err
}
