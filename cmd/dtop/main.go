package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/amir20/dtop/internal/config"
	"github.com/amir20/dtop/internal/core"
	"github.com/amir20/dtop/internal/docker"
	"github.com/amir20/dtop/internal/tui"
)

var version = "dev"

// eventBuffer is the capacity of the single channel every producer feeds.
const eventBuffer = 1000

// hostList collects repeated --host flags.
type hostList []string

func (h *hostList) String() string { return fmt.Sprint([]string(*h)) }

func (h *hostList) Set(v string) error {
	*h = append(*h, v)
	return nil
}

func main() {
	var hosts hostList
	flag.Var(&hosts, "host", "docker host to monitor (repeatable): local, ssh://user@host[:port], tcp://host:port, tls://host:port")
	configPath := flag.String("config", "", "path to config file (default: $XDG_CONFIG_HOME/dtop/config.toml)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("dtop", version)
		return
	}

	setupLogging()

	specs, err := resolveHosts(hosts, *configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "dtop:", err)
		os.Exit(1)
	}

	if err := run(specs); err != nil {
		fmt.Fprintln(os.Stderr, "dtop:", err)
		os.Exit(1)
	}
}

// setupLogging discards logs by default so slog output cannot corrupt the
// raw terminal. DEBUG=1 redirects them to a file instead.
func setupLogging() {
	if os.Getenv("DEBUG") == "" {
		slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
		return
	}
	f, err := os.OpenFile("dtop.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
		return
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})))
}

// resolveHosts merges the command line with the config file: explicit
// --host flags win, then configured hosts, then the local daemon.
func resolveHosts(cliHosts []string, configPath string) ([]docker.Spec, error) {
	if len(cliHosts) > 0 {
		specs := make([]docker.Spec, 0, len(cliHosts))
		for _, addr := range cliHosts {
			specs = append(specs, docker.Spec{Addr: addr})
		}
		return specs, nil
	}

	path, err := config.EnsureDefaultConfig(configPath)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if len(cfg.Hosts) == 0 {
		return []docker.Spec{{Addr: "local"}}, nil
	}
	specs := make([]docker.Spec, 0, len(cfg.Hosts))
	for _, h := range cfg.Hosts {
		specs = append(specs, docker.Spec{Addr: h.Addr, ViewerURL: h.ViewerURL})
	}
	return specs, nil
}

func run(specs []docker.Spec) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan core.Event, eventBuffer)

	// Block until at least one host is reachable; the rest keep connecting
	// in the background and fold in as HostConnected events.
	manager := docker.NewManager(events)
	if err := manager.ConnectAll(ctx, specs); err != nil {
		return err
	}

	term, err := tui.Setup()
	if err != nil {
		return err
	}
	defer term.Restore()

	keyboard := tui.NewKeyboard(events)
	go keyboard.Run(ctx)
	tui.NotifyResize(ctx, events)

	state := core.NewAppState()
	state.SetTextInput = keyboard.SetTextInput

	core.Run(events, state, tui.NewRenderer(term))
	return nil
}
