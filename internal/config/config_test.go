package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[hosts.local]
addr = "local"

[hosts.web1]
addr = "ssh://deploy@web1.example.com"
viewer_url = "https://logs.example.com"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.Hosts) != 2 {
		t.Fatalf("hosts = %d, want 2", len(cfg.Hosts))
	}
	if cfg.Hosts["web1"].ViewerURL != "https://logs.example.com" {
		t.Fatalf("viewer_url = %q", cfg.Hosts["web1"].ViewerURL)
	}
}

func TestLoadConfigMissingAddr(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[hosts.bad]\nviewer_url = \"x\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for a host without addr")
	}
}

func TestEnsureDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dtop", "config.toml")

	got, err := EnsureDefaultConfig(path)
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if got != path {
		t.Fatalf("path = %q, want %q", got, path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default config not written: %v", err)
	}

	// The generated file is all comments and must parse to an empty config.
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load default: %v", err)
	}
	if len(cfg.Hosts) != 0 {
		t.Fatalf("default config should define no hosts, got %d", len(cfg.Hosts))
	}

	// A second call leaves the existing file alone.
	if _, err := EnsureDefaultConfig(path); err != nil {
		t.Fatal(err)
	}
}
