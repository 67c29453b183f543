package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// HostConfig describes one Docker daemon to monitor.
type HostConfig struct {
	Addr      string `toml:"addr"`       // local | ssh://user@host[:port] | tcp://host:port | tls://host:port
	ViewerURL string `toml:"viewer_url"` // external web log viewer base URL (optional)
}

// Config is read from the TOML config file. Hosts given on the command line
// take precedence over everything here.
type Config struct {
	Hosts map[string]HostConfig `toml:"hosts"`
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/dtop/config.toml,
// falling back to ~/.config/dtop/config.toml if unset.
func DefaultConfigPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		dir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(dir, "dtop", "config.toml")
}

const defaultConfigContent = `# dtop configuration.
# Hosts listed here are monitored when no --host flags are given.
#
# [hosts.local]
# addr = "local"
#
# [hosts.web1]
# addr = "ssh://deploy@web1.example.com"
# viewer_url = "https://logs.example.com"
#
# [hosts.db]
# addr = "tls://db.example.com:2376"
#
# For tls:// hosts, DOCKER_CERT_PATH must point to a directory containing
# ca.pem, cert.pem, and key.pem.
`

// EnsureDefaultConfig creates the default config file if it does not exist.
// Returns the path to the config file.
func EnsureDefaultConfig(path string) (string, error) {
	if path == "" {
		path = DefaultConfigPath()
	}
	if _, err := os.Stat(path); err == nil {
		return path, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("stat config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigContent), 0o644); err != nil {
		return "", fmt.Errorf("write default config: %w", err)
	}
	return path, nil
}

// Load reads and parses a TOML config file.
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	for name, h := range cfg.Hosts {
		if h.Addr == "" {
			return nil, fmt.Errorf("load config: host %q missing addr", name)
		}
	}
	return &cfg, nil
}
