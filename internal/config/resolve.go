package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultConfigPaths returns the search order for config files.
func DefaultConfigPaths() []string {
	paths := []string{"repro.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "repro", "config.yaml"))
	}
	paths = append(paths, "/etc/repro/config.yaml")
	return paths
}

// Resolve loads the config from the given explicit path, or searches the
// default locations. When no file exists it falls back to the built-in
// figures with default options. It fills globals.hostname if unset.
func Resolve(explicit string) (*Config, error) {
	path, err := findConfig(explicit)
	if err != nil {
		return nil, err
	}

	var cfg *Config
	if path == "" {
		cfg, err = Parse(nil)
	} else {
		cfg, err = Load(path)
	}
	if err != nil {
		return nil, err
	}

	if cfg.Globals == nil {
		cfg.Globals = make(map[string]any)
	}
	if _, ok := cfg.Globals["hostname"]; !ok {
		h, err := os.Hostname()
		if err != nil {
			return nil, fmt.Errorf("resolving hostname: %w", err)
		}
		cfg.Globals["hostname"] = h
	}

	return cfg, nil
}

func findConfig(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	for _, p := range DefaultConfigPaths() {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", nil
}
