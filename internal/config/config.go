// Package config loads service configuration from TOML files and
// environment variables. Configuration is an explicit object handed to
// constructors, never ambient state, so tests can inject their own.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// envPrefix namespaces environment overrides, e.g.
// REPLAYED_LASTFM__API_KEY maps to lastfm.api_key.
const envPrefix = "REPLAYED_"

type Config struct {
	ListenAddr string `koanf:"listen_addr"`
	DBPath     string `koanf:"db_path"`

	Lastfm LastfmConfig `koanf:"lastfm"`
	Sync   SyncConfig   `koanf:"sync"`
}

// LastfmConfig holds scrobble source settings. BaseURL is overridable so
// tests and mirrors can point elsewhere; empty means the public endpoint.
type LastfmConfig struct {
	APIKey  string `koanf:"api_key"`
	BaseURL string `koanf:"base_url"`
}

// SyncConfig sizes the background sync worker pool.
type SyncConfig struct {
	Workers   int `koanf:"workers"`
	QueueSize int `koanf:"queue_size"`
}

// Load reads config files in priority order (last wins), then applies
// environment overrides, then validates.
func Load() (*Config, error) {
	k := koanf.New(".")

	for _, path := range configPaths() {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	// Environment overrides: "__" separates nesting levels so keys like
	// api_key survive the mapping.
	cb := func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "__", ".")
	}
	if err := k.Load(env.Provider(envPrefix, ".", cb), nil); err != nil {
		return nil, err
	}

	cfg := &Config{
		ListenAddr: ":8080",
		DBPath:     "replayed.db",
		Sync: SyncConfig{
			Workers:   2,
			QueueSize: 16,
		},
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	if cfg.Lastfm.APIKey == "" {
		return nil, errors.New("config: lastfm api_key is required (set REPLAYED_LASTFM__API_KEY or [lastfm] api_key)")
	}

	return cfg, nil
}

func configPaths() []string {
	paths := []string{}

	// 1. ~/.config/replayed/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "replayed", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}
