// Package config loads server configuration from defaults, an optional YAML
// file, and POS_ environment variables, in that precedence order.
package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
	StoreREST   = "rest"
)

type Config struct {
	Port  int    `koanf:"port"`
	Store string `koanf:"store"`

	SQLitePath  string `koanf:"sqlite_path"`
	RedisURL    string `koanf:"redis_url"`
	RedisPrefix string `koanf:"redis_prefix"`
	RESTBaseURL string `koanf:"rest_base_url"`

	CORSOrigins []string `koanf:"cors_origins"`
	Tracing     bool     `koanf:"tracing"`
	Debug       bool     `koanf:"debug"`
}

// Load reads configuration. path may be empty (skip the file layer).
// Environment variables use the POS_ prefix, e.g. POS_SQLITE_PATH.
func Load(path string) (Config, error) {
	k := koanf.New(".")

	_ = k.Load(confmap.Provider(map[string]interface{}{
		"port":         8080,
		"store":        StoreSQLite,
		"sqlite_path":  "pos.db",
		"redis_url":    "redis://localhost:6379/0",
		"redis_prefix": "pos",
		"cors_origins": []string{"http://localhost:5173", "http://localhost:8080"},
	}, "."), nil)

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("POS_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "POS_"))
	}), nil); err != nil {
		return Config{}, fmt.Errorf("loading environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshaling config: %w", err)
	}

	switch cfg.Store {
	case StoreMemory, StoreSQLite, StoreRedis, StoreREST:
	default:
		return Config{}, fmt.Errorf("unknown store backend %q", cfg.Store)
	}
	if cfg.Store == StoreREST && cfg.RESTBaseURL == "" {
		return Config{}, fmt.Errorf("rest store requires rest_base_url")
	}

	return cfg, nil
}
