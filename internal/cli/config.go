package cli

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
)

// Config holds CLI and server settings loaded from the TOML config file.
//
// An example ~/.config/treedag/config.toml:
//
//	[cache]
//	backend = "redis"
//
//	[redis]
//	addr = "localhost:6379"
//	db = 0
//
//	[server]
//	addr = ":8080"
type Config struct {
	Cache  CacheConfig  `toml:"cache"`
	Redis  RedisConfig  `toml:"redis"`
	Server ServerConfig `toml:"server"`
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	// Backend is one of "file" (default), "redis", or "none".
	Backend string `toml:"backend"`
}

// RedisConfig configures the Redis cache backend.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// DefaultConfig returns the configuration used when no config file exists.
func DefaultConfig() Config {
	return Config{
		Cache:  CacheConfig{Backend: "file"},
		Redis:  RedisConfig{Addr: "localhost:6379"},
		Server: ServerConfig{Addr: ":8080"},
	}
}

// configPath returns the config file location using XDG standard
// (~/.config/treedag/config.toml).
func configPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// LoadConfig reads and parses the config file at path, layering it over the
// defaults so partial files work.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return DefaultConfig(), err
	}
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = "file"
	}
	return cfg, nil
}

// LoadConfigOrDefault loads the standard config file, returning the defaults
// when the file is missing or unreadable. A malformed file is reported but
// does not stop the CLI.
func LoadConfigOrDefault(logger *log.Logger) Config {
	path, err := configPath()
	if err != nil {
		return DefaultConfig()
	}
	if _, err := os.Stat(path); err != nil {
		return DefaultConfig()
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		logger.Warn("ignoring malformed config file", "path", path, "err", err)
		return DefaultConfig()
	}
	return cfg
}
