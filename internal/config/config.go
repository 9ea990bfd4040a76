package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds application configuration. Values come from the YAML config
// file with STASH_* environment overrides on top.
type Config struct {
	Backend string `yaml:"backend"` // "json" | "sqlite" | "redis"
	DataDir string `yaml:"dataDir"` // base directory for json/sqlite files

	ListenAddr string `yaml:"listenAddr"` // daemon HTTP address, ex: "127.0.0.1:7630"

	LogLevel  string `yaml:"logLevel"`  // "debug" | "info" | "warn" | "error"
	PrettyLog bool   `yaml:"prettyLog"` // true => colored dev output, false => JSON

	LockDelay        time.Duration `yaml:"lockDelay"`        // secret auto-lock countdown
	StatusClearDelay time.Duration `yaml:"statusClearDelay"` // transient badge lifetime
	FetchTimeout     time.Duration `yaml:"fetchTimeout"`     // redirect/title fetch timeout
	PollInterval     time.Duration `yaml:"pollInterval"`     // change-poll cadence for file backends

	Redis RedisConfig `yaml:"redis"`
}

// RedisConfig holds connection settings for the redis backend.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	dataDir := ""
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, ".config", "stash")
	}
	return &Config{
		Backend:          "json",
		DataDir:          dataDir,
		ListenAddr:       "127.0.0.1:7630",
		LogLevel:         "info",
		PrettyLog:        true,
		LockDelay:        15 * time.Second,
		StatusClearDelay: 1500 * time.Millisecond,
		FetchTimeout:     10 * time.Second,
		PollInterval:     time.Second,
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
	}
}

// DefaultPath returns the default config path: ~/.config/stash/config.yaml
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "stash", "config.yaml"), nil
}

// Load reads the config file at path, applies defaults for missing fields
// and environment overrides on top. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Backend {
	case "json", "sqlite", "redis":
	default:
		return fmt.Errorf("unknown storage backend %q", c.Backend)
	}
	if c.LockDelay <= 0 {
		return fmt.Errorf("lockDelay must be > 0, got %v", c.LockDelay)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("pollInterval must be > 0, got %v", c.PollInterval)
	}
	if c.Backend == "redis" && c.Redis.Addr == "" {
		return errors.New("redis backend selected but redis.addr is empty")
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Backend = getenv("STASH_BACKEND", cfg.Backend)
	cfg.DataDir = getenv("STASH_DATA_DIR", cfg.DataDir)
	cfg.ListenAddr = getenv("STASH_LISTEN_ADDR", cfg.ListenAddr)
	cfg.LogLevel = getenv("STASH_LOG_LEVEL", cfg.LogLevel)
	cfg.PrettyLog = getenvBool("STASH_PRETTY_LOG", cfg.PrettyLog)
	cfg.LockDelay = getenvDuration("STASH_LOCK_DELAY", cfg.LockDelay)
	cfg.PollInterval = getenvDuration("STASH_POLL_INTERVAL", cfg.PollInterval)
	cfg.Redis.Addr = getenv("STASH_REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Username = getenv("STASH_REDIS_USERNAME", cfg.Redis.Username)
	cfg.Redis.Password = getenv("STASH_REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getenvInt("STASH_REDIS_DB", cfg.Redis.DB)
}

// helpers

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getenvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
