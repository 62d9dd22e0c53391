package config

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	toml "github.com/pelletier/go-toml/v2"
)

const (
	DefaultBaseURL = "http://127.0.0.1:8080"
	DefaultTimeout = "5s"
	DefaultBind    = "127.0.0.1:8080"
)

type Config struct {
	Remote  RemoteConfig  `toml:"remote"`
	Serve   ServeConfig   `toml:"serve"`
	Logging LoggingConfig `toml:"logging"`
	Board   BoardConfig   `toml:"board"`
}

type RemoteConfig struct {
	BaseURL string `toml:"base_url"`
	Timeout string `toml:"timeout"`
}

type ServeConfig struct {
	Bind        string `toml:"bind"`
	MCPEndpoint string `toml:"mcp_endpoint"`
	MetricsPath string `toml:"metrics_path"`
}

type LoggingConfig struct {
	Level   string        `toml:"level"`
	DevFile DevFileConfig `toml:"dev_file"`
}

// DevFileConfig controls the rotating logfmt file written in dev mode.
type DevFileConfig struct {
	Enabled    bool   `toml:"enabled"`
	Dir        string `toml:"dir"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
}

type BoardConfig struct {
	ShowDescription bool `toml:"show_description"`
	ShowDates       bool `toml:"show_dates"`
	ConfirmDelete   bool `toml:"confirm_delete"`
}

func Default(logDir string) Config {
	return Config{
		Remote: RemoteConfig{
			BaseURL: DefaultBaseURL,
			Timeout: DefaultTimeout,
		},
		Serve: ServeConfig{
			Bind:        DefaultBind,
			MCPEndpoint: "/mcp",
			MetricsPath: "/metrics",
		},
		Logging: LoggingConfig{
			Level: "info",
			DevFile: DevFileConfig{
				Enabled:    true,
				Dir:        logDir,
				MaxSizeMB:  10,
				MaxBackups: 3,
			},
		},
		Board: BoardConfig{
			ShowDescription: true,
			ShowDates:       true,
			ConfirmDelete:   true,
		},
	}
}

func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	base := strings.TrimSpace(c.Remote.BaseURL)
	if base == "" {
		return errors.New("remote.base_url is required")
	}
	u, err := url.Parse(base)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid remote.base_url: %q", c.Remote.BaseURL)
	}
	if _, err := c.Remote.TimeoutDuration(); err != nil {
		return err
	}

	if strings.TrimSpace(c.Serve.Bind) == "" {
		return errors.New("serve.bind is required")
	}
	for name, path := range map[string]string{"serve.mcp_endpoint": c.Serve.MCPEndpoint, "serve.metrics_path": c.Serve.MetricsPath} {
		path = strings.TrimSpace(path)
		if path != "" && !strings.HasPrefix(path, "/") {
			return fmt.Errorf("%s must start with /: %q", name, path)
		}
	}

	if _, err := log.ParseLevel(strings.TrimSpace(c.Logging.Level)); err != nil {
		return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
	}
	if c.Logging.DevFile.MaxSizeMB < 0 {
		return errors.New("logging.dev_file.max_size_mb must be >= 0")
	}
	if c.Logging.DevFile.MaxBackups < 0 {
		return errors.New("logging.dev_file.max_backups must be >= 0")
	}

	return nil
}

// TimeoutDuration parses remote.timeout. An empty value means the default.
func (r RemoteConfig) TimeoutDuration() (time.Duration, error) {
	raw := strings.TrimSpace(r.Timeout)
	if raw == "" {
		raw = DefaultTimeout
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid remote.timeout: %q", r.Timeout)
	}
	if d <= 0 {
		return 0, fmt.Errorf("remote.timeout must be > 0: %q", r.Timeout)
	}
	return d, nil
}

// Write renders cfg as TOML at path, refusing to overwrite unless force is set.
func Write(path string, cfg Config, force bool) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("config path is required")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("stat config: %w", err)
		}
	}
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encode toml: %w", err)
	}
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
