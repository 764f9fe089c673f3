package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

var ErrInvalid = errors.New("invalid config")

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		DataDir: filepath.Join(RememoPath(), "data"),
		Backend: BackendFile,
		Notifications: NotificationsConfig{
			PromptAnswer: "granted",
			PollInterval: 30 * time.Second,
			ShowAlert:    true,
			Channel: ChannelConfig{
				Enabled:    true,
				ID:         "default",
				Name:       "default",
				LightColor: "#FF231F7C",
				Vibration:  []int{0, 250, 250, 250},
			},
		},
	}
}

// Validate reports values no backend or platform accepts
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendFile, BackendSQLite, BackendMemory:
	default:
		return fmt.Errorf("%w: unknown backend %q", ErrInvalid, c.Backend)
	}
	switch c.Notifications.PromptAnswer {
	case "granted", "denied":
	default:
		return fmt.Errorf("%w: prompt_answer must be granted or denied, got %q", ErrInvalid, c.Notifications.PromptAnswer)
	}
	if c.Notifications.PollInterval <= 0 {
		return fmt.Errorf("%w: poll_interval must be positive", ErrInvalid)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// Location resolves Timezone
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// SQLiteFile returns the database path of the sqlite backend
func (c *Config) SQLiteFile() string {
	if c.SQLitePath != "" {
		return c.SQLitePath
	}
	return filepath.Join(c.DataDir, "rememo.db")
}

// Write stores cfg as YAML at path
func Write(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return os.WriteFile(path, append([]byte("# rememo configuration\n"), data...), 0600)
}
