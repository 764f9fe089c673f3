package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load merges the global config, the project config and then explicitPath, if not empty.
// Environment variables, read after a .env file in the working directory, win over files
func Load(explicitPath string) (*Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()
	paths := []string{GlobalConfigPath(), ProjectConfigPath()}
	for _, path := range paths {
		if err := loadFile(path, cfg); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	if explicitPath != "" {
		if err := loadFile(explicitPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", explicitPath, err)
		}
	}
	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return err
	}

	return v.Unmarshal(cfg)
}

func applyEnv(cfg *Config) {
	cfg.DataDir = getEnv("REMEMO_DATA_DIR", cfg.DataDir)
	cfg.Backend = getEnv("REMEMO_BACKEND", cfg.Backend)
	cfg.SQLitePath = getEnv("REMEMO_SQLITE_PATH", cfg.SQLitePath)
	cfg.LogFile = getEnv("REMEMO_LOG_FILE", cfg.LogFile)
	cfg.Timezone = getEnv("REMEMO_TZ", cfg.Timezone)
	cfg.Notifications.PromptAnswer = getEnv("REMEMO_PROMPT_ANSWER", cfg.Notifications.PromptAnswer)
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// GlobalConfigPath returns the path to the global config file
func GlobalConfigPath() string {
	return filepath.Join(RememoPath(), "config.yaml")
}

// ProjectConfigPath returns the path to the config file of the working directory
func ProjectConfigPath() string {
	cwd, _ := os.Getwd()
	return filepath.Join(cwd, ".rememo", "config.yaml")
}

// RememoPath returns the global rememo directory
func RememoPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".rememo")
}
