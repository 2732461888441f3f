package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

const (
	EnvSettingsDir = "DECKY_PLUGIN_SETTINGS_DIR"
	EnvLogDir      = "DECKY_PLUGIN_LOG_DIR"
	EnvLogLevel    = "DECKCLIP_LOG"

	// EntriesFile is the backing file name inside the settings directory.
	EntriesFile = "clipboard_entries.json"
)

type Config struct {
	SettingsDir string
	LogDir      string
	LogLevel    string
}

// EntriesPath is the full path of the backing file.
func (c Config) EntriesPath() string {
	return filepath.Join(c.SettingsDir, EntriesFile)
}

// Load resolves configuration from the environment. A .env file in the
// working directory is read first; variables already set are not overridden.
// settingsDir, when non-empty, wins over everything else.
func Load(settingsDir string) (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		SettingsDir: settingsDir,
		LogDir:      os.Getenv(EnvLogDir),
		LogLevel:    os.Getenv(EnvLogLevel),
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if cfg.SettingsDir == "" {
		dir, err := defaultSettingsDir()
		if err != nil {
			return Config{}, err
		}
		cfg.SettingsDir = dir
	}

	return cfg, nil
}

func defaultSettingsDir() (string, error) {
	if dir := os.Getenv(EnvSettingsDir); dir != "" {
		return dir, nil
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "deckclip"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve settings dir: %w", err)
	}
	return filepath.Join(home, ".deckclip"), nil
}
