package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/playit-manager/playit-manager/internal/playit"
)

// For mocking in tests
var osUserHomeDir = os.UserHomeDir
var osGetwd = os.Getwd

const (
	userConfigDir  = ".config/playit-manager"
	configFileName = "config.yaml"
	logFileName    = "playit-manager.log"
	journalName    = "history.jsonl"
)

// Config holds the tunable settings of the manager.
type Config struct {
	BaseURL        string        `yaml:"base_url"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	LogLevel       string        `yaml:"log_level"`
	LogFile        string        `yaml:"log_file"`
	HistoryLimit   int           `yaml:"history_limit"`

	// Dir is where config, credentials, logs and the journal live.
	Dir string `yaml:"-"`
}

// Default returns the built-in settings rooted at dir.
func Default(dir string) Config {
	return Config{
		BaseURL:        playit.DefaultBaseURL,
		RequestTimeout: playit.DefaultTimeout,
		LogLevel:       "info",
		LogFile:        filepath.Join(dir, logFileName),
		HistoryLimit:   20,
		Dir:            dir,
	}
}

// ConfigDir returns ~/.config/playit-manager, or a directory under the
// working directory when no home directory is known.
func ConfigDir() (string, error) {
	if home, err := osUserHomeDir(); err == nil && home != "" {
		return filepath.Join(home, userConfigDir), nil
	}
	wd, err := osGetwd()
	if err != nil {
		return "", fmt.Errorf("failed to determine config directory: %w", err)
	}
	return filepath.Join(wd, userConfigDir), nil
}

// Load reads config.yaml from the config directory on top of the defaults.
// A missing file is not an error.
func Load() (Config, error) {
	dir, err := ConfigDir()
	if err != nil {
		return Config{}, err
	}
	return LoadFrom(dir)
}

// LoadFrom is Load with an explicit directory.
func LoadFrom(dir string) (Config, error) {
	cfg := Default(dir)

	path := filepath.Join(dir, configFileName)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("error loading config from %s: %w", path, err)
	}

	var overlay Config
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return Config{}, fmt.Errorf("error parsing config %s: %w", path, err)
	}
	return merge(cfg, overlay), nil
}

// merge applies the non-zero fields of overlay to base.
func merge(base, overlay Config) Config {
	if overlay.BaseURL != "" {
		base.BaseURL = overlay.BaseURL
	}
	if overlay.RequestTimeout > 0 {
		base.RequestTimeout = overlay.RequestTimeout
	}
	if overlay.LogLevel != "" {
		base.LogLevel = overlay.LogLevel
	}
	if overlay.LogFile != "" {
		base.LogFile = overlay.LogFile
	}
	if overlay.HistoryLimit > 0 {
		base.HistoryLimit = overlay.HistoryLimit
	}
	return base
}

// ClientConfig converts the settings into account client options.
func (c Config) ClientConfig() playit.ClientConfig {
	return playit.ClientConfig{
		BaseURL: c.BaseURL,
		Timeout: c.RequestTimeout,
	}
}

// JournalPath is the JSONL file that records tunnel mutations.
func (c Config) JournalPath() string {
	return filepath.Join(c.Dir, journalName)
}
