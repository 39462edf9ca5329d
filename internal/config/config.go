package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// DefaultFrequencySeconds is the minimum elapsed time between successive
// commits when the config and CLI don't override it.
const DefaultFrequencySeconds = 5

// Config represents the main configuration for tvc.
type Config struct {
	FrequencySeconds int              `toml:"frequency_seconds"`
	BaseDir          string           `toml:"base_dir"`
	LogDir           string           `toml:"log_dir"`
	Database         DatabaseConfig   `toml:"database"`
	Filesystem       FilesystemConfig `toml:"filesystem"`
	Watch            WatchConfig      `toml:"watch"`
}

// DatabaseConfig represents configuration for the registry and version
// databases. This uses a tagged union pattern - the Type field determines
// which other fields are relevant.
type DatabaseConfig struct {
	Type string `toml:"type"` // "sqlite" or "memory"
}

// FilesystemConfig holds filesystem-related settings.
type FilesystemConfig struct {
	// Ignore patterns are excluded from checksum computation, in addition
	// to hidden entries and any per-tree .tvcignore file.
	Ignore []string `toml:"ignore"`
}

// WatchConfig controls the daemon's optional fsnotify trigger.
type WatchConfig struct {
	Enabled        bool `toml:"enabled"`
	DebounceMillis int  `toml:"debounce_millis"`
}

// NewConfig creates a new Config with the provided base directory and
// default values.
func NewConfig(baseDir string) *Config {
	return &Config{
		FrequencySeconds: DefaultFrequencySeconds,
		BaseDir:          baseDir,
		LogDir:           filepath.Join(baseDir, "log"),
		Database:         DatabaseConfig{Type: "sqlite"},
		Watch:            WatchConfig{DebounceMillis: 500},
	}
}

// Frequency returns the configured commit frequency as a duration.
func (c *Config) Frequency() time.Duration {
	if c.FrequencySeconds <= 0 {
		return DefaultFrequencySeconds * time.Second
	}
	return time.Duration(c.FrequencySeconds) * time.Second
}

// Debounce returns the configured watch debounce window.
func (c *Config) Debounce() time.Duration {
	if c.Watch.DebounceMillis <= 0 {
		return 500 * time.Millisecond
	}
	return time.Duration(c.Watch.DebounceMillis) * time.Millisecond
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
// This is an internal helper and should not be exported.
func writeToFile(path string, cfg *Config) error {
	// Ensure the directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	// Check if config already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
