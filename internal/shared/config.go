package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Player    PlayerConfig    `toml:"player"`
	Database  DatabaseConfig  `toml:"database"`
	Generator GeneratorConfig `toml:"generator"`
	Sync      SyncConfig      `toml:"sync"`
}

// PlayerConfig contains the remote player endpoints.
type PlayerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// SocketURL returns the websocket endpoint for the push/pull channel.
func (p PlayerConfig) SocketURL() string {
	return fmt.Sprintf("ws://%s:%d/socket", p.Host, p.Port)
}

// APIBaseURL returns the base URL for the REST fallback API.
func (p PlayerConfig) APIBaseURL() string {
	return fmt.Sprintf("http://%s:%d/api/v1", p.Host, p.Port)
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// GeneratorConfig contains text generator (Anthropic) settings.
type GeneratorConfig struct {
	APIKey      string `toml:"api_key"`
	Model       string `toml:"model"`
	DefaultName string `toml:"default_name"`
}

// SyncConfig contains library synchronization settings.
type SyncConfig struct {
	TrackCacheLimit int `toml:"track_cache_limit"`
	BrowseTimeoutMS int `toml:"browse_timeout_ms"`
}

// BrowseTimeout returns the browse/search wait window as a [time.Duration].
func (s SyncConfig) BrowseTimeout() time.Duration {
	if s.BrowseTimeoutMS <= 0 {
		return 5 * time.Second
	}
	return time.Duration(s.BrowseTimeoutMS) * time.Millisecond
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	// Check if file already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	// Write the embedded example config to the file
	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
