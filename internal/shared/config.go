package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Environment variables that override the backend section of the config file.
//
// The VITE_ prefixed names are accepted so a storefront .env.local can be reused as-is.
const (
	EnvBackendURL     = "SUPABASE_URL"
	EnvBackendAnonKey = "SUPABASE_ANON_KEY"
	EnvDatabasePath   = "ONLYHUB_DB_PATH"

	envViteBackendURL     = "VITE_SUPABASE_URL"
	envViteBackendAnonKey = "VITE_SUPABASE_ANON_KEY"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Backend  BackendConfig  `toml:"backend"`
	Database DatabaseConfig `toml:"database"`
	Auth     AuthConfig     `toml:"auth"`
	Realtime RealtimeConfig `toml:"realtime"`
	Server   ServerConfig   `toml:"server"`
}

// BackendConfig contains the hosted backend endpoint and anonymous access key.
//
// Leaving either value empty selects local-only mode.
type BackendConfig struct {
	URL            string `toml:"url"`
	AnonKey        string `toml:"anon_key"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// DatabaseConfig contains the local mirror database settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// AuthConfig contains admin login settings.
type AuthConfig struct {
	ResetRedirectURL string `toml:"reset_redirect_url"`
}

// RealtimeConfig contains change stream settings.
type RealtimeConfig struct {
	HeartbeatSeconds int     `toml:"heartbeat_seconds"`
	RefreshPerSecond float64 `toml:"refresh_per_second"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// BackendConfigured reports whether both backend values are present.
func (c *Config) BackendConfigured() bool {
	return strings.TrimSpace(c.Backend.URL) != "" && strings.TrimSpace(c.Backend.AnonKey) != ""
}

// Timeout returns the backend request timeout.
func (c *Config) Timeout() time.Duration {
	if c.Backend.TimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.Backend.TimeoutSeconds) * time.Second
}

// Heartbeat returns the realtime heartbeat interval.
func (c *Config) Heartbeat() time.Duration {
	if c.Realtime.HeartbeatSeconds <= 0 {
		return 25 * time.Second
	}
	return time.Duration(c.Realtime.HeartbeatSeconds) * time.Second
}

// ApplyEnv overrides config values with any environment variables that are set.
func (c *Config) ApplyEnv() {
	if v := firstEnv(EnvBackendURL, envViteBackendURL); v != "" {
		c.Backend.URL = v
	}
	if v := firstEnv(EnvBackendAnonKey, envViteBackendAnonKey); v != "" {
		c.Backend.AnonKey = v
	}
	if v := firstEnv(EnvDatabasePath); v != "" {
		c.Database.Path = v
	}
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// LoadEnvFiles loads variables from the given dotenv files into the process environment.
//
// Missing files are skipped; variables already set in the environment win.
func LoadEnvFiles(paths ...string) error {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", path, err)
		}
	}
	return nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Values omitted from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
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
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
