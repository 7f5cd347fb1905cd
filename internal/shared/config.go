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
	Twitch   TwitchConfig   `toml:"twitch"`
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
}

// TwitchConfig contains the Twitch application registration and API settings.
type TwitchConfig struct {
	ClientID   string   `toml:"client_id"`
	AuthURL    string   `toml:"auth_url"`
	APIURL     string   `toml:"api_url"`
	APIVersion int      `toml:"api_version"`
	Scopes     []string `toml:"scopes"`
	RateLimit  float64  `toml:"rate_limit"`
}

// ServerConfig contains the local callback server settings.
//
// The redirect URI registered with Twitch must be http://127.0.0.1:{port}{path}.
type ServerConfig struct {
	Port         int    `toml:"port"`
	Path         string `toml:"path"`
	AuthPage     string `toml:"auth_page"`
	FailurePage  string `toml:"failure_page"`
	SuccessPage  string `toml:"success_page"`
	ReadTimeout  string `toml:"read_timeout"`
	LoginTimeout string `toml:"login_timeout"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// Durations parses the read and login timeouts. Empty values parse as zero.
func (s ServerConfig) Durations() (read, login time.Duration, err error) {
	if read, err = parseDuration(s.ReadTimeout); err != nil {
		return 0, 0, fmt.Errorf("%w: read_timeout: %v", ErrInvalidConfig, err)
	}
	if login, err = parseDuration(s.LoginTimeout); err != nil {
		return 0, 0, fmt.Errorf("%w: login_timeout: %v", ErrInvalidConfig, err)
	}
	return read, login, nil
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the values from [DefaultConfig].
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
