package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Environment variables that override [FloCredentials].
const (
	EnvFloUsername = "FLO_USERNAME"
	EnvFloPassword = "FLO_PASSWORD"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Flo         FloConfig         `toml:"flo"`
	Database    DatabaseConfig    `toml:"database"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Flo FloCredentials `toml:"flo"`
}

// FloCredentials is the member account used to publish playlists.
type FloCredentials struct {
	Username string `toml:"username"`
	Password string `toml:"password"`
}

// FloConfig contains FLO endpoint and client settings.
type FloConfig struct {
	WebURL            string  `toml:"web_url"`
	APIURL            string  `toml:"api_url"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	TimeoutSeconds    int     `toml:"timeout_seconds"`
	MaxRedirects      int     `toml:"max_redirects"`
}

// Timeout returns the HTTP client timeout, or zero for none.
func (f FloConfig) Timeout() time.Duration {
	if f.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(f.TimeoutSeconds) * time.Second
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
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
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadEnvFile loads KEY=value pairs from a dotenv file into the process environment.
// A missing file is not an error. Variables already set are left untouched.
func LoadEnvFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides FLO credentials with [EnvFloUsername] and [EnvFloPassword] when they are set.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvFloUsername); v != "" {
		c.Credentials.Flo.Username = v
	}
	if v := os.Getenv(EnvFloPassword); v != "" {
		c.Credentials.Flo.Password = v
	}
}

// ValidateCredentials reports [ErrMissingCredentials] when the FLO username or password is empty.
func (c *Config) ValidateCredentials() error {
	if c.Credentials.Flo.Username == "" || c.Credentials.Flo.Password == "" {
		return fmt.Errorf("%w: set [credentials.flo] or %s/%s", ErrMissingCredentials, EnvFloUsername, EnvFloPassword)
	}
	return nil
}
