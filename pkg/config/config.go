package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/duration"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

var binPath = "pulse"

// ErrNilConfig is returned when a nil config is passed to a function.
var ErrNilConfig = errors.New("nil config")

// HTTPConfig is the HTTP configuration for the server.
type HTTPConfig struct {
	// Enabled toggles the HTTP API server.
	Enabled bool `env:"ENABLED" yaml:"enabled"`

	// ListenAddr is the address on which the HTTP server will listen.
	ListenAddr string `env:"LISTEN_ADDR" yaml:"listen_addr"`

	// PublicURL is the public URL of the HTTP server.
	// It is used as the issuer of session tokens.
	PublicURL string `env:"PUBLIC_URL" yaml:"public_url"`
}

// StatsConfig is the configuration for the stats server.
type StatsConfig struct {
	// Enabled toggles the stats server.
	Enabled bool `env:"ENABLED" yaml:"enabled"`

	// ListenAddr is the address on which the stats server will listen.
	ListenAddr string `env:"LISTEN_ADDR" yaml:"listen_addr"`
}

// LogConfig is the logger configuration.
type LogConfig struct {
	// Format is the format of the logs.
	// Valid values are "json", "logfmt", and "text".
	Format string `env:"FORMAT" yaml:"format"`

	// Time format for the log `ts` field.
	// Format must be described in Golang's time format.
	TimeFormat string `env:"TIME_FORMAT" yaml:"time_format"`

	// Path to a file to write logs to.
	// If not set, logs will be written to stderr.
	Path string `env:"PATH" yaml:"path"`
}

// DBConfig is the database connection configuration.
type DBConfig struct {
	// Driver is the driver for the database.
	// Valid values are "sqlite" and "postgres".
	Driver string `env:"DRIVER" yaml:"driver"`

	// DataSource is the database data source name.
	DataSource string `env:"DATA_SOURCE" yaml:"data_source"`
}

// HandleConfig configures handle reservations.
type HandleConfig struct {
	// Cooldown is the minimum time between two handle changes of the same
	// account, e.g. "7d" or "36h".
	Cooldown string `env:"COOLDOWN" yaml:"cooldown"`

	// TxTimeout bounds a single reservation transaction attempt, e.g. "5s".
	TxTimeout string `env:"TX_TIMEOUT" yaml:"tx_timeout"`

	// MaxRetries is the number of times a reservation transaction is retried
	// after a serialization conflict.
	MaxRetries int `env:"MAX_RETRIES" yaml:"max_retries"`

	// Reserved is a list of glob patterns of handles no account may claim.
	Reserved []string `env:"RESERVED" envSeparator:"," yaml:"reserved"`
}

// DefaultCooldown is the handle change cooldown used when none is configured.
const DefaultCooldown = 7 * 24 * time.Hour

// CooldownPeriod returns the parsed cooldown period.
func (h HandleConfig) CooldownPeriod() time.Duration {
	if h.Cooldown == "" {
		return DefaultCooldown
	}
	d, err := duration.Parse(h.Cooldown)
	if err != nil {
		return DefaultCooldown
	}
	return d
}

// TxTimeoutPeriod returns the parsed transaction timeout.
func (h HandleConfig) TxTimeoutPeriod() time.Duration {
	d, err := duration.Parse(h.TxTimeout)
	if err != nil || d <= 0 {
		return 5 * time.Second
	}
	return d
}

// SessionConfig is the configuration for session tokens.
type SessionConfig struct {
	// KeyPath is the path to the Ed25519 key used to sign session tokens.
	KeyPath string `env:"KEY_PATH" yaml:"key_path"`

	// Expiry is how long an issued session token stays valid, e.g. "24h".
	Expiry string `env:"EXPIRY" yaml:"expiry"`
}

// JobsConfig is the configuration for cron jobs.
type JobsConfig struct {
	ReservationStats string `env:"RESERVATION_STATS" yaml:"reservation_stats"`
}

// Config is the configuration for Pulse.
type Config struct {
	// Name is the name of the server.
	Name string `env:"NAME" yaml:"name"`

	// HTTP is the configuration for the HTTP server.
	HTTP HTTPConfig `envPrefix:"HTTP_" yaml:"http"`

	// Stats is the configuration for the stats server.
	Stats StatsConfig `envPrefix:"STATS_" yaml:"stats"`

	// Log is the logger configuration.
	Log LogConfig `envPrefix:"LOG_" yaml:"log"`

	// DB is the database configuration.
	DB DBConfig `envPrefix:"DB_" yaml:"db"`

	// Handle is the handle reservation configuration.
	Handle HandleConfig `envPrefix:"HANDLE_" yaml:"handle"`

	// Session is the session token configuration.
	Session SessionConfig `envPrefix:"SESSION_" yaml:"session"`

	// Jobs is the configuration for cron jobs
	Jobs JobsConfig `envPrefix:"JOBS_" yaml:"jobs"`

	// DataPath is the path to the directory where Pulse will store its data.
	DataPath string `env:"DATA_PATH" yaml:"-"`
}

// Environ returns the config as a list of environment variables.
func (c *Config) Environ() []string {
	envs := []string{
		fmt.Sprintf("PULSE_BIN_PATH=%s", binPath),
	}
	if c == nil {
		return envs
	}

	envs = append(envs, []string{
		fmt.Sprintf("PULSE_DATA_PATH=%s", c.DataPath),
		fmt.Sprintf("PULSE_NAME=%s", c.Name),
		fmt.Sprintf("PULSE_HTTP_ENABLED=%t", c.HTTP.Enabled),
		fmt.Sprintf("PULSE_HTTP_LISTEN_ADDR=%s", c.HTTP.ListenAddr),
		fmt.Sprintf("PULSE_HTTP_PUBLIC_URL=%s", c.HTTP.PublicURL),
		fmt.Sprintf("PULSE_STATS_ENABLED=%t", c.Stats.Enabled),
		fmt.Sprintf("PULSE_STATS_LISTEN_ADDR=%s", c.Stats.ListenAddr),
		fmt.Sprintf("PULSE_LOG_FORMAT=%s", c.Log.Format),
		fmt.Sprintf("PULSE_LOG_TIME_FORMAT=%s", c.Log.TimeFormat),
		fmt.Sprintf("PULSE_DB_DRIVER=%s", c.DB.Driver),
		fmt.Sprintf("PULSE_DB_DATA_SOURCE=%s", c.DB.DataSource),
		fmt.Sprintf("PULSE_HANDLE_COOLDOWN=%s", c.Handle.Cooldown),
		fmt.Sprintf("PULSE_HANDLE_TX_TIMEOUT=%s", c.Handle.TxTimeout),
		fmt.Sprintf("PULSE_HANDLE_MAX_RETRIES=%d", c.Handle.MaxRetries),
		fmt.Sprintf("PULSE_HANDLE_RESERVED=%s", strings.Join(c.Handle.Reserved, ",")),
		fmt.Sprintf("PULSE_SESSION_KEY_PATH=%s", c.Session.KeyPath),
		fmt.Sprintf("PULSE_SESSION_EXPIRY=%s", c.Session.Expiry),
		fmt.Sprintf("PULSE_JOBS_RESERVATION_STATS=%s", c.Jobs.ReservationStats),
	}...)

	return envs
}

// IsDebug returns true if the server is running in debug mode.
func IsDebug() bool {
	debug, _ := strconv.ParseBool(os.Getenv("PULSE_DEBUG"))
	return debug
}

// IsVerbose returns true if the server is running in verbose mode.
// Verbose mode is only enabled if debug mode is enabled.
func IsVerbose() bool {
	verbose, _ := strconv.ParseBool(os.Getenv("PULSE_VERBOSE"))
	return IsDebug() && verbose
}

// parseFile parses the given file as a configuration file.
// The file must be in YAML format.
func parseFile(cfg *Config, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}

	defer f.Close() // nolint: errcheck
	if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}

	return cfg.Validate()
}

// ParseFile parses the config from the default file path.
// This also calls Validate() on the config.
func (c *Config) ParseFile() error {
	return parseFile(c, c.ConfigPath())
}

// parseEnv parses the environment variables as a configuration file.
func parseEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{
		Prefix: "PULSE_",
	}); err != nil {
		return fmt.Errorf("parse environment variables: %w", err)
	}

	return cfg.Validate()
}

// ParseEnv parses the config from the environment variables.
// This also calls Validate() on the config.
func (c *Config) ParseEnv() error {
	return parseEnv(c)
}

// Parse parses the config from the default file path and environment variables.
// This also calls Validate() on the config.
func (c *Config) Parse() error {
	if err := c.ParseFile(); err != nil {
		return err
	}

	return c.ParseEnv()
}

// writeConfig writes the configuration to the given file.
func writeConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(newConfigFile(cfg)), 0o644) // nolint: errcheck, gosec
}

// WriteConfig writes the configuration to the default file.
func (c *Config) WriteConfig() error {
	return writeConfig(c, c.ConfigPath())
}

// DefaultDataPath returns the path to the data directory.
// It uses the PULSE_DATA_PATH environment variable if set, otherwise it
// uses "data".
func DefaultDataPath() string {
	dp := os.Getenv("PULSE_DATA_PATH")
	if dp == "" {
		dp = "data"
	}

	return dp
}

// ConfigPath returns the path to the config file.
func (c *Config) ConfigPath() string { // nolint:revive
	return filepath.Join(c.DataPath, "config.yaml")
}

func exist(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Exist returns true if the config file exists.
func (c *Config) Exist() bool {
	return exist(c.ConfigPath())
}

// DefaultConfig returns the default Config. All the path values are relative
// to the data directory.
// Use Validate() to validate the config and ensure absolute paths.
func DefaultConfig() *Config {
	return &Config{
		Name:     "Pulse",
		DataPath: DefaultDataPath(),
		HTTP: HTTPConfig{
			Enabled:    true,
			ListenAddr: ":8420",
			PublicURL:  "http://localhost:8420",
		},
		Stats: StatsConfig{
			Enabled:    true,
			ListenAddr: "localhost:8421",
		},
		Log: LogConfig{
			Format:     "text",
			TimeFormat: time.DateTime,
		},
		DB: DBConfig{
			Driver: "sqlite",
			DataSource: "pulse.db" +
				"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_txlock=immediate",
		},
		Handle: HandleConfig{
			Cooldown:   "7d",
			TxTimeout:  "5s",
			MaxRetries: 5,
			Reserved:   []string{"admin", "root", "support", "pulse*"},
		},
		Session: SessionConfig{
			KeyPath: filepath.Join("keys", "pulse_session_ed25519"),
			Expiry:  "24h",
		},
		Jobs: JobsConfig{
			ReservationStats: "@every 1m",
		},
	}
}

// Validate validates the configuration.
// It updates the configuration with absolute paths.
func (c *Config) Validate() error {
	// Use absolute paths
	if !filepath.IsAbs(c.DataPath) {
		dp, err := filepath.Abs(c.DataPath)
		if err != nil {
			return err
		}
		c.DataPath = dp
	}

	c.HTTP.PublicURL = strings.TrimSuffix(c.HTTP.PublicURL, "/")

	if c.Session.KeyPath != "" && !filepath.IsAbs(c.Session.KeyPath) {
		c.Session.KeyPath = filepath.Join(c.DataPath, c.Session.KeyPath)
	}

	if strings.HasPrefix(c.DB.Driver, "sqlite") && !filepath.IsAbs(c.DB.DataSource) {
		c.DB.DataSource = filepath.Join(c.DataPath, c.DB.DataSource)
	}

	if c.Handle.Cooldown != "" {
		if _, err := duration.Parse(c.Handle.Cooldown); err != nil {
			return fmt.Errorf("invalid handle cooldown %q: %w", c.Handle.Cooldown, err)
		}
	}

	if c.Handle.TxTimeout != "" {
		if _, err := duration.Parse(c.Handle.TxTimeout); err != nil {
			return fmt.Errorf("invalid handle transaction timeout %q: %w", c.Handle.TxTimeout, err)
		}
	}

	if c.Handle.MaxRetries < 0 {
		return fmt.Errorf("handle max retries must not be negative")
	}

	if c.Session.Expiry != "" {
		if _, err := duration.Parse(c.Session.Expiry); err != nil {
			return fmt.Errorf("invalid session expiry %q: %w", c.Session.Expiry, err)
		}
	}

	return nil
}

// SessionExpiry returns the parsed session token lifetime. It defaults to a
// day when unset or invalid.
func (c *Config) SessionExpiry() time.Duration {
	d, err := duration.Parse(c.Session.Expiry)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}

func init() {
	ex, err := os.Executable()
	if err != nil {
		ex = "pulse"
	}
	ex = filepath.ToSlash(ex)
	binPath = ex
}
