package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Watch   WatchConfig       `yaml:"watch"`
	Output  OutputConfig      `yaml:"output"`
	Markers MarkersConfig     `yaml:"markers"`
	Auth    AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Watch.Validate(); err != nil {
		return err
	}
	if err := c.Output.Validate(); err != nil {
		return err
	}
	if err := c.Markers.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// WatchConfig holds the watched directory and stability-detection timing.
type WatchConfig struct {
	Dir               string `yaml:"dir"`
	Extension         string `yaml:"extension"`
	InactivitySeconds int    `yaml:"inactivity_seconds"`
	PollSeconds       int    `yaml:"poll_seconds"`
}

// Inactivity returns the quiet period after which a file is considered stable.
func (c *WatchConfig) Inactivity() time.Duration {
	return time.Duration(c.InactivitySeconds) * time.Second
}

// PollInterval returns how often tracked files are checked for stability.
func (c *WatchConfig) PollInterval() time.Duration {
	return time.Duration(c.PollSeconds) * time.Second
}

// Validate validates the watch configuration.
func (c *WatchConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Dir, validation.Required),
		validation.Field(&c.Extension, validation.Required),
		validation.Field(&c.InactivitySeconds, validation.Required, validation.Min(1)),
		validation.Field(&c.PollSeconds, validation.Required, validation.Min(1)),
	)
}

// OutputConfig holds the EPIC log output base directory.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// Validate validates the output configuration.
func (c *OutputConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Dir, validation.Required),
	)
}

// MarkersConfig holds the processed-marker database configuration.
// PruneMinutes of 0 disables periodic pruning of markers for vanished files.
type MarkersConfig struct {
	Path         string `yaml:"path"`
	PruneMinutes int    `yaml:"prune_minutes"`
}

// PruneInterval returns how often markers for vanished files are pruned.
func (c *MarkersConfig) PruneInterval() time.Duration {
	return time.Duration(c.PruneMinutes) * time.Minute
}

// PruneEnabled returns true when periodic marker pruning is active.
func (c *MarkersConfig) PruneEnabled() bool {
	return c.PruneMinutes > 0
}

// Validate validates the markers configuration.
func (c *MarkersConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.PruneMinutes, validation.Min(0)),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local use.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8484,
			},
		},
		Watch: WatchConfig{
			Dir:               "./pdirs",
			Extension:         ".dat",
			InactivitySeconds: 20,
			PollSeconds:       5,
		},
		Output: OutputConfig{
			Dir: "./logs",
		},
		Markers: MarkersConfig{
			Path:         "./datwatch.db",
			PruneMinutes: 60,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
