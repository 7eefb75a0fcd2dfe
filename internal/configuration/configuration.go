package configuration

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// AppConfig represents the complete application configuration.
type AppConfig struct {
	// Logger: logger component configuration
	Logger LoggerConfig `mapstructure:"logger"`
	// Server: HTTP server configuration
	Server ServerConfig `mapstructure:"server"`
	// Model: trained model artifact
	Model ModelConfig `mapstructure:"model"`
	// Animation: decorative animations shown on the page
	Animation AnimationConfig `mapstructure:"animation"`
	// Guide: feature guide notes
	Guide GuideConfig `mapstructure:"guide"`
	// History: per-session prediction history
	History HistoryConfig `mapstructure:"history"`
	// Dataset: optional prediction log
	Dataset DatasetConfig `mapstructure:"dataset"`
}

// LoggerConfig defines logging settings.
type LoggerConfig struct {
	// Level: log level: debug, info, warn, warning, error.
	// Value is case-insensitive but checked in lowercase.
	Level string `mapstructure:"level"`
}

// ServerConfig contains HTTP server parameters.
type ServerConfig struct {
	// Address: address and port where the server will listen (e.g., ":8080").
	Address string `mapstructure:"address"`
	// Static: path to directory with static files served by the server.
	// Can be empty if static serving is not required.
	Static string `mapstructure:"static"`
	// SessionCookie: name of the cookie identifying a browser session.
	SessionCookie string `mapstructure:"session_cookie"`
}

// ModelConfig points at the serialized model.
type ModelConfig struct {
	// Path: model artifact file (YAML or JSON).
	Path string `mapstructure:"path"`
}

// AnimationConfig lists decorative animations by name.
type AnimationConfig struct {
	// URLs: animation name to Lottie JSON URL. Empty disables animations.
	URLs map[string]string `mapstructure:"urls"`
	// Timeout: bound of one download (default 5s).
	Timeout time.Duration `mapstructure:"timeout"`
	// TTL: how long a download result is reused (default 1h).
	TTL time.Duration `mapstructure:"ttl"`
}

// GuideConfig points at the feature guide rules.
type GuideConfig struct {
	// Rules: path to the YAML rules file. Empty disables notes.
	Rules string `mapstructure:"rules"`
}

// HistoryConfig defines the in-memory session history.
type HistoryConfig struct {
	// Length: predictions kept per session (default 10).
	Length int `mapstructure:"length"`
	// Sessions: maximal number of sessions kept; the least recently used
	// session is dropped first (default 10000).
	Sessions int `mapstructure:"sessions"`
	// TTL: idle time after which a session is forgotten (default 30m).
	TTL time.Duration `mapstructure:"ttl"`
}

// DatasetConfig defines the prediction log
type DatasetConfig struct {
	// Dataset file path (optional)
	File string `mapstructure:"file"`
	// Maximal dataset file size (default 100M)
	Size int `mapstructure:"size"`
	// Number of dataset files (default 20)
	Amount int `mapstructure:"amount"`
}

// Validate checks the correctness of the entire application configuration
// and fills defaults. Returns the first detected error.
func (c *AppConfig) Validate() error {
	if err := c.Logger.Validate(); err != nil {
		return err
	}

	if err := c.Server.Validate(); err != nil {
		return err
	}

	if err := c.Model.Validate(); err != nil {
		return err
	}

	if err := c.Animation.Validate(); err != nil {
		return err
	}

	if err := c.History.Validate(); err != nil {
		return err
	}

	return c.Dataset.Validate()
}

// Validate checks the correctness of the logger configuration.
// Supported values: debug, info, warn, warning, error (case-insensitive).
func (l *LoggerConfig) Validate() error {
	if l.Level == "" {
		return errors.New("logger.level: must be specified")
	}

	if _, ok := ParseLevel(l.Level); !ok {
		return fmt.Errorf("logger.level: unsupported level '%s'", l.Level)
	}

	return nil
}

// ParseLevel converts a configured level name into a slog level.
func ParseLevel(level string) (slog.Level, bool) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// Validate checks the correctness of the server configuration.
func (n *ServerConfig) Validate() error {
	if n.Address == "" {
		return errors.New("server.address: must be specified")
	}

	if n.SessionCookie == "" {
		n.SessionCookie = "wine_session"
	}

	return nil
}

// Validate checks that the model artifact path is set.
func (m *ModelConfig) Validate() error {
	if m.Path == "" {
		return errors.New("model.path: must be specified")
	}

	return nil
}

// Validate checks animation URLs
func (a *AnimationConfig) Validate() error {
	for name, raw := range a.URLs {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("animation.urls.%s: URL is incorrect", name)
		}
	}

	if a.Timeout <= 0 {
		a.Timeout = 5 * time.Second
	}

	if a.TTL <= 0 {
		a.TTL = time.Hour
	}

	return nil
}

// Validate history parameters
func (h *HistoryConfig) Validate() error {
	if h.Length < 0 {
		return errors.New("history.length: must not be negative")
	}

	if h.Length == 0 {
		h.Length = 10
	}

	if h.Sessions < 0 {
		return errors.New("history.sessions: must not be negative")
	}

	if h.Sessions == 0 {
		h.Sessions = 10000
	}

	if h.TTL <= 0 {
		h.TTL = 30 * time.Minute
	}

	return nil
}

// Validate dataset parameters
func (d *DatasetConfig) Validate() error {
	if d.Amount == 0 {
		d.Amount = 20
	}

	if d.Size == 0 {
		d.Size = 100
	}

	return nil
}

// LoadConfig loads configuration from the specified file using Viper.
// Supports YAML format. Environment variables (AutomaticEnv) override values
// from the file, e.g. MODEL_PATH for model.path.
//
// Returns an error if the file is not found or inaccessible, has an invalid
// format, or one of the sections fails validation.
func LoadConfig(configPath string) (*AppConfig, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	return unmarshal()
}

// WatchConfig calls onChange with the freshly loaded configuration every time
// the configuration file changes. Invalid revisions are logged and skipped.
// Only settings that can change at runtime (the log level) should be applied.
func WatchConfig(onChange func(*AppConfig)) {
	viper.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		config, err := unmarshal()
		if err != nil {
			slog.Warn("Ignoring configuration change", "file", e.Name, "error", err)
			return
		}
		slog.Info("Configuration reloaded", "file", e.Name)
		onChange(config)
	})
	viper.WatchConfig()
}

func unmarshal() (*AppConfig, error) {
	var config AppConfig
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}
