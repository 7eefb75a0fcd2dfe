package configuration

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := writeConfig(t, `
logger:
  level: DEBUG
server:
  address: ":9090"
model:
  path: /srv/model.yaml
`)

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", config.Server.Address)
	assert.Equal(t, "wine_session", config.Server.SessionCookie)
	assert.Equal(t, "/srv/model.yaml", config.Model.Path)
	assert.Equal(t, 5*time.Second, config.Animation.Timeout)
	assert.Equal(t, time.Hour, config.Animation.TTL)
	assert.Equal(t, 10, config.History.Length)
	assert.Equal(t, 10000, config.History.Sessions)
	assert.Equal(t, 30*time.Minute, config.History.TTL)
	assert.Equal(t, 100, config.Dataset.Size)
	assert.Equal(t, 20, config.Dataset.Amount)
	assert.Empty(t, config.Dataset.File)
}

func TestLoadConfig_Full(t *testing.T) {
	path := writeConfig(t, `
logger:
  level: warn
server:
  address: ":8080"
  session_cookie: sid
model:
  path: model.yaml
animation:
  timeout: 2s
  ttl: 10m
  urls:
    wine: https://example.com/wine.json
guide:
  rules: guide.yaml
history:
  length: 3
  sessions: 50
  ttl: 1h
`)

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "sid", config.Server.SessionCookie)
	assert.Equal(t, map[string]string{"wine": "https://example.com/wine.json"}, config.Animation.URLs)
	assert.Equal(t, 2*time.Second, config.Animation.Timeout)
	assert.Equal(t, 10*time.Minute, config.Animation.TTL)
	assert.Equal(t, "guide.yaml", config.Guide.Rules)
	assert.Equal(t, 3, config.History.Length)
	assert.Equal(t, 50, config.History.Sessions)
	assert.Equal(t, time.Hour, config.History.TTL)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestAppConfig_Validate(t *testing.T) {
	valid := func() AppConfig {
		return AppConfig{
			Logger: LoggerConfig{Level: "info"},
			Server: ServerConfig{Address: ":8080"},
			Model:  ModelConfig{Path: "model.yaml"},
		}
	}

	cases := map[string]func(*AppConfig){
		"no level":      func(c *AppConfig) { c.Logger.Level = "" },
		"bad level":     func(c *AppConfig) { c.Logger.Level = "verbose" },
		"no address":    func(c *AppConfig) { c.Server.Address = "" },
		"no model path": func(c *AppConfig) { c.Model.Path = "" },
		"relative url":  func(c *AppConfig) { c.Animation.URLs = map[string]string{"wine": "/wine.json"} },
		"negative hist": func(c *AppConfig) { c.History.Length = -1 },
		"negative sess": func(c *AppConfig) { c.History.Sessions = -1 },
	}

	c := valid()
	require.NoError(t, c.Validate())

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := valid()
			mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"Warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for name, expected := range cases {
		level, ok := ParseLevel(name)
		assert.True(t, ok, name)
		assert.Equal(t, expected, level, name)
	}

	_, ok := ParseLevel("trace")
	assert.False(t, ok)
}

func TestWatchConfig_ReloadsLogLevel(t *testing.T) {
	const template = `
logger:
  level: %s
server:
  address: ":8080"
model:
  path: model.yaml
`
	path := writeConfig(t, fmt.Sprintf(template, "info"))
	config, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "info", config.Logger.Level)

	var level atomic.Value
	WatchConfig(func(c *AppConfig) {
		level.Store(c.Logger.Level)
	})

	// Replace the file atomically so the watcher never reads a partial write.
	next := filepath.Join(filepath.Dir(path), "next.yaml")
	require.NoError(t, os.WriteFile(next, []byte(fmt.Sprintf(template, "debug")), 0o600))
	require.NoError(t, os.Rename(next, path))

	assert.Eventually(t, func() bool {
		return level.Load() == "debug"
	}, 5*time.Second, 20*time.Millisecond)
}
