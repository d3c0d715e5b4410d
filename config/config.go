package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// EnvServerURL overrides Config.ServerURL when set.
const EnvServerURL = "HOLO_SERVER_URL"

// defaultRelPath is the config location under the XDG config home.
const defaultRelPath = "holo/config.yaml"

// Config holds runtime configuration for the client.
// Fields may be loaded from a JSON or YAML file and overridden by command-line flags.
type Config struct {
	Debug bool `json:"debug" yaml:"debug"`

	// Restoration service
	ServerURL             string `json:"server_url" yaml:"server_url"`
	RestorePath           string `json:"restore_path" yaml:"restore_path"`
	RequestTimeoutSeconds int    `json:"request_timeout_seconds" yaml:"request_timeout_seconds"`

	// Layout
	PreviewWidth int  `json:"preview_width" yaml:"preview_width"`
	ViewerWidth  int  `json:"viewer_width" yaml:"viewer_width"`
	ViewerHeight int  `json:"viewer_height" yaml:"viewer_height"`
	WindowWidth  int  `json:"window_width" yaml:"window_width"`
	WindowHeight int  `json:"window_height" yaml:"window_height"`
	TickMillis   int  `json:"tick_millis" yaml:"tick_millis"`
	DarkMode     bool `json:"dark_mode" yaml:"dark_mode"`

	// Screen grab region persistence
	SelectionX int `json:"selection_x" yaml:"selection_x"`
	SelectionY int `json:"selection_y" yaml:"selection_y"`
	SelectionW int `json:"selection_w" yaml:"selection_w"`
	SelectionH int `json:"selection_h" yaml:"selection_h"`
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	return &Config{
		Debug:                 false,
		ServerURL:             "http://localhost:5000",
		RestorePath:           "/api/restore",
		RequestTimeoutSeconds: 300,
		PreviewWidth:          280,
		ViewerWidth:           640,
		ViewerHeight:          480,
		WindowWidth:           1000,
		WindowHeight:          620,
		TickMillis:            50,
		DarkMode:              false,
	}
}

// Validate clamps/normalizes values to safe ranges.
func (c *Config) Validate() error {
	c.ServerURL = strings.TrimRight(strings.TrimSpace(c.ServerURL), "/")
	if c.ServerURL == "" {
		c.ServerURL = "http://localhost:5000"
	}
	if !strings.HasPrefix(c.RestorePath, "/") {
		c.RestorePath = "/" + c.RestorePath
	}
	if c.RestorePath == "/" {
		c.RestorePath = "/api/restore"
	}
	if c.RequestTimeoutSeconds < 0 {
		c.RequestTimeoutSeconds = 0
	}
	if c.PreviewWidth <= 0 {
		c.PreviewWidth = 280
	}
	if c.ViewerWidth < 160 {
		c.ViewerWidth = 160
	}
	if c.ViewerHeight < 120 {
		c.ViewerHeight = 120
	}
	if c.WindowWidth < 320 {
		c.WindowWidth = 320
	}
	if c.WindowHeight < 240 {
		c.WindowHeight = 240
	}
	if c.TickMillis <= 0 {
		c.TickMillis = 50
	}
	if c.SelectionW < 0 || c.SelectionH < 0 {
		c.SelectionW, c.SelectionH = 0, 0
	}
	return nil
}

// RestoreURL joins the server URL and restore path.
func (c *Config) RestoreURL() string {
	return c.ServerURL + c.RestorePath
}

// RequestTimeout returns the HTTP timeout; zero disables it.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// Tick returns the presenter loop interval.
func (c *Config) Tick() time.Duration {
	return time.Duration(c.TickMillis) * time.Millisecond
}

// ApplyEnv applies environment overrides.
func (c *Config) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvServerURL)); v != "" {
		c.ServerURL = v
	}
}

// DefaultPath returns the per-user config file, creating its directory. An
// empty string means no usable location.
func DefaultPath() string {
	path, err := xdg.ConfigFile(defaultRelPath)
	if err != nil {
		return ""
	}
	return path
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// Load attempts to read configuration from the given path. If the file does not
// exist it returns DefaultConfig(). On decode error it returns defaults with the error.
// Files ending in .yaml or .yml are parsed as YAML, anything else as JSON.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if isYAML(path) {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return DefaultConfig(), fmt.Errorf("invalid YAML in %s: %w", path, err)
		}
	} else if err := json.Unmarshal(data, cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("invalid JSON in %s: %w", path, err)
	}
	_ = cfg.Validate()
	return cfg, nil
}

// Save writes the configuration to the given path, YAML or JSON by extension.
func (c *Config) Save(path string) error {
	if path == "" {
		return nil
	}
	_ = c.Validate()
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if isYAML(path) {
		enc := yaml.NewEncoder(f)
		enc.SetIndent(2)
		if err := enc.Encode(c); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}
