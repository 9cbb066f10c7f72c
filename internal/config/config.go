// Package config provides YAML configuration for the otl command and server.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/OpenTraceLab/OpenTraceLattice/pkg/pipe"
	"github.com/OpenTraceLab/OpenTraceLattice/pkg/render/raster"
	"github.com/OpenTraceLab/OpenTraceLattice/pkg/taoplot"
)

// Config is the root of config.yaml.
type Config struct {
	Tao    TaoConfig    `yaml:"tao"`
	Plot   PlotConfig   `yaml:"plot"`
	Render RenderConfig `yaml:"render"`
	Server ServerConfig `yaml:"server"`
}

// TaoConfig describes how to start the simulator and talk to it.
type TaoConfig struct {
	Command               string   `yaml:"command"`
	Args                  []string `yaml:"args"`
	Prompt                string   `yaml:"prompt"`
	CommandPrefix         string   `yaml:"command_prefix"`
	StartupTimeoutSeconds int      `yaml:"startup_timeout_seconds"`
	CommandTimeoutSeconds int      `yaml:"command_timeout_seconds"`
}

// PlotConfig holds the draw pass defaults.
type PlotConfig struct {
	Region      string `yaml:"region"`
	LayoutGraph string `yaml:"layout_graph"`
	FloorGraph  string `yaml:"floor_graph"`
}

// RenderConfig is the PNG output geometry.
type RenderConfig struct {
	Width      int     `yaml:"width"`
	Height     int     `yaml:"height"`
	FontSize   float64 `yaml:"font_size"`
	Background string  `yaml:"background"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Address              string `yaml:"address"`
	ReadTimeoutSeconds   int    `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds  int    `yaml:"write_timeout_seconds"`
	SessionIdleMinutes   int    `yaml:"session_idle_minutes"`
	MaxSessions          int    `yaml:"max_sessions"`
	EnableRequestLogging bool   `yaml:"enable_request_logging"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	ro := raster.DefaultOptions()
	return &Config{
		Tao: TaoConfig{
			Command:               "tao",
			Args:                  []string{"-noplot"},
			Prompt:                pipe.DefaultPrompt,
			CommandPrefix:         taoplot.DefaultPrefix,
			StartupTimeoutSeconds: 30,
			CommandTimeoutSeconds: 60,
		},
		Plot: PlotConfig{
			Region:      "r1",
			LayoutGraph: taoplot.DefaultLayoutGraph,
			FloorGraph:  taoplot.DefaultFloorGraph,
		},
		Render: RenderConfig{
			Width:      ro.Width,
			Height:     ro.Height,
			FontSize:   ro.FontSize,
			Background: ro.Background,
		},
		Server: ServerConfig{
			Address:              "127.0.0.1:8090",
			ReadTimeoutSeconds:   30,
			WriteTimeoutSeconds:  120,
			SessionIdleMinutes:   30,
			MaxSessions:          4,
			EnableRequestLogging: true,
		},
	}
}

// DefaultPath is ~/.config/otl/config.yaml, or config.yaml in the working
// directory when the home directory is unknown.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(dir, "otl", "config.yaml")
}

// Load reads path over the defaults. A missing file yields the defaults.
// Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}
	cfg.applyEnvironmentOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration, creating the parent directory.
func (c *Config) Save(path string) error {
	out, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	content := append([]byte("# otl configuration\n"), out...)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// applyEnvironmentOverrides lets OTL_TAO_COMMAND and OTL_ADDRESS replace the
// file values.
func (c *Config) applyEnvironmentOverrides() {
	if cmd := os.Getenv("OTL_TAO_COMMAND"); cmd != "" {
		c.Tao.Command = cmd
	}
	if addr := os.Getenv("OTL_ADDRESS"); addr != "" {
		c.Server.Address = addr
	}
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}
	check(strings.TrimSpace(c.Tao.Command) != "", "tao.command is empty")
	check(c.Tao.Prompt != "", "tao.prompt is empty")
	check(c.Tao.StartupTimeoutSeconds > 0, "tao.startup_timeout_seconds must be positive, got %d", c.Tao.StartupTimeoutSeconds)
	check(c.Tao.CommandTimeoutSeconds > 0, "tao.command_timeout_seconds must be positive, got %d", c.Tao.CommandTimeoutSeconds)
	check(c.Plot.LayoutGraph != "", "plot.layout_graph is empty")
	check(c.Plot.FloorGraph != "", "plot.floor_graph is empty")
	if err := c.RasterOptions().Validate(); err != nil {
		errs = append(errs, err)
	}
	check(c.Server.Address != "", "server.address is empty")
	check(c.Server.SessionIdleMinutes > 0, "server.session_idle_minutes must be positive, got %d", c.Server.SessionIdleMinutes)
	check(c.Server.MaxSessions > 0, "server.max_sessions must be positive, got %d", c.Server.MaxSessions)
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// ProcessConfig converts the tao section for pipe.Start.
func (c *Config) ProcessConfig() pipe.ProcessConfig {
	return pipe.ProcessConfig{
		Command:        c.Tao.Command,
		Args:           c.Tao.Args,
		Prompt:         c.Tao.Prompt,
		StartupTimeout: time.Duration(c.Tao.StartupTimeoutSeconds) * time.Second,
		QuitCommand:    "quit",
	}
}

// CommandTimeout bounds one draw pass or parameter query.
func (c *Config) CommandTimeout() time.Duration {
	return time.Duration(c.Tao.CommandTimeoutSeconds) * time.Second
}

// PlotOptions converts the tao and plot sections for taoplot.New.
func (c *Config) PlotOptions() []taoplot.Option {
	return []taoplot.Option{
		taoplot.WithPrefix(c.Tao.CommandPrefix),
		taoplot.WithLayoutGraph(c.Plot.LayoutGraph),
		taoplot.WithFloorGraph(c.Plot.FloorGraph),
	}
}

// RasterOptions converts the render section.
func (c *Config) RasterOptions() raster.Options {
	return raster.Options{
		Width:      c.Render.Width,
		Height:     c.Render.Height,
		FontSize:   c.Render.FontSize,
		Background: c.Render.Background,
	}
}

// SessionIdle is how long a server session may go unused.
func (c *Config) SessionIdle() time.Duration {
	return time.Duration(c.Server.SessionIdleMinutes) * time.Minute
}
