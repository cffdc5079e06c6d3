// Package lab runs an L-system described by a configuration file: the
// definition, how many steps to derive, and how to interpret and draw the
// result.
package lab

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/phroun/lsystem/pkg/surface"
)

// CommandConfig defines an interpretation command by its parameter names
// and a body of statements.
type CommandConfig struct {
	Parameters []string `yaml:"parameters" toml:"parameters"`
	Body       string   `yaml:"body" toml:"body"`
}

// RenderConfig holds the drawing options
type RenderConfig struct {
	Width       int     `yaml:"width" toml:"width"`
	Height      int     `yaml:"height" toml:"height"`
	Margin      float64 `yaml:"margin" toml:"margin"`
	StrokeWidth float64 `yaml:"stroke_width" toml:"stroke_width"`
	Stroke      string  `yaml:"stroke" toml:"stroke"`
	Background  string  `yaml:"background" toml:"background"`
}

// Config describes a lab session
type Config struct {
	// Definition is the L-system source. File names a file holding it
	// instead, relative to the configuration file.
	Definition string `yaml:"definition" toml:"definition"`
	File       string `yaml:"file" toml:"file"`

	Steps      int   `yaml:"steps" toml:"steps"`
	Seed       int64 `yaml:"seed" toml:"seed"`
	MaxModules int   `yaml:"max_modules" toml:"max_modules"`

	// Properties override the turtle's initial frame
	Properties map[string]interface{} `yaml:"properties" toml:"properties"`
	// Commands add or replace interpretation commands by module name
	Commands map[string]CommandConfig `yaml:"commands" toml:"commands"`
	// Aliases map a module name to the command it runs
	Aliases map[string]string `yaml:"aliases" toml:"aliases"`
	// IgnoreUnknown skips modules without a command instead of failing
	IgnoreUnknown bool `yaml:"ignore_unknown" toml:"ignore_unknown"`

	Render RenderConfig `yaml:"render" toml:"render"`

	// path is where the configuration was loaded from
	path string
}

// DefaultConfig returns a configuration deriving nothing with the default
// drawing options.
func DefaultConfig() *Config {
	opts := surface.DefaultOptions()
	return &Config{
		MaxModules: 1 << 20,
		Render: RenderConfig{
			Width:       opts.Width,
			Height:      opts.Height,
			Margin:      opts.Margin,
			StrokeWidth: opts.StrokeWidth,
			Stroke:      opts.Stroke,
			Background:  opts.Background,
		},
	}
}

// LoadConfig reads a YAML (.yaml, .yml) or TOML (.toml) configuration.
// Unset fields keep their defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading lab configuration")
	}
	cfg, err := ParseConfig(data, filepath.Ext(path))
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s", path)
	}
	cfg.path = path
	return cfg, nil
}

// ParseConfig decodes a configuration in the format named by ext
func ParseConfig(data []byte, ext string) (*Config, error) {
	cfg := DefaultConfig()
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(err, "decoding YAML")
		}
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, errors.Wrap(err, "decoding TOML")
		}
	default:
		return nil, errors.Errorf("unsupported configuration format %q", ext)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the fields that do not depend on the definition
func (c *Config) Validate() error {
	if c.Definition != "" && c.File != "" {
		return errors.New("definition and file are mutually exclusive")
	}
	if c.Definition == "" && c.File == "" {
		return errors.New("either definition or file is required")
	}
	if c.Steps < 0 {
		return errors.Errorf("steps must not be negative, got %d", c.Steps)
	}
	for name, cmd := range c.Commands {
		if strings.TrimSpace(cmd.Body) == "" {
			return errors.Errorf("command %q has an empty body", name)
		}
	}
	return nil
}

// Path returns the file the configuration was loaded from, if any
func (c *Config) Path() string {
	return c.path
}

// DefinitionPath returns the file holding the definition, resolved against
// the configuration's directory, or "" for an inline definition.
func (c *Config) DefinitionPath() string {
	if c.File == "" {
		return ""
	}
	if filepath.IsAbs(c.File) || c.path == "" {
		return c.File
	}
	return filepath.Join(filepath.Dir(c.path), c.File)
}

// Source returns the definition text and the name used in error positions
func (c *Config) Source() (string, string, error) {
	if c.File == "" {
		return c.Definition, "", nil
	}
	path := c.DefinitionPath()
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", errors.Wrap(err, "reading definition")
	}
	return string(data), path, nil
}

// SurfaceOptions converts the render section
func (c *Config) SurfaceOptions() surface.Options {
	return surface.Options{
		Width:       c.Render.Width,
		Height:      c.Render.Height,
		Margin:      c.Render.Margin,
		StrokeWidth: c.Render.StrokeWidth,
		Stroke:      c.Render.Stroke,
		Background:  c.Render.Background,
	}
}
