// Package config handles ketchup.toml and ketchup.yaml configuration files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	ketchup "github.com/nilq/ketchup/pkg"
)

// Names searched by FindAndLoad, in order.
var FileNames = []string{"ketchup.toml", "ketchup.yaml", "ketchup.yml"}

type Config struct {
	Runtime Runtime `toml:"runtime" yaml:"runtime"`
	Log     Log     `toml:"log" yaml:"log"`
	Cache   Cache   `toml:"cache" yaml:"cache"`
	Repl    Repl    `toml:"repl" yaml:"repl"`

	// Path is the file the configuration was loaded from (set at load time).
	Path string `toml:"-" yaml:"-"`
}

type Runtime struct {
	Unbound  string `toml:"unbound" yaml:"unbound"`
	MaxDepth int    `toml:"max_depth" yaml:"max_depth"`
	Blocks   string `toml:"blocks" yaml:"blocks"`
}

type Log struct {
	Verbosity int    `toml:"verbosity" yaml:"verbosity"`
	File      string `toml:"file" yaml:"file"`
}

// Cache enables the compiled program cache when Enabled or Path is set. An
// enabled cache without a path lives in the user cache directory.
type Cache struct {
	Enabled bool   `toml:"enabled" yaml:"enabled"`
	Path    string `toml:"path" yaml:"path"`
}

// Active reports whether the program cache should be opened.
func (c Cache) Active() bool {
	return c.Enabled || c.Path != ""
}

type Repl struct {
	Prompt string `toml:"prompt" yaml:"prompt"`
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	c := &Config{}
	c.setDefaults()
	return c
}

// Load parses a configuration file, picking the decoder by extension.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	return Parse(data, path)
}

func Parse(data []byte, path string) (*Config, error) {
	var c Config

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if err := toml.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("parse error in %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("parse error in %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("%s: unsupported config format %q", path, ext)
	}

	c.Path = path
	c.setDefaults()

	if err := c.validate(); err != nil {
		return nil, err
	}

	return &c, nil
}

// FindAndLoad walks up from startDir looking for a configuration file. It
// returns nil if none is found.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		for _, name := range FileNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return Load(path)
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

func (c *Config) setDefaults() {
	if c.Runtime.Unbound == "" {
		c.Runtime.Unbound = ketchup.UnboundSkip.String()
	}

	if c.Runtime.Blocks == "" {
		c.Runtime.Blocks = ketchup.BlocksIndent.String()
	}

	if c.Repl.Prompt == "" {
		c.Repl.Prompt = "> "
	}
}

func (c *Config) validate() error {
	if _, err := ketchup.ParseUnboundPolicy(c.Runtime.Unbound); err != nil {
		return fmt.Errorf("%s: runtime.unbound: %w", c.Path, err)
	}

	if _, err := ketchup.ParseBlockMode(c.Runtime.Blocks); err != nil {
		return fmt.Errorf("%s: runtime.blocks: %w", c.Path, err)
	}

	if c.Runtime.MaxDepth < 0 {
		return fmt.Errorf("%s: runtime.max_depth must not be negative", c.Path)
	}

	if c.Log.Verbosity < 0 {
		return fmt.Errorf("%s: log.verbosity must not be negative", c.Path)
	}

	return nil
}

// Options builds interpreter options from the runtime section.
func (c *Config) Options() (ketchup.Options, error) {
	unbound, err := ketchup.ParseUnboundPolicy(c.Runtime.Unbound)
	if err != nil {
		return ketchup.Options{}, err
	}

	blocks, err := ketchup.ParseBlockMode(c.Runtime.Blocks)
	if err != nil {
		return ketchup.Options{}, err
	}

	return ketchup.Options{
		Blocks: blocks,
		Machine: ketchup.MachineOptions{
			Unbound:  unbound,
			MaxDepth: c.Runtime.MaxDepth,
		},
	}, nil
}
