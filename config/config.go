// Package config contains lrgen configuration loaded from TOML file.
package config

import (
	"io"

	"github.com/BurntSushi/toml"
	"github.com/pingcap/errors"

	"github.com/ava12/lrx/automaton"
	"github.com/ava12/lrx/log"
)

// Output formats:
const (
	FormatJSON = "json"
	FormatGo   = "go"
)

// Config is the complete lrgen configuration.
type Config struct {
	Log   log.Config `toml:"log" json:"log"`
	Build Build      `toml:"build" json:"build"`
	Emit  Emit       `toml:"emit" json:"emit"`
}

// Build contains automaton construction options.
type Build struct {
	// Strict makes every unresolved conflict an error.
	Strict bool `toml:"strict" json:"strict"`
	// Workers limits the number of goroutines computing action rows, 0 means GOMAXPROCS.
	Workers int `toml:"workers" json:"workers"`
	// Goals overrides goal declarations of the grammar if not empty.
	Goals []string `toml:"goals" json:"goals"`
}

// Emit contains output options.
type Emit struct {
	// Format is either "json" or "go".
	Format string `toml:"format" json:"format"`
	// Package is the Go package name, default is the output directory name.
	Package string `toml:"package" json:"package"`
	// Var is the Go variable name, default is the first goal name.
	Var string `toml:"var" json:"var"`
	// Output is the output file name, default is the grammar file name with format suffix.
	Output string `toml:"output" json:"output"`
}

var defaultConf = Config{
	Log: log.Config{
		Level:  "warn",
		Format: "text",
	},
	Emit: Emit{
		Format: FormatGo,
	},
}

// Default returns configuration with default values.
func Default() *Config {
	conf := defaultConf
	return &conf
}

// Load loads configuration from TOML file over default values.
func Load(path string) (*Config, error) {
	conf := Default()
	meta, e := toml.DecodeFile(path, conf)
	if e != nil {
		return nil, errors.Trace(e)
	}
	if len(meta.Undecoded()) > 0 {
		return nil, errors.Errorf("unknown keys in config file %s: %v", path, meta.Undecoded())
	}
	return validated(conf)
}

// Decode reads TOML configuration over default values.
func Decode(r io.Reader) (*Config, error) {
	conf := Default()
	meta, e := toml.NewDecoder(r).Decode(conf)
	if e != nil {
		return nil, errors.Trace(e)
	}
	if len(meta.Undecoded()) > 0 {
		return nil, errors.Errorf("unknown config keys: %v", meta.Undecoded())
	}
	return validated(conf)
}

func validated(c *Config) (*Config, error) {
	if e := c.Validate(); e != nil {
		return nil, e
	}
	return c, nil
}

// Validate checks option values.
func (c *Config) Validate() error {
	if c.Emit.Format != FormatJSON && c.Emit.Format != FormatGo {
		return errors.Errorf("unknown output format %q", c.Emit.Format)
	}
	if c.Build.Workers < 0 {
		return errors.Errorf("negative number of workers: %d", c.Build.Workers)
	}
	return nil
}

// BuildOptions converts build section to automaton options.
func (c *Config) BuildOptions() []automaton.Option {
	opts := []automaton.Option{automaton.WithStrict(c.Build.Strict)}
	if c.Build.Workers > 0 {
		opts = append(opts, automaton.WithWorkers(c.Build.Workers))
	}
	return opts
}
