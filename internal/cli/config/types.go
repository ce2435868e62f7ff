// Package config loads seedmap CLI configuration.
//
// Values are layered with koanf: built-in defaults, then seedmap.yaml, then
// SEEDMAP_* environment variables, then flags set on the command line.
package config

import (
	"fmt"

	"github.com/leapstack-labs/seedmap/internal/almanac"
	"github.com/leapstack-labs/seedmap/internal/cli/output"
)

// Config holds all CLI configuration options.
type Config struct {
	StatePath string       `koanf:"state_path" yaml:"state_path"`
	Mode      almanac.Mode `koanf:"mode" yaml:"mode"`
	Workers   int          `koanf:"workers" yaml:"workers"`
	Record    bool         `koanf:"record" yaml:"record"`
	Reuse     bool         `koanf:"reuse" yaml:"reuse"`
	Verbose   bool         `koanf:"verbose" yaml:"verbose,omitempty"`
	Output    string       `koanf:"output" yaml:"output"`
	LogLevel  string       `koanf:"log_level" yaml:"log_level"`

	// ProjectRoot is the directory relative paths are resolved against.
	ProjectRoot string `koanf:"-" yaml:"-"`
}

// Default configuration values.
const (
	DefaultStateFile = ".seedmap/state.db"
	DefaultMode      = almanac.ModeRanges
	DefaultWorkers   = 1
	DefaultOutput    = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultLogLevel  = "warn"
)

// ConfigFileNames are searched in this order.
var ConfigFileNames = []string{"seedmap.yaml", "seedmap.yml"}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		StatePath: DefaultStateFile,
		Mode:      DefaultMode,
		Workers:   DefaultWorkers,
		Record:    true,
		Output:    DefaultOutput,
		LogLevel:  DefaultLogLevel,
	}
}

// Validate checks values the loader cannot type-check.
func (c *Config) Validate() error {
	if _, err := almanac.ParseMode(c.Mode.String()); err != nil {
		return err
	}
	if _, err := output.ParseMode(c.Output); err != nil {
		return err
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Workers < -1 {
		return fmt.Errorf("workers must be -1 (all cores) or more, got %d", c.Workers)
	}
	return nil
}
