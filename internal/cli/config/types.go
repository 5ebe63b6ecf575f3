// Package config provides configuration management for the reshape CLI.
//
// Settings come from (lowest to highest precedence) built-in defaults,
// a reshape.yaml file, RESHAPE_-prefixed environment variables, and
// command-line flags.
package config

import (
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/reshape-labs/reshape/pkg/rules"
)

// Config holds all CLI configuration options.
type Config struct {
	RulesPath    string `koanf:"rules"`
	Encoding     string `koanf:"encoding"`
	Delimiter    string `koanf:"delimiter"`
	Verbose      bool   `koanf:"verbose"`
	OutputFormat string `koanf:"format"`
}

// Default configuration values.
const (
	DefaultEncoding  = "utf-8"
	DefaultDelimiter = ","
	DefaultFormat    = "auto" // Auto-detect: TTY=styled text, non-TTY=plain
)

// Comma returns the CSV field delimiter as a rune.
func (c *Config) Comma() (rune, error) {
	if c.Delimiter == "" {
		return ',', nil
	}
	r, size := utf8.DecodeRuneInString(c.Delimiter)
	if size != len(c.Delimiter) || r == utf8.RuneError {
		return 0, fmt.Errorf("delimiter must be a single character, got %q", c.Delimiter)
	}
	return r, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, err := c.Comma(); err != nil {
		return err
	}
	if c.Encoding != "" {
		if _, ok := rules.NormalizeEncoding(c.Encoding); !ok {
			return fmt.Errorf("unsupported encoding %q", c.Encoding)
		}
	}
	return nil
}

// ValidateRulesPath checks that the configured rule file exists.
// This runs only for commands that need rules, so help and version
// work without one.
func (c *Config) ValidateRulesPath() error {
	if c.RulesPath == "" {
		return nil
	}
	if _, err := os.Stat(c.RulesPath); os.IsNotExist(err) {
		return fmt.Errorf("rule file does not exist: %s\nHint: Create the file or use --rules to specify a different path", c.RulesPath)
	}
	return nil
}
