// Package config loads cminus settings from a TOML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/BurntSushi/toml"
)

// ErrInvalid is returned by Validate for settings out of range
var ErrInvalid = errors.New("invalid configuration")

// Formats lists the accepted Output.Format values. An empty format means
// nothing is dumped.
var Formats = []string{"", "tokens", "source", "yaml"}

// Config holds the complete cminus configuration
type Config struct {
	Lexer  LexerConfig  `toml:"lexer"`
	Parser ParserConfig `toml:"parser"`
	Output OutputConfig `toml:"output"`
}

// LexerConfig holds tokenizer settings
type LexerConfig struct {
	LineComments        bool `toml:"line_comments"`
	UnterminatedComment bool `toml:"unterminated_comment_error"`
}

// ParserConfig holds parser settings
type ParserConfig struct {
	Fold bool `toml:"fold"`
}

// OutputConfig holds CLI output settings
type OutputConfig struct {
	Format string `toml:"format"`
	Color  bool   `toml:"color"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Lexer:  LexerConfig{LineComments: true, UnterminatedComment: true},
		Parser: ParserConfig{Fold: true},
	}
}

// Load reads a TOML file over the defaults. Keys missing from the file
// keep their default value.
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	cfg := Default()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%w: unknown key %s", ErrInvalid, undecoded[0])
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that every setting has an accepted value
func (c *Config) Validate() error {
	if !slices.Contains(Formats, c.Output.Format) {
		return fmt.Errorf("%w: output.format %q (want tokens, source or yaml)", ErrInvalid, c.Output.Format)
	}
	return nil
}
