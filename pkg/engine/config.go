package engine

import (
	"errors"
	"fmt"
)

// Default history depths.
const (
	DefaultMaxUndos = 50
	DefaultMaxRedos = 50
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("invalid engine configuration")

// Config holds the history bounds of an engine.
type Config struct {
	MaxUndos int `yaml:"max_undos" json:"max_undos"`
	MaxRedos int `yaml:"max_redos" json:"max_redos"`
}

// DefaultConfig returns the default 50/50 history bounds.
func DefaultConfig() Config {
	return Config{
		MaxUndos: DefaultMaxUndos,
		MaxRedos: DefaultMaxRedos,
	}
}

// Validate checks that both depths are positive.
func (c Config) Validate() error {
	if c.MaxUndos <= 0 {
		return fmt.Errorf("%w: max_undos must be positive, got %d", ErrInvalidConfig, c.MaxUndos)
	}
	if c.MaxRedos <= 0 {
		return fmt.Errorf("%w: max_redos must be positive, got %d", ErrInvalidConfig, c.MaxRedos)
	}
	return nil
}

// withDefaults replaces non-positive depths with the defaults.
func (c Config) withDefaults() Config {
	if c.MaxUndos <= 0 {
		c.MaxUndos = DefaultMaxUndos
	}
	if c.MaxRedos <= 0 {
		c.MaxRedos = DefaultMaxRedos
	}
	return c
}
