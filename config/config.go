// Package config provides configuration for the scoring core: the action
// threshold ladder, score growth settings and the symbol registry handle.
package config

import (
	"math"

	"go.uber.org/zap"

	"github.com/rspamd/rspamd-filter-go/symbols"
)

// Default values mirror the stock scanner configuration
const (
	DefaultGrowFactor = 1.0
	DefaultMaxShots   = 100
)

// Config represents scoring configuration shared by tasks
type Config struct {
	// Actions holds the score threshold per action, NaN disables an action
	Actions [NActions]float64
	// GrowFactor amplifies successive positive contributions within a message
	GrowFactor float64
	// DefaultMaxShots caps counted hits and distinct options per symbol
	DefaultMaxShots int
	// Symbols is the static symbol registry, may be nil
	Symbols *symbols.Registry
	// Cache is the symbol frequency cache, may be nil
	Cache *symbols.Cache
	// Logger receives core diagnostics, a no-op logger when unset
	Logger *zap.Logger
}

// NewConfig creates a new Config with default values: every action
// disabled, neutral grow factor and an empty symbol registry.
func NewConfig() *Config {
	cfg := &Config{
		GrowFactor:      DefaultGrowFactor,
		DefaultMaxShots: DefaultMaxShots,
		Symbols:         symbols.NewRegistry(),
		Logger:          zap.NewNop(),
	}
	for i := range cfg.Actions {
		cfg.Actions[i] = math.NaN()
	}
	return cfg
}

// WithAction sets the score threshold for an action
func (c *Config) WithAction(action Action, score float64) *Config {
	c.Actions[action] = score
	return c
}

// WithGrowFactor sets the positive contribution growth factor
func (c *Config) WithGrowFactor(gf float64) *Config {
	c.GrowFactor = gf
	return c
}

// WithMaxShots sets the default per-symbol hit and option cap
func (c *Config) WithMaxShots(n int) *Config {
	c.DefaultMaxShots = n
	return c
}

// WithSymbols sets the symbol registry
func (c *Config) WithSymbols(reg *symbols.Registry) *Config {
	c.Symbols = reg
	return c
}

// WithCache sets the symbol frequency cache
func (c *Config) WithCache(cache *symbols.Cache) *Config {
	c.Cache = cache
	return c
}

// WithLogger sets the diagnostics logger
func (c *Config) WithLogger(logger *zap.Logger) *Config {
	c.Logger = logger
	return c
}

// ActionThreshold returns the configured threshold for an action
func (c *Config) ActionThreshold(action Action) float64 {
	return c.Actions[action]
}
