package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
)

// CacheConfig controls the Redis response cache in front of public reads.
// Entries are keyed by a write generation stored under GenKey, so a bump
// of that counter hides every earlier entry without scanning for them.
type CacheConfig struct {
	Enabled      bool          `env:"CACHE_ENABLED" envDefault:"true"`
	MethodList   []string      `env:"CACHE_METHODS" envSeparator:"," envDefault:"GET"`
	TTL          time.Duration `env:"CACHE_TTL" envDefault:"30s"`
	KeyStrategy  string        `env:"CACHE_KEY_STRATEGY" envDefault:"route_query"`
	Prefix       string        `env:"CACHE_PREFIX" envDefault:"cache"`
	GenKey       string        `env:"CACHE_GEN_KEY"` // defaults to Prefix + ":gen"
	MaxBodyBytes int           `env:"CACHE_MAX_BODY_BYTES" envDefault:"1048576"`

	// Methods is MethodList upper-cased, for lookup.
	Methods map[string]bool `env:"-"`
}

// LoadCacheConfig reads the CACHE_* variables.
func LoadCacheConfig() (CacheConfig, error) {
	var c CacheConfig
	if err := env.Parse(&c); err != nil {
		return CacheConfig{}, fmt.Errorf("parse cache env: %w", err)
	}
	c.Methods = make(map[string]bool, len(c.MethodList))
	for _, m := range c.MethodList {
		if m = strings.ToUpper(strings.TrimSpace(m)); m != "" {
			c.Methods[m] = true
		}
	}
	if c.GenKey == "" {
		c.GenKey = c.Prefix + ":gen"
	}
	if c.TTL <= 0 {
		c.TTL = time.Second
	}
	return c, nil
}
