package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
)

// RateLimitConfig drives the token bucket placed in front of the /auth
// endpoints.  Login and registration are the only routes that run the
// password KDF for anonymous callers, so they get the tightest budget.
type RateLimitConfig struct {
	Enabled        bool          `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	Capacity       int           `env:"RATE_LIMIT_CAPACITY" envDefault:"10"`
	RefillTokens   int           `env:"RATE_LIMIT_REFILL_TOKENS" envDefault:"1"`
	RefillInterval time.Duration `env:"RATE_LIMIT_REFILL_INTERVAL" envDefault:"6s"`
	TTL            time.Duration `env:"RATE_LIMIT_TTL" envDefault:"10m"`
	KeyStrategy    string        `env:"RATE_LIMIT_KEY_STRATEGY" envDefault:"ip_route"`
	Prefix         string        `env:"RATE_LIMIT_PREFIX" envDefault:"rl"`
	Debug          bool          `env:"RATE_LIMIT_DEBUG" envDefault:"false"`
}

// LoadRateLimitConfig reads the RATE_LIMIT_* variables and clamps them.
func LoadRateLimitConfig() (RateLimitConfig, error) {
	var c RateLimitConfig
	if err := env.Parse(&c); err != nil {
		return RateLimitConfig{}, fmt.Errorf("parse rate limit env: %w", err)
	}
	return c.normalize(), nil
}

// normalize clamps values into a usable range.  The key must outlive a
// few refills or an idle bucket would reset to full early.
func (c RateLimitConfig) normalize() RateLimitConfig {
	if c.Capacity < 1 {
		c.Capacity = 1
	}
	if c.RefillTokens < 1 {
		c.RefillTokens = 1
	}
	if c.RefillInterval <= 0 {
		c.RefillInterval = time.Second
	}
	if minTTL := 5 * c.RefillInterval; c.TTL < minTTL {
		c.TTL = minTTL
	}
	return c
}
