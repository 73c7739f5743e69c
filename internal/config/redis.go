package config

// Redis backs the auth rate limiter and the public response cache.  Both are
// optional: when the server cannot be reached NewRedisClient returns nil and
// the middleware degrades to pass-through.

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/redis/go-redis/v9"
)

// RedisConfig carries the connection settings for Redis.  REDIS_HOST and
// REDIS_PORT, when both set, take precedence over REDIS_ADDR.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Host     string `env:"REDIS_HOST"`
	Port     string `env:"REDIS_PORT"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	TLS      bool   `env:"REDIS_TLS" envDefault:"false"`
}

func LoadRedisConfig() (RedisConfig, error) {
	var rc RedisConfig
	if err := env.Parse(&rc); err != nil {
		return RedisConfig{}, fmt.Errorf("parse redis env: %w", err)
	}
	if rc.Host != "" && rc.Port != "" {
		rc.Addr = net.JoinHostPort(rc.Host, rc.Port)
	}
	return rc, nil
}

// NewRedisClient connects and pings with a short timeout.  It returns nil
// when the server is unreachable.
func NewRedisClient(ctx context.Context, rc RedisConfig) *redis.Client {
	var tlsConf *tls.Config
	if rc.TLS {
		tlsConf = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(&redis.Options{
		Addr:      rc.Addr,
		Password:  rc.Password,
		DB:        rc.DB,
		TLSConfig: tlsConf,
	})
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil
	}
	return client
}
