package config // package config loads application configuration from environment variables

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// MinSecretBytes is the shortest JWT signing key accepted at startup.
const MinSecretBytes = 32

// MinPBKDF2Iterations is the lowest iteration count the password hasher accepts.
const MinPBKDF2Iterations = 10000

// Config holds all runtime configuration values.  It is built once at
// process start and handed to constructors by value; nothing reads the
// environment after Load returns.
type Config struct {
	Env  string `env:"APP_ENV" envDefault:"dev"`   // application environment (e.g. "dev", "prod")
	Port string `env:"APP_PORT" envDefault:"8080"` // HTTP port to listen on

	DBDriver string `env:"DB_DRIVER" envDefault:"mysql"` // mysql or sqlite3
	DBUser   string `env:"DB_USER"`
	DBPass   string `env:"DB_PASS"` // empty allowed
	DBHost   string `env:"DB_HOST" envDefault:"127.0.0.1"`
	DBPort   string `env:"DB_PORT" envDefault:"3306"`
	DBName   string `env:"DB_NAME" envDefault:"recipes"`
	DBPath   string `env:"DB_PATH" envDefault:"recipes.db"` // sqlite3 file

	JWTSecret   string        `env:"JWT_SECRET,required"`
	JWTIssuer   string        `env:"JWT_ISSUER" envDefault:"recipe-api"`
	JWTAudience string        `env:"JWT_AUDIENCE" envDefault:"recipe-web"`
	TokenTTL    time.Duration `env:"TOKEN_TTL" envDefault:"168h"`
	ClockSkew   time.Duration `env:"TOKEN_CLOCK_SKEW" envDefault:"0s"`

	PBKDF2Iterations int `env:"PBKDF2_ITERATIONS" envDefault:"10000"`

	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173,http://localhost:5174"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	RabbitMQURL string `env:"RABBITMQ_URL"` // empty disables event publishing
	EventsQueue string `env:"EVENTS_QUEUE" envDefault:"recipe.events"`
}

// Load reads an optional .env file and then the process environment.
// Missing or unusable security settings are returned as errors; callers
// are expected to stop the process rather than run half-configured.
func Load() (Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return Config{}, fmt.Errorf("load .env: %w", err)
		}
	}
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the values that env tags cannot express.
func (c Config) Validate() error {
	if len(c.JWTSecret) < MinSecretBytes {
		return fmt.Errorf("JWT_SECRET must be at least %d bytes", MinSecretBytes)
	}
	if strings.TrimSpace(c.JWTIssuer) == "" || strings.TrimSpace(c.JWTAudience) == "" {
		return errors.New("JWT_ISSUER and JWT_AUDIENCE must not be empty")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive (got %s)", c.TokenTTL)
	}
	if c.ClockSkew < 0 {
		return fmt.Errorf("TOKEN_CLOCK_SKEW must not be negative (got %s)", c.ClockSkew)
	}
	if c.PBKDF2Iterations < MinPBKDF2Iterations {
		return fmt.Errorf("PBKDF2_ITERATIONS must be >= %d (got %d)", MinPBKDF2Iterations, c.PBKDF2Iterations)
	}
	switch c.DBDriver {
	case "mysql":
		if c.DBUser == "" {
			return errors.New("DB_USER is required for the mysql driver")
		}
	case "sqlite3":
		if c.DBPath == "" {
			return errors.New("DB_PATH is required for the sqlite3 driver")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (use mysql or sqlite3)", c.DBDriver)
	}
	return nil
}
