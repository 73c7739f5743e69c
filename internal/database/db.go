package database

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/iliyamo/recipe-sharing-api/internal/config"
)

// Open connects to the configured database and verifies the connection.
// Both drivers accept the same `?` placeholder queries used by the
// repositories.
func Open(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	dsn, err := DSN(cfg)
	if err != nil {
		return nil, err
	}
	db, err := sqlx.Open(cfg.DBDriver, dsn)
	if err != nil {
		return nil, err
	}

	// Pool settings
	if cfg.DBDriver == "mysql" {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(30 * time.Minute)
	} else {
		db.SetMaxOpenConns(8)
	}

	// Ping with timeout
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.DBDriver, err)
	}
	return db, nil
}

// DSN builds the driver-specific connection string.
func DSN(cfg config.Config) (string, error) {
	switch cfg.DBDriver {
	case "mysql":
		mc := mysql.NewConfig()
		mc.User = cfg.DBUser
		mc.Passwd = cfg.DBPass
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(cfg.DBHost, cfg.DBPort)
		mc.DBName = cfg.DBName
		// parseTime maps DATETIME to time.Time; loc=UTC keeps times consistent
		mc.ParseTime = true
		mc.Loc = time.UTC
		mc.MultiStatements = true
		mc.Params = map[string]string{"charset": "utf8mb4"}
		return mc.FormatDSN(), nil
	case "sqlite3":
		q := url.Values{}
		q.Set("_foreign_keys", "on")
		q.Set("_busy_timeout", "5000")
		q.Set("_journal_mode", "WAL")
		q.Set("_txlock", "immediate")
		return "file:" + cfg.DBPath + "?" + q.Encode(), nil
	default:
		return "", fmt.Errorf("unsupported driver %q", cfg.DBDriver)
	}
}
