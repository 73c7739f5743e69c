// Package commands implements the server CLI: serve (the default), migrate,
// worker and user administration.
package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/iliyamo/recipe-sharing-api/internal/config"
	"github.com/iliyamo/recipe-sharing-api/internal/database"
	"github.com/iliyamo/recipe-sharing-api/internal/logger"
)

const serviceName = "recipe-api"

var (
	cfg config.Config
	log zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "server",
	Short: "Recipe sharing API",
	Long: `Recipe sharing API server.

Configuration comes from the environment (and an optional .env file).
JWT_SECRET is required and must be at least 32 bytes.

Examples:
  server                      # same as "server serve"
  server migrate up           # apply schema migrations
  server worker               # log activity events from RabbitMQ
  server user deactivate bob  # block logins for an account`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		log = logger.New(cfg.LogLevel, cfg.LogFormat, serviceName)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolVar(&autoMigrate, "migrate", true, "Apply pending migrations before serving")
}

func openDB(ctx context.Context) (*sqlx.DB, error) {
	db, err := database.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}
