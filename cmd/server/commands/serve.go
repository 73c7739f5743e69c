package commands

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/iliyamo/recipe-sharing-api/internal/config"
	"github.com/iliyamo/recipe-sharing-api/internal/database"
	"github.com/iliyamo/recipe-sharing-api/internal/router"
	"github.com/iliyamo/recipe-sharing-api/internal/service"
)

var autoMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().BoolVar(&autoMigrate, "migrate", true, "Apply pending migrations before serving")
}

func runServe(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if autoMigrate {
		if err := database.MigrateUp(db); err != nil {
			return err
		}
		log.Info().Msg("migrations applied")
	}

	rl, err := config.LoadRateLimitConfig()
	if err != nil {
		return err
	}
	cc, err := config.LoadCacheConfig()
	if err != nil {
		return err
	}
	redisCfg, err := config.LoadRedisConfig()
	if err != nil {
		return err
	}
	rdb := config.NewRedisClient(ctx, redisCfg)
	if rdb == nil {
		log.Warn().Msg("redis unavailable; rate limiting and response cache disabled")
	} else {
		defer func() { _ = rdb.Close() }()
	}

	pub := service.NewPublisher(cfg.RabbitMQURL, cfg.EventsQueue, log)
	if cfg.RabbitMQURL == "" {
		log.Info().Msg("RABBITMQ_URL not set; activity events disabled")
	}

	e, err := router.New(router.Deps{
		Config:    cfg,
		RateLimit: rl,
		Cache:     cc,
		DB:        db,
		Redis:     rdb,
		Publisher: pub,
		Log:       log,
	})
	if err != nil {
		return err
	}

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Str("env", cfg.Env).Str("db", cfg.DBDriver).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
