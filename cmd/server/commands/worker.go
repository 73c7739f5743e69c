package commands

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/iliyamo/recipe-sharing-api/internal/queue"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consume activity events and log them",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.RabbitMQURL == "" {
			return errors.New("RABBITMQ_URL is required for the worker")
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		c := &queue.Consumer{
			URL:   cfg.RabbitMQURL,
			Queue: cfg.EventsQueue,
			Log:   log.With().Str("component", "worker").Logger(),
		}
		log.Info().Str("queue", cfg.EventsQueue).Msg("worker started")
		if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		log.Info().Msg("worker stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
