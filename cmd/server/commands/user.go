package commands

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/iliyamo/recipe-sharing-api/internal/repository"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Administer accounts",
}

var userActivateCmd = &cobra.Command{
	Use:   "activate <username|email>",
	Short: "Allow an account to log in again",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setActive(cmd, args[0], true)
	},
}

var userDeactivateCmd = &cobra.Command{
	Use:   "deactivate <username|email>",
	Short: "Block logins for an account; issued tokens stay valid until they expire",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setActive(cmd, args[0], false)
	},
}

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userActivateCmd, userDeactivateCmd)
}

func setActive(cmd *cobra.Command, login string, active bool) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()

	db, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if err := repository.NewUserRepo(db).SetActive(ctx, login, active); err != nil {
		return err
	}
	log.Info().Str("login", repository.NormalizeLogin(login)).Bool("active", active).Msg("user updated")
	return nil
}
