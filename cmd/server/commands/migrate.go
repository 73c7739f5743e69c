package commands

import (
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/iliyamo/recipe-sharing-api/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB(cmd.Context())
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()
		if err := database.MigrateUp(db); err != nil {
			return err
		}
		return printVersion(cmd, db)
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back every migration (drops all tables)",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB(cmd.Context())
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()
		if err := database.MigrateDown(db); err != nil {
			return err
		}
		return printVersion(cmd, db)
	},
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB(cmd.Context())
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()
		return printVersion(cmd, db)
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateVersionCmd)
}

func printVersion(cmd *cobra.Command, db *sqlx.DB) error {
	v, dirty, err := database.Version(db)
	if err != nil {
		return err
	}
	cmd.Printf("schema version %d (dirty=%t)\n", v, dirty)
	return nil
}
