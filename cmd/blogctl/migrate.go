package main

import (
	"database/sql"
	"fmt"

	"finsight/migrations"
	"finsight/pkg/database"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
)

var migrateDir string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage database schema migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrationDB(func(db *sql.DB) error {
			if err := goose.Up(db, "."); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
			log.Info("Migrations applied successfully")
			return nil
		})
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the most recent migration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrationDB(func(db *sql.DB) error {
			if err := goose.Down(db, "."); err != nil {
				return fmt.Errorf("failed to rollback migrations: %w", err)
			}
			log.Info("Migrations rolled back successfully")
			return nil
		})
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the status of every migration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrationDB(func(db *sql.DB) error {
			return goose.Status(db, ".")
		})
	},
}

var migrateCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create a new SQL migration file on disk",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		goose.SetBaseFS(nil)
		if err := goose.Create(nil, migrateDir, args[0], "sql"); err != nil {
			return fmt.Errorf("failed to create migration: %w", err)
		}
		log.Info("Created migration %s in %s", args[0], migrateDir)
		return nil
	},
}

func init() {
	migrateCreateCmd.Flags().StringVar(&migrateDir, "dir", "migrations", "directory to write the new migration to")
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateStatusCmd, migrateCreateCmd)
}

// withMigrationDB opens a plain database/sql handle over lib/pq and points
// goose at the embedded migration files.
func withMigrationDB(fn func(db *sql.DB) error) error {
	db, err := sql.Open("postgres", database.DSN(cfg))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	return fn(db)
}
