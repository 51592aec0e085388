package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vincentyu/portfolio-backend/pkg/config"
	"github.com/vincentyu/portfolio-backend/pkg/db"
)

// dbMigrateCmd represents the db migrate command
var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create and/or upgrade the database schema",
	Long: `Create and/or upgrade the database schema.

This command runs all pending migrations against DB_FILE. The migrations
are embedded in the binary.

Example:
  portfolioctl db migrate`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runMigrations(); err != nil {
			fmt.Println("Migration failed:", err)
			os.Exit(1)
		}
	},
}

var dbMigrateDownCmd = &cobra.Command{
	Use:   "down [steps]",
	Short: "Rollback database migrations",
	Long: `Rollback database migrations.

This command rolls back the specified number of migrations (default: 1).

Example:
  portfolioctl db down      # Rollback 1 migration
  portfolioctl db down 2    # Rollback 2 migrations`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		steps := 1
		if len(args) > 0 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 1 {
				fmt.Fprintf(os.Stderr, "invalid number of steps: %q\n", args[0])
				os.Exit(1)
			}
			steps = n
		}

		if err := runMigrationsDown(steps); err != nil {
			fmt.Println("Rollback failed:", err)
			os.Exit(1)
		}
	},
}

var dbMigrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show current migration version",
	Long:  `Show the current database migration version.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := showMigrationStatus(); err != nil {
			fmt.Println("Failed to get status:", err)
			os.Exit(1)
		}
	},
}

func init() {
	dbCmd.AddCommand(dbMigrateCmd)
	dbCmd.AddCommand(dbMigrateDownCmd)
	dbCmd.AddCommand(dbMigrateStatusCmd)
}

func databaseFile() (string, error) {
	cfg, err := config.Load()
	if err != nil {
		return "", fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.DBFile == "" {
		return "", fmt.Errorf("DB_FILE environment variable is required")
	}
	return cfg.DBFile, nil
}

func runMigrations() error {
	path, err := databaseFile()
	if err != nil {
		return err
	}

	version, err := db.Migrate(path)
	if err != nil {
		return err
	}
	fmt.Printf("Database at version %d\n", version)
	fmt.Println("Migrations complete")
	return nil
}

func runMigrationsDown(steps int) error {
	path, err := databaseFile()
	if err != nil {
		return err
	}

	fmt.Printf("Rolling back %d migration(s)...\n", steps)
	version, err := db.MigrateDown(path, steps)
	if err != nil {
		return err
	}
	fmt.Printf("Rolled back to version: %d\n", version)
	return nil
}

func showMigrationStatus() error {
	path, err := databaseFile()
	if err != nil {
		return err
	}

	version, dirty, applied, err := db.MigrationStatus(path)
	if err != nil {
		return err
	}
	if !applied {
		fmt.Println("No migrations have been applied yet")
		return nil
	}

	fmt.Printf("Current version: %d\n", version)
	if dirty {
		fmt.Println("Warning: Database is in a dirty state")
	}
	return nil
}
