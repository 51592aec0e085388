package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/vincentyu/portfolio-backend/pkg/audit"
	"github.com/vincentyu/portfolio-backend/pkg/backup"
	"github.com/vincentyu/portfolio-backend/pkg/config"
	"github.com/vincentyu/portfolio-backend/pkg/db"
	"github.com/vincentyu/portfolio-backend/pkg/logging"
)

// backupCmd represents the backup command
var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Manage database backups",
	Long:  `Create snapshots and SQL exports of the database and list existing ones.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'backup' requires a subcommand (create, export, list)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

var backupCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Copy the database file into the backup directory",
	Long: `Copy the database file into BACKUP_DIR as app-<timestamp>.db.

The oldest snapshots beyond BACKUP_RETENTION are removed. When
BACKUP_S3_BUCKET is set the snapshot is also uploaded.

Example:
  portfolioctl backup create`,
	Run: func(cmd *cobra.Command, args []string) {
		runBackup(func(ctx context.Context, svc *backup.Service) (string, error) {
			return svc.CreateBackup(ctx)
		})
	},
}

var backupExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the database content as SQL statements",
	Long: `Write the content of the database as DELETE and INSERT statements to
BACKUP_DIR as export-<timestamp>.sql.

Example:
  portfolioctl backup export`,
	Run: func(cmd *cobra.Command, args []string) {
		runBackup(func(ctx context.Context, svc *backup.Service) (string, error) {
			return svc.ExportToSQL(ctx)
		})
	},
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List snapshots and exports, newest first",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
			os.Exit(1)
		}

		svc := backup.NewService(backup.Options{Dir: cfg.BackupDir, Retention: cfg.BackupRetention})
		artifacts, err := svc.List()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to list backups: %v\n", err)
			os.Exit(1)
		}
		if len(artifacts) == 0 {
			fmt.Printf("No backups in %s\n", svc.Dir())
			return
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tSIZE\tCREATED")
		for _, a := range artifacts {
			fmt.Fprintf(tw, "%s\t%d\t%s\n", a.Name, a.Size, a.ModTime.Format(time.RFC3339))
		}
		_ = tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(backupCmd)
	backupCmd.AddCommand(backupCreateCmd)
	backupCmd.AddCommand(backupExportCmd)
	backupCmd.AddCommand(backupListCmd)
}

// newBackupService builds the backup service for cfg. The WAL is
// checkpointed through database before every snapshot. reg may be nil.
func newBackupService(ctx context.Context, cfg *config.Config, database *gorm.DB, log logrus.FieldLogger, reg prometheus.Registerer) (*backup.Service, error) {
	opts := backup.Options{
		DBFile:    cfg.DBFile,
		Dir:       cfg.BackupDir,
		Retention: cfg.BackupRetention,
		Checkpoint: func() error {
			return db.Checkpoint(database)
		},
		Log: log,
	}
	if reg != nil {
		opts.Metrics = backup.NewMetrics(reg)
	}
	if cfg.S3.Enabled() {
		uploader, err := backup.NewS3Uploader(ctx, cfg.S3)
		if err != nil {
			return nil, err
		}
		opts.Uploader = uploader
	}
	return backup.NewService(opts), nil
}

func runBackup(run func(ctx context.Context, svc *backup.Service) (string, error)) {
	path, err := withBackupService(run)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Backup failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(path)
}

func withBackupService(run func(ctx context.Context, svc *backup.Service) (string, error)) (string, error) {
	cfg, err := config.Load()
	if err != nil {
		return "", fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.DBFile == "" {
		return "", fmt.Errorf("DB_FILE environment variable is required")
	}

	log := logging.Logger()
	logging.Configure(log, cfg.Environment, cfg.LogLevel)

	database, err := db.Connect(db.Config{Path: cfg.DBFile, LogLevel: cfg.LogLevel})
	if err != nil {
		return "", err
	}
	defer closeDB(database)
	configureAudit(cfg, database, log)

	ctx := backup.WithTrigger(context.Background(), backup.TriggerManual)
	svc, err := newBackupService(ctx, cfg, database, log, nil)
	if err != nil {
		return "", fmt.Errorf("failed to configure backups: %w", err)
	}
	return run(ctx, svc)
}

// configureAudit persists audit events in the application database.
func configureAudit(cfg *config.Config, database *gorm.DB, log logrus.FieldLogger) {
	var store *audit.Store
	if sqlDB, err := database.DB(); err == nil {
		store = audit.NewStoreWithDB(sqlDB)
	}
	audit.Configure(cfg.AuditEnabled, store, log)
}

func closeDB(database *gorm.DB) {
	if sqlDB, err := database.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
