package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vincentyu/portfolio-backend/pkg/backup"
	"github.com/vincentyu/portfolio-backend/pkg/config"
	"github.com/vincentyu/portfolio-backend/pkg/db"
	"github.com/vincentyu/portfolio-backend/pkg/logging"
	"github.com/vincentyu/portfolio-backend/pkg/notify"
	"github.com/vincentyu/portfolio-backend/pkg/server"
	"github.com/vincentyu/portfolio-backend/pkg/server/endpoints"
)

const shutdownTimeout = 10 * time.Second

func defaultPortInt() int {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			return p
		}
	}
	return 8080
}

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the portfolio application server",
	Long: `Run the portfolio application server

The server requires JWT_SECRET, DB_FILE and FRONTEND_ORIGIN.

By default, database migrations are run on startup. Use --no-migrate to skip.

With APP_ENV=production a backup is taken right after startup, then every
day at BACKUP_HOUR, and once more on shutdown.`,
	Run: func(cmd *cobra.Command, args []string) {
		// Validate required settings first (fail fast)
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
			os.Exit(1)
		}
		if err := cfg.Validate(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		if cmd.Flags().Changed("port") {
			cfg.Port, _ = cmd.Flags().GetString("port")
		}
		if cmd.Flags().Changed("bind-address") {
			cfg.BindAddress, _ = cmd.Flags().GetString("bind-address")
		}

		log := logging.Logger()
		logging.Configure(log, cfg.Environment, cfg.LogLevel)

		noMigrate, _ := cmd.Flags().GetBool("no-migrate")
		if !noMigrate {
			log.Info("Running database migrations...")
			version, err := db.Migrate(cfg.DBFile)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Migration failed: %v\n", err)
				os.Exit(1)
			}
			log.WithField("version", version).Info("database schema up to date")
		}

		database, err := db.Connect(db.Config{Path: cfg.DBFile, LogLevel: cfg.LogLevel})
		if err != nil {
			fmt.Println("Unable to connect to DB:", err)
			os.Exit(1)
		}
		defer closeDB(database)
		configureAudit(cfg, database, log)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		notifier := notify.NewEmailNotifier(cfg.Email, log)
		if err := notifier.Verify(ctx); err != nil {
			log.WithError(err).Warn("email notifications unavailable")
		}

		s, err := server.NewServer(cfg, database, log, notifier)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Unable to create server: %v\n", err)
			os.Exit(1)
		}
		endpoints.RegisterAll(s)

		backups, err := newBackupService(ctx, cfg, database, log, s.Registry)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to configure backups: %v\n", err)
			os.Exit(1)
		}

		var scheduler *backup.Scheduler
		var startupDone <-chan struct{}
		if cfg.IsProduction() {
			scheduler = backup.NewScheduler(backups, cfg.BackupHour, log)
			scheduler.Start(ctx)
			startupDone = startupBackup(ctx, backups)
		}

		go func() {
			if err := config.NewWatcher(cfg, log).Watch(ctx, s.SetConfig); err != nil {
				log.WithError(err).Debug("configuration file not watched")
			}
		}()

		serveErr := make(chan error, 1)
		go func() {
			log.Infof("Running server at http://%s...", s.Addr())
			serveErr <- s.Start()
		}()

		select {
		case err := <-serveErr:
			if err != nil {
				log.WithError(err).Error("server stopped")
				os.Exit(1)
			}
		case <-ctx.Done():
		}

		log.Info("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("graceful shutdown failed")
		}
		if scheduler != nil {
			scheduler.Stop()
		}
		if startupDone != nil {
			<-startupDone
		}

		if _, err := backups.CreateBackup(backup.WithTrigger(context.Background(), backup.TriggerShutdown)); err != nil {
			closeDB(database)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().StringP("port", "p", strconv.Itoa(defaultPortInt()), "server listen port")
	serverCmd.Flags().StringP("bind-address", "b", "0.0.0.0", "server bind address")
	serverCmd.Flags().Bool("no-migrate", false, "skip running database migrations on start")
}

// startupBackup snapshots the database in the background. The returned
// channel is closed when the snapshot has finished.
func startupBackup(ctx context.Context, backups *backup.Service) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = backups.CreateBackup(backup.WithTrigger(ctx, backup.TriggerStartup))
	}()
	return done
}
