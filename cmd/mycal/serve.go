package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"mycal/internal/backup"
	appLog "mycal/internal/log"
	"mycal/internal/web"
)

var (
	serveListen   string
	serveNoBackup bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the calendar over HTTP and run scheduled backups",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := app.cfg
		if serveListen != "" {
			cfg.Listen = serveListen
		}

		sess, err := openSession()
		if err != nil {
			return err
		}
		defer func() {
			if err := sess.Close(); err != nil {
				appLog.Error("failed to flush calendar", err, "path", sess.Path())
			}
		}()

		appLog.Info("effective config",
			"config", app.configPath,
			"calendar", sess.Path(),
			"events", sess.Len(),
			"listen", cfg.Listen,
			"basic_auth", cfg.BasicAuth != nil,
			"backup_cron", cfg.Backup.Cron,
			"ics_count", len(cfg.ICS),
		)

		ctx, cancel := signalContext(cmd.Context())
		defer cancel()

		if !serveNoBackup && cfg.Backup.Cron != "" {
			b := backup.New(sess, cfg.BackupDir(sess.Path()), cfg.Backup.Keep)
			if _, err := backup.Schedule(ctx, cfg.Backup.Cron, b); err != nil {
				return err
			}
		}

		err = web.NewServer(cfg, sess).ListenAndServe(ctx)
		appLog.Info("mycal exiting")
		return err
	},
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigCh:
			appLog.Info("signal received, shutting down", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "HTTP listen address (overrides listen)")
	serveCmd.Flags().BoolVar(&serveNoBackup, "no-backup", false, "do not run scheduled backups")
	rootCmd.AddCommand(serveCmd)
}
