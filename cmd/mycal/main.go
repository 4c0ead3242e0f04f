// Package main implements the mycal CLI.
package main

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"mycal/internal/config"
	appLog "mycal/internal/log"
	"mycal/internal/storage"
)

const version = "0.1.0"

// now is the wall clock; replaced in tests.
var now = time.Now

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var (
	flagConfig   string
	flagFile     string
	flagLogLevel string
)

// app holds what PersistentPreRunE resolved for the running command.
var app struct {
	cfg          *config.Config
	configPath   string
	calendarPath string
}

var rootCmd = &cobra.Command{
	Use:           "mycal",
	Short:         "A personal calendar kept in a plain text file",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,

	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			appLog.Warn("failed to read .env", "err", err)
		}

		path, err := resolveConfigPath()
		if err != nil {
			return err
		}
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}

		level := cfg.LogLevel
		if flagLogLevel != "" {
			level = flagLogLevel
		}
		appLog.SetLevel(appLog.ParseLevel(level))

		calPath, err := resolveCalendarPath(cfg)
		if err != nil {
			return err
		}

		app.cfg = cfg
		app.configPath = path
		app.calendarPath = calPath
		appLog.Debug("configuration resolved", "config", path, "calendar", calPath, "command", cmd.Name())
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default $MYCAL_CONFIG or the user config dir)")
	rootCmd.PersistentFlags().StringVar(&flagFile, "file", "", "calendar file (default $MYCAL_FILE, calendar_path, or ~/Documents/MyCalendar/calendar.mycal)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "debug, info, warn or error (overrides log_level)")
}

// resolveConfigPath picks --config, then $MYCAL_CONFIG, then the default.
func resolveConfigPath() (string, error) {
	if flagConfig != "" {
		return flagConfig, nil
	}
	if v := os.Getenv("MYCAL_CONFIG"); v != "" {
		return v, nil
	}
	return config.DefaultPath()
}

// resolveCalendarPath picks --file, then $MYCAL_FILE, then calendar_path,
// then the default location.
func resolveCalendarPath(cfg *config.Config) (string, error) {
	switch {
	case flagFile != "":
		return flagFile, nil
	case os.Getenv("MYCAL_FILE") != "":
		return os.Getenv("MYCAL_FILE"), nil
	case cfg.CalendarPath != "":
		return cfg.CalendarPath, nil
	default:
		return storage.DefaultPath()
	}
}

// openSession opens the resolved calendar file.
func openSession() (*storage.Session, error) {
	return storage.Open(app.calendarPath)
}
