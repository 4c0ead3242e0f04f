package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"mycal/internal/ics"
	appLog "mycal/internal/log"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export-ics",
	Short: "Write every event as an iCalendar file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		sess, err := openSession()
		if err != nil {
			return err
		}
		defer sess.Close()

		w := cmd.OutOrStdout()
		if exportOut != "" && exportOut != "-" {
			f, err := os.OpenFile(exportOut, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
			if err != nil {
				return fmt.Errorf("create %s: %w", exportOut, err)
			}
			defer f.Close()
			w = f
		}
		if err := ics.Export(w, sess.Events(), now()); err != nil {
			return err
		}
		appLog.Info("exported events", "count", sess.Len(), "out", exportOut)
		return nil
	},
}

var importDays int

var importCmd = &cobra.Command{
	Use:   "import-ics [FILE]",
	Short: "Import events from an .ics file or from the configured subscriptions",
	Long: `Import events from FILE, or from every ics source in the configuration
when FILE is omitted. Recurring events are expanded from today up to the
import horizon. Events already in the calendar are skipped.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		days := app.cfg.ImportHorizonDays
		if cmd.Flags().Changed("days") {
			days = importDays
		}
		if days <= 0 {
			return errors.New("--days must be positive")
		}
		cfg := importWindow(now(), days)

		var res ics.ExpandResult
		if len(args) == 1 {
			var err error
			if res, err = ics.ImportFile(args[0], cfg); err != nil {
				return err
			}
		} else {
			if len(app.cfg.ICS) == 0 {
				return errors.New("no FILE given and no ics sources configured")
			}
			sources := make([]ics.Source, 0, len(app.cfg.ICS))
			for _, c := range app.cfg.ICS {
				sources = append(sources, ics.Source{ID: c.ID, URL: c.URL})
			}
			var errs []error
			res, errs = ics.Import(cmd.Context(), ics.NewFetcher(""), sources, cfg)
			for _, err := range errs {
				appLog.Error("ics source failed", err)
			}
			if len(errs) > 0 && len(res.Events) == 0 {
				return errors.Join(errs...)
			}
		}

		sess, err := openSession()
		if err != nil {
			return err
		}
		defer sess.Close()

		added, err := sess.AddAll(res.Events)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d new of %d events (%d not convertible, %d rules truncated)\n",
			added, len(res.Events), res.Skipped, len(res.Truncated))
		return nil
	},
}

// importWindow expands from the start of today for the given number of days.
func importWindow(base time.Time, days int) ics.ExpandConfig {
	start := time.Date(base.Year(), base.Month(), base.Day(), 0, 0, 0, 0, base.Location())
	return ics.ExpandConfig{
		Location:   base.Location(),
		RangeStart: start,
		RangeEnd:   start.AddDate(0, 0, days),
	}
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default stdout)")
	importCmd.Flags().IntVar(&importDays, "days", 0, "expansion horizon in days (default import_horizon_days)")
	rootCmd.AddCommand(exportCmd, importCmd)
}
