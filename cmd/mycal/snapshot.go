package main

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/spf13/cobra"

	"mycal/internal/capture"
	"mycal/internal/datetime"
	appLog "mycal/internal/log"
	"mycal/internal/web"
)

var (
	snapshotOut  string
	snapshotDate string
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Render a week to PNG with headless Chromium",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if snapshotOut == "" {
			return errors.New("--out is required")
		}
		if snapshotDate != "" {
			if _, err := datetime.ParseISO(snapshotDate); err != nil {
				return err
			}
		}

		sess, err := openSession()
		if err != nil {
			return err
		}
		defer sess.Close()

		// Serve on a private loopback port without the configured credentials.
		cfg := *app.cfg
		cfg.BasicAuth = nil
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("listen for snapshot: %w", err)
		}

		ctx, cancel := signalContext(cmd.Context())
		defer cancel()

		srvDone := make(chan error, 1)
		go func() { srvDone <- web.NewServer(&cfg, sess).Serve(ctx, ln) }()

		err = capture.WeekPNG(ctx, capture.Options{
			URL:        snapshotURL(ln.Addr().String(), snapshotDate),
			OutputPath: snapshotOut,
			Width:      cfg.Snapshot.Width,
			Height:     cfg.Snapshot.Height,
			Timeout:    time.Duration(cfg.Snapshot.TimeoutSeconds) * time.Second,
		})
		cancel()
		if srvErr := <-srvDone; srvErr != nil {
			appLog.Error("snapshot server failed", srvErr)
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), snapshotOut)
		return nil
	},
}

func snapshotURL(addr, date string) string {
	u := url.URL{Scheme: "http", Host: addr, Path: "/week"}
	if date != "" {
		u.RawQuery = url.Values{"date": {date}}.Encode()
	}
	return u.String()
}

func init() {
	snapshotCmd.Flags().StringVarP(&snapshotOut, "out", "o", "", "PNG file to write")
	snapshotCmd.Flags().StringVar(&snapshotDate, "date", "", "any day of the week to render (default today)")
	rootCmd.AddCommand(snapshotCmd)
}
