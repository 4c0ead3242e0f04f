package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mycal/internal/datetime"
	"mycal/internal/layout"
)

var weekDate string

var weekCmd = &cobra.Command{
	Use:   "week",
	Short: "Show the week containing a day (default today)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		today, err := datetime.DateOf(now())
		if err != nil {
			return err
		}
		anchor := today
		if weekDate != "" {
			if anchor, err = datetime.ParseISO(weekDate); err != nil {
				return err
			}
		}

		sess, err := openSession()
		if err != nil {
			return err
		}
		defer sess.Close()

		first, last := layout.Bounds(anchor)
		w := layout.Week(sess.EventsBetween(first, last), anchor)
		w.MarkToday(today)
		fmt.Fprintln(cmd.OutOrStdout(), renderWeek(w))
		return nil
	},
}

func init() {
	weekCmd.Flags().StringVar(&weekDate, "date", "", "any day of the week to show (YYYY-MM-DD)")
	rootCmd.AddCommand(weekCmd)
}
