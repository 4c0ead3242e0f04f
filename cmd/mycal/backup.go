package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mycal/internal/backup"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Copy the calendar file into the backup directory now",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		sess, err := openSession()
		if err != nil {
			return err
		}
		defer sess.Close()

		path, err := backup.New(sess, app.cfg.BackupDir(sess.Path()), app.cfg.Backup.Keep).Run()
		if err != nil {
			return err
		}
		if path == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "unchanged since the last backup")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(backupCmd)
}
