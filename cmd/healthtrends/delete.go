// ABOUTME: CLI command for deleting one day's health log.
// ABOUTME: Shows what was removed before confirming deletion.
package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/healthtrends/internal/models"
	"github.com/harperreed/healthtrends/internal/storage"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:     "delete <date>",
	Aliases: []string{"del", "rm"},
	Short:   "Delete a day's health log",
	Long: `Delete the log recorded for one day.

EXAMPLES:

  healthtrends delete 2025-03-02
  healthtrends rm yesterday
  healthtrends delete today --user alice

CAUTION:

  This permanently deletes the day's log. There is no undo.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		day, err := parseDay(args[0])
		if err != nil {
			return err
		}
		user := cfg.GetUserID()

		rec, err := repo.GetLog(user, day)
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("no log for %s", models.FormatDate(day))
		}
		if err != nil {
			return fmt.Errorf("failed to get log: %w", err)
		}

		if err := repo.DeleteLog(user, day); err != nil {
			return fmt.Errorf("failed to delete log: %w", err)
		}

		color.Yellow("✗ Deleted %s", models.FormatDate(rec.Date))
		fmt.Printf("  sleep %s  bpm %s  mood %s  med %s\n",
			showFloat(rec.SleepHours), showInt(rec.VitalBPM), showInt(rec.Mood), showBool(rec.MedicationTaken))

		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
