// ABOUTME: CLI command for listing daily health logs.
// ABOUTME: Supports a date range and limiting results to the most recent days.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/healthtrends/internal/models"
	"github.com/spf13/cobra"
)

var (
	listFrom  string
	listTo    string
	listLimit int
	listAll   bool
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls", "l"},
	Short:   "List daily health logs",
	Long: `List recent daily logs, oldest first.

OUTPUT FORMAT:

  Each line shows: DATE  SLEEP  BPM  MOOD  MED  (SYMPTOM / NOTES)

  A "-" means the value was not recorded that day.

FILTERING:

  --from and --to bound the range (inclusive, YYYY-MM-DD).
  --limit keeps only the most recent N days of the range.
  --all-users lists every user instead of the current one.

EXAMPLES:

  healthtrends list                          # Last 20 days
  healthtrends list -n 7                     # Last week
  healthtrends list --from 2025-03-01 --to 2025-03-31 -n 0`,
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := optionalDay(listFrom)
		if err != nil {
			return err
		}
		to, err := optionalDay(listTo)
		if err != nil {
			return err
		}
		if from != nil && to != nil && from.After(*to) {
			return fmt.Errorf("--from must not be after --to")
		}

		user := cfg.GetUserID()
		if listAll {
			user = ""
		}

		logs, err := repo.ListLogs(user, from, to, listLimit)
		if err != nil {
			return fmt.Errorf("failed to list logs: %w", err)
		}

		if len(logs) == 0 {
			fmt.Println("No logs found.")
			return nil
		}

		faint := color.New(color.Faint)
		fmt.Println(faint.Sprintf("%s %s %s %s %s",
			padRight("DATE", 10), padRight("SLEEP", 6), padRight("BPM", 5), padRight("MOOD", 5), "MED"))
		for _, r := range logs {
			extra := showText(r.Symptom)
			if n := showText(r.Notes); n != "" {
				if extra != "" {
					extra += " / "
				}
				extra += n
			}
			if extra != "" {
				extra = faint.Sprintf(" (%s)", truncate(extra, 40))
			}
			who := ""
			if listAll {
				who = faint.Sprintf(" [%s]", r.UserID)
			}
			fmt.Printf("%s %s %s %s %s%s%s\n",
				models.FormatDate(r.Date),
				padRight(showFloat(r.SleepHours), 6),
				padRight(showInt(r.VitalBPM), 5),
				padRight(showInt(r.Mood), 5),
				padRight(showBool(r.MedicationTaken), 3),
				who,
				extra)
		}

		return nil
	},
}

func init() {
	listCmd.Flags().StringVar(&listFrom, "from", "", "start date (YYYY-MM-DD)")
	listCmd.Flags().StringVar(&listTo, "to", "", "end date (YYYY-MM-DD)")
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 20, "max number of days (0 for all)")
	listCmd.Flags().BoolVar(&listAll, "all-users", false, "list logs for every user")
	rootCmd.AddCommand(listCmd)
}
