// ABOUTME: CLI commands for recording and showing one day's health log.
// ABOUTME: Flag values run through the normalizer so CLI input obeys the same domains as imports.
package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/harperreed/healthtrends/internal/models"
	"github.com/harperreed/healthtrends/internal/storage"
	"github.com/harperreed/healthtrends/internal/trends"
	"github.com/spf13/cobra"
)

var (
	logSleep   float64
	logBPM     int
	logMood    int
	logMed     string
	logSymptom string
	logNotes   string
	logReplace bool
)

var logCmd = &cobra.Command{
	Use:     "log [date]",
	Aliases: []string{"add", "a"},
	Short:   "Record a day's health log",
	Long: `Record sleep, heart rate, mood, and medication for one day.

The date defaults to today and also accepts "yesterday" or YYYY-MM-DD.
Only the flags you pass are written; other values already logged for that
day are kept unless --replace is given.

DOMAINS:

  --sleep    hours, 0-24
  --bpm      resting heart rate, any positive whole number
  --mood     1 (worst) to 5 (best)
  --med      yes/no, true/false, 1/0

EXAMPLES:

  healthtrends log --sleep 7.5 --mood 4
  healthtrends log yesterday --med yes --bpm 64
  healthtrends log 2025-03-02 --symptom headache --notes "after long flight"
  healthtrends log 2025-03-02 --mood 3 --replace`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dayArg := ""
		if len(args) == 1 {
			dayArg = args[0]
		}
		day, err := parseDay(dayArg)
		if err != nil {
			return err
		}

		raw := trends.RawRecord{
			string(trends.FieldUserID): cfg.GetUserID(),
			string(trends.FieldDate):   models.FormatDate(day),
		}
		flags := cmd.Flags()
		if flags.Changed("sleep") {
			raw[string(trends.FieldSleepHours)] = logSleep
		}
		if flags.Changed("bpm") {
			raw[string(trends.FieldVitalBPM)] = logBPM
		}
		if flags.Changed("mood") {
			raw[string(trends.FieldMood)] = logMood
		}
		if flags.Changed("med") {
			raw[string(trends.FieldMedication)] = logMed
		}
		if flags.Changed("symptom") {
			raw[string(trends.FieldSymptom)] = logSymptom
		}
		if flags.Changed("notes") {
			raw[string(trends.FieldNotes)] = logNotes
		}

		rec, anomalies, err := newNormalizer().NormalizeOne(raw)
		if err != nil {
			return err
		}
		if len(anomalies) > 0 {
			msgs := make([]string, len(anomalies))
			for i, a := range anomalies {
				msgs[i] = fmt.Sprintf("%s: %s", a.Field, a.Reason)
			}
			return fmt.Errorf("rejected values: %s", strings.Join(msgs, "; "))
		}
		if rec.IsEmpty() {
			return errors.New("nothing to log: pass at least one of --sleep, --bpm, --mood, --med, --symptom, --notes")
		}

		if !logReplace {
			existing, err := repo.GetLog(rec.UserID, rec.Date)
			switch {
			case err == nil:
				rec = mergeLog(existing, rec)
			case !errors.Is(err, storage.ErrNotFound):
				return fmt.Errorf("failed to read existing log: %w", err)
			}
		}

		if err := repo.UpsertLog(rec); err != nil {
			return fmt.Errorf("failed to save log: %w", err)
		}

		color.Green("✓ Logged %s", models.FormatDate(rec.Date))
		printLog(rec)
		return nil
	},
}

// mergeLog overlays the values set in update onto base.
func mergeLog(base, update *models.DailyRecord) *models.DailyRecord {
	merged := *base
	if update.SleepHours != nil {
		merged.SleepHours = update.SleepHours
	}
	if update.VitalBPM != nil {
		merged.VitalBPM = update.VitalBPM
	}
	if update.Mood != nil {
		merged.Mood = update.Mood
	}
	if update.MedicationTaken != nil {
		merged.MedicationTaken = update.MedicationTaken
	}
	if update.Symptom != nil {
		merged.Symptom = update.Symptom
	}
	if update.Notes != nil {
		merged.Notes = update.Notes
	}
	return &merged
}

var showCmd = &cobra.Command{
	Use:   "show [date]",
	Short: "Show one day's health log",
	Long: `Show the log recorded for one day (default today).

EXAMPLES:

  healthtrends show
  healthtrends show yesterday
  healthtrends show 2025-03-02 --user alice`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dayArg := ""
		if len(args) == 1 {
			dayArg = args[0]
		}
		day, err := parseDay(dayArg)
		if err != nil {
			return err
		}

		rec, err := repo.GetLog(cfg.GetUserID(), day)
		if errors.Is(err, storage.ErrNotFound) {
			fmt.Printf("No log for %s.\n", models.FormatDate(day))
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to get log: %w", err)
		}

		printLog(rec)
		return nil
	},
}

func init() {
	logCmd.Flags().Float64Var(&logSleep, "sleep", 0, "hours of sleep")
	logCmd.Flags().IntVar(&logBPM, "bpm", 0, "resting heart rate in bpm")
	logCmd.Flags().IntVar(&logMood, "mood", 0, "mood from 1 to 5")
	logCmd.Flags().StringVar(&logMed, "med", "", "medication taken (yes/no)")
	logCmd.Flags().StringVar(&logSymptom, "symptom", "", "symptom description")
	logCmd.Flags().StringVar(&logNotes, "notes", "", "free-form notes")
	logCmd.Flags().BoolVar(&logReplace, "replace", false, "replace the whole day instead of merging")
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(showCmd)
}
