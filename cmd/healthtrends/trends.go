// ABOUTME: CLI command rendering trend series for a date range and resolution.
// ABOUTME: Reads stored logs or a raw JSON file and prints a table, JSON, or YAML.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/harperreed/healthtrends/internal/chart"
	"github.com/harperreed/healthtrends/internal/models"
	"github.com/harperreed/healthtrends/internal/storage"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	trendsFrom       string
	trendsTo         string
	trendsResolution string
	trendsMetrics    []string
	trendsInput      string
	trendsFormat     string
)

var trendsCmd = &cobra.Command{
	Use:     "trends",
	Aliases: []string{"chart", "t"},
	Short:   "Show aggregated trends",
	Long: `Aggregate daily logs into daily, weekly, monthly, or yearly points.

Each point is the mean of the days in its bucket that recorded the metric.
Medication is shown as the share of logged days it was taken (0-1). A "-"
means no day in the bucket recorded that metric.

Weeks run Sunday to Saturday and are labelled like 03/02–03/08.

OPTIONS:

  --from, --to     Inclusive range (default: the 12 weeks ending today)
  --resolution     daily, weekly, monthly, yearly (default weekly)
  --metrics        Comma-separated subset: sleep, vital, mood, medication
  --input          Read raw per-day records from a JSON file instead of storage
  --format         table, json, or yaml

EXAMPLES:

  healthtrends trends
  healthtrends trends --resolution monthly --metrics sleep,mood
  healthtrends trends --from 2025-01-01 --to 2025-12-31 -r yearly --format json
  healthtrends trends --input health-logs.json -r daily`,
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := models.ParseResolution(trendsResolution)
		if err != nil {
			return err
		}
		to, err := parseDay(trendsTo)
		if err != nil {
			return err
		}
		from := to.AddDate(0, 0, -83)
		if trendsFrom != "" {
			if from, err = parseDay(trendsFrom); err != nil {
				return err
			}
		}

		var fetcher chart.Fetcher = storage.NewFetcher(repo)
		if trendsInput != "" {
			fetcher = chart.FileFetcher{Path: trendsInput}
		}
		svc := chart.NewService(fetcher, newNormalizer(), logger.Named("chart"))

		var metrics []string
		if cmd.Flags().Changed("metrics") {
			metrics = splitList(trendsMetrics)
		}

		series, err := svc.Build(cmd.Context(), chart.Query{
			UserID:     cfg.GetUserID(),
			From:       from,
			To:         to,
			Resolution: res,
			Metrics:    metrics,
		})
		if err != nil {
			return err
		}

		return renderSeries(os.Stdout, series, trendsFormat)
	},
}

func renderSeries(w io.Writer, series *chart.Series, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(series)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer func() { _ = enc.Close() }()
		return enc.Encode(series)
	case "table", "":
		return renderTable(w, series)
	default:
		return fmt.Errorf("unknown format: %s (use table, json, or yaml)", format)
	}
}

func renderTable(w io.Writer, series *chart.Series) error {
	if len(series.Points) == 0 {
		_, err := fmt.Fprintf(w, "No health logs between %s and %s.\n", series.From, series.To)
		return err
	}

	cols := series.Points[0].Metrics

	faint := color.New(color.Faint)
	header := padRight("PERIOD", 14)
	for _, m := range cols {
		header += padRight(strings.ToUpper(string(m)), 18)
	}
	fmt.Fprintln(w, faint.Sprint(strings.TrimRight(header, " ")))

	for _, p := range series.Points {
		line := padRight(p.DateLabel, 14)
		for _, m := range cols {
			line += padRight(showMean(p.Values[m]), 18)
		}
		fmt.Fprintln(w, strings.TrimRight(line, " "))
	}

	if series.Skipped > 0 {
		color.New(color.FgYellow).Fprintf(os.Stderr, "skipped %d records with unreadable dates\n", series.Skipped)
	}
	for _, a := range series.Anomalies {
		color.New(color.FgYellow).Fprintf(os.Stderr, "dropped %s\n", a)
	}
	return nil
}

func showMean(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *v)
}

// splitList flattens comma-separated flag values.
func splitList(values []string) []string {
	out := []string{}
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func init() {
	trendsCmd.Flags().StringVar(&trendsFrom, "from", "", "start date (YYYY-MM-DD)")
	trendsCmd.Flags().StringVar(&trendsTo, "to", "", "end date (YYYY-MM-DD, default today)")
	trendsCmd.Flags().StringVarP(&trendsResolution, "resolution", "r", string(models.ResolutionWeekly), "daily, weekly, monthly, or yearly")
	trendsCmd.Flags().StringSliceVarP(&trendsMetrics, "metrics", "m", nil, "metrics to include (default all)")
	trendsCmd.Flags().StringVarP(&trendsInput, "input", "i", "", "raw records JSON file")
	trendsCmd.Flags().StringVarP(&trendsFormat, "format", "f", "table", "table, json, or yaml")
	rootCmd.AddCommand(trendsCmd)
}
