// ABOUTME: CLI commands for exporting and importing daily health logs.
// ABOUTME: Exports JSON, YAML, or Markdown; imports backups or raw upstream records.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/harperreed/healthtrends/internal/chart"
	"github.com/harperreed/healthtrends/internal/storage"
	"github.com/spf13/cobra"
)

var (
	exportOutput   string
	exportSince    string
	exportAllUsers bool
)

var exportCmd = &cobra.Command{
	Use:   "export <format>",
	Short: "Export health logs",
	Long: `Export health logs in various formats.

FORMATS:

  json       Full JSON export (suitable for backup/restore)
  yaml       YAML export grouped by user (human-readable)
  markdown   Markdown table (for documentation/sharing)

OPTIONS:

  --output, -o   Write to file instead of stdout
  --since        Only include days since this date (markdown only)
  --all-users    Include every user (markdown only)

EXAMPLES:

  healthtrends export json                        # Export all data as JSON
  healthtrends export json -o backup.json         # Save to file
  healthtrends export yaml                        # Export as YAML
  healthtrends export markdown --since 2025-01-01 # Table of days from 2025 onward`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"json", "yaml", "markdown"},
	RunE: func(cmd *cobra.Command, args []string) error {
		format := args[0]

		var data []byte
		var err error

		switch format {
		case "json":
			data, err = storage.ExportJSON(repo)
		case "yaml":
			data, err = storage.ExportYAML(repo)
		case "markdown", "md":
			since, perr := optionalDay(exportSince)
			if perr != nil {
				return perr
			}
			user := cfg.GetUserID()
			if exportAllUsers {
				user = ""
			}
			var md string
			md, err = storage.ExportMarkdown(repo, user, since)
			data = []byte(md)
		default:
			return fmt.Errorf("unknown format: %s (use json, yaml, or markdown)", format)
		}

		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		if exportOutput != "" {
			if err := os.WriteFile(exportOutput, data, 0600); err != nil {
				return fmt.Errorf("failed to write file: %w", err)
			}
			color.Green("✓ Exported to %s", exportOutput)
		} else {
			fmt.Println(string(data))
		}

		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import health logs from JSON",
	Long: `Import health logs from a JSON file.

Two shapes are accepted:

  backup    A file written by 'healthtrends export json'.
  records   A JSON array of per-day objects (or {"data": [...]}) as served
            by the upstream health-logs API. Field names are matched through
            the configured aliases; out-of-range values are dropped and
            reported.

Days that already exist are replaced. Records without a user are stored
under the current user.

EXAMPLES:

  healthtrends import backup.json
  healthtrends import health-logs.json --user alice`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filename := args[0]

		data, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}

		if isBackup(data) {
			n, err := storage.ImportJSON(repo, data)
			if err != nil {
				return fmt.Errorf("import failed: %w", err)
			}
			color.Green("✓ Imported %d logs from %s", n, filename)
			return nil
		}

		raws, err := chart.DecodeRawRecords(bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		batch := newNormalizer().NormalizeFor(raws, cfg.GetUserID())
		imported := 0
		for _, r := range batch.Records {
			if err := repo.UpsertLog(r); err != nil {
				return fmt.Errorf("import failed after %d logs: %w", imported, err)
			}
			imported++
		}

		color.Green("✓ Imported %d logs from %s", imported, filename)
		if batch.Skipped > 0 {
			color.Yellow("  skipped %d records with unreadable dates", batch.Skipped)
		}
		if batch.Duplicates > 0 {
			color.Yellow("  %d duplicate days resolved to the last record", batch.Duplicates)
		}
		for _, a := range batch.Anomalies {
			color.Yellow("  dropped %s", a)
		}
		return nil
	},
}

// isBackup reports whether data is an export written by 'export json'.
func isBackup(data []byte) bool {
	var head struct {
		Version string          `json:"version"`
		Logs    json.RawMessage `json:"logs"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return false
	}
	return head.Version != "" && head.Logs != nil
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout)")
	exportCmd.Flags().StringVar(&exportSince, "since", "", "only include days since date (YYYY-MM-DD)")
	exportCmd.Flags().BoolVar(&exportAllUsers, "all-users", false, "include every user (markdown only)")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}
