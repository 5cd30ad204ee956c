// ABOUTME: CLI command for copying health logs between storage backends.
// ABOUTME: Moves data from Charm KV to SQLite (or back) by upserting every day.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/healthtrends/internal/storage"
	"github.com/spf13/cobra"
)

var (
	migrateFrom   string
	migrateTo     string
	migrateDryRun bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Copy health logs between storage backends",
	Long: `Copy every user's daily logs from one storage backend to another.

Days are upserted, so running a migration twice is harmless. Days already
present in the destination are replaced by the source copy.

BACKENDS:

  sqlite   Local database at ~/.local/share/healthtrends/healthtrends.db
  charm    Charm KV, synced to the configured Charm host

USAGE:

  healthtrends migrate --dry-run                  # Preview charm -> sqlite
  healthtrends migrate                            # Copy charm -> sqlite
  healthtrends migrate --from sqlite --to charm   # Push local logs to Charm`,
	Annotations: noStorage,
	RunE: func(cmd *cobra.Command, args []string) error {
		if migrateFrom == migrateTo {
			return fmt.Errorf("--from and --to must differ")
		}

		src, err := openBackend(migrateFrom)
		if err != nil {
			return fmt.Errorf("failed to open source %s: %w", migrateFrom, err)
		}
		defer func() { _ = src.Close() }()

		if migrateDryRun {
			color.Yellow("Dry run mode - no changes will be made")
			fmt.Println()
			users, err := src.ListUsers()
			if err != nil {
				return fmt.Errorf("failed to list users: %w", err)
			}
			total := 0
			for _, u := range users {
				logs, err := src.ListLogs(u, nil, nil, 0)
				if err != nil {
					return fmt.Errorf("failed to list logs for %s: %w", u, err)
				}
				fmt.Printf("  %s %d days\n", padRight(u, 20), len(logs))
				total += len(logs)
			}
			fmt.Printf("\nWould copy %d days for %d users from %s to %s.\n", total, len(users), migrateFrom, migrateTo)
			return nil
		}

		dst, err := openBackend(migrateTo)
		if err != nil {
			return fmt.Errorf("failed to open destination %s: %w", migrateTo, err)
		}
		defer func() { _ = dst.Close() }()

		summary, err := storage.MigrateData(src, dst)
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}

		color.Green("✓ Migrated %d days for %d users from %s to %s", summary.Logs, summary.Users, migrateFrom, migrateTo)
		return nil
	},
}

// openBackend opens the named backend using the rest of the loaded config.
func openBackend(name string) (storage.Repository, error) {
	c := *cfg
	c.Backend = name
	return c.OpenStorage()
}

func init() {
	migrateCmd.Flags().StringVar(&migrateFrom, "from", "charm", "source backend: sqlite or charm")
	migrateCmd.Flags().StringVar(&migrateTo, "to", "sqlite", "destination backend: sqlite or charm")
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "preview migration without making changes")
	rootCmd.AddCommand(migrateCmd)
}
