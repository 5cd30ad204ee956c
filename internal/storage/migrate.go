// ABOUTME: Data migration between healthtrends storage backends.
// ABOUTME: Copies every user's daily logs from source to destination.

package storage

import (
	"fmt"
	"os"
)

// MigrateSummary holds counts of migrated entities.
type MigrateSummary struct {
	Users int
	Logs  int
}

// MigrateData copies all logs from src to dst storage.
// It walks users in order and upserts each of their logs into the
// destination, so rerunning a migration is harmless.
func MigrateData(src, dst Repository) (*MigrateSummary, error) {
	summary := &MigrateSummary{}

	users, err := src.ListUsers()
	if err != nil {
		return nil, fmt.Errorf("list source users: %w", err)
	}

	for _, u := range users {
		logs, err := src.ListLogs(u, nil, nil, 0)
		if err != nil {
			return nil, fmt.Errorf("list source logs for %s: %w", u, err)
		}
		for _, r := range logs {
			if err := dst.UpsertLog(r); err != nil {
				return nil, fmt.Errorf("upsert log %s: %w", r.ID, err)
			}
			summary.Logs++
		}
		summary.Users++
	}

	return summary, nil
}

// IsDirNonEmpty checks whether a directory exists and contains any files or subdirectories.
// Returns false if the directory does not exist or is empty.
func IsDirNonEmpty(path string) (bool, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read directory %q: %w", path, err)
	}
	return len(entries) > 0, nil
}
