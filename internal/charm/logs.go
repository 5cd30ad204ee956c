// ABOUTME: Daily log CRUD operations for Charm KV storage.
// ABOUTME: Keys are user and day scoped; filtering and ordering happen client-side.
package charm

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/healthtrends/internal/models"
	"github.com/harperreed/healthtrends/internal/storage"
)

// Compile-time check that Client implements storage.Repository.
var _ storage.Repository = (*Client)(nil)

// LogKey returns the KV key for a user's log on a calendar day.
func LogKey(userID string, date time.Time) string {
	return LogPrefix + userID + ":" + models.FormatDate(models.DateOf(date))
}

// UpsertLog stores r, keeping the ID and CreatedAt of any existing log for the same day.
func (c *Client) UpsertLog(r *models.DailyRecord) error {
	if r.UserID == "" {
		return fmt.Errorf("upsert log: user id is required")
	}
	r.Date = models.DateOf(r.Date)

	err := c.update(LogKey(r.UserID, r.Date), func(existing []byte, ok bool) ([]byte, error) {
		if ok {
			if prev, err := unmarshalJSON[models.DailyRecord](existing); err == nil {
				r.ID = prev.ID
				r.CreatedAt = prev.CreatedAt
			}
		}
		if r.ID == uuid.Nil {
			r.ID = uuid.New()
		}
		now := time.Now()
		if r.CreatedAt.IsZero() {
			r.CreatedAt = now
		}
		r.UpdatedAt = now

		data, err := marshalJSON(r)
		if err != nil {
			return nil, fmt.Errorf("marshal log: %w", err)
		}
		return data, nil
	})
	if err != nil {
		return fmt.Errorf("upsert log: %w", err)
	}
	return nil
}

// GetLog retrieves the log for a user on a calendar day.
func (c *Client) GetLog(userID string, date time.Time) (*models.DailyRecord, error) {
	data, ok, err := c.get(LogKey(userID, date))
	if err != nil {
		return nil, fmt.Errorf("get log: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("get log %s %s: %w", userID, models.FormatDate(date), storage.ErrNotFound)
	}

	r, err := unmarshalJSON[models.DailyRecord](data)
	if err != nil {
		return nil, fmt.Errorf("unmarshal log: %w", err)
	}
	return r, nil
}

// ListLogs retrieves logs in ascending date order with optional user and date filters.
func (c *Client) ListLogs(userID string, from, to *time.Time, limit int) ([]*models.DailyRecord, error) {
	allData, err := c.listByPrefix(LogPrefix)
	if err != nil {
		return nil, fmt.Errorf("list logs: %w", err)
	}

	var logs []*models.DailyRecord
	for _, data := range allData {
		r, err := unmarshalJSON[models.DailyRecord](data)
		if err != nil {
			continue // Skip invalid entries
		}
		logs = append(logs, r)
	}

	return filterLogs(logs, userID, from, to, limit), nil
}

// DeleteLog removes the log for a user on a calendar day.
func (c *Client) DeleteLog(userID string, date time.Time) error {
	ok, err := c.remove(LogKey(userID, date))
	if err != nil {
		return fmt.Errorf("delete log: %w", err)
	}
	if !ok {
		return fmt.Errorf("delete log %s %s: %w", userID, models.FormatDate(date), storage.ErrNotFound)
	}
	return nil
}

// DeleteAllLogs removes every daily log for every user and returns how many
// were deleted. Deletions reach other devices on the next sync.
func (c *Client) DeleteAllLogs() (int, error) {
	n, err := c.removeByPrefix(LogPrefix)
	if err != nil {
		return n, fmt.Errorf("delete all logs: %w", err)
	}
	return n, nil
}

// ListUsers returns the distinct user IDs that have at least one log.
func (c *Client) ListUsers() ([]string, error) {
	logs, err := c.ListLogs("", nil, nil, 0)
	if err != nil {
		return nil, err
	}
	return distinctUsers(logs), nil
}

// filterLogs applies the Repository listing contract to an unordered set of logs.
func filterLogs(logs []*models.DailyRecord, userID string, from, to *time.Time, limit int) []*models.DailyRecord {
	var out []*models.DailyRecord
	for _, r := range logs {
		if userID != "" && r.UserID != userID {
			continue
		}
		if from != nil && r.Date.Before(models.DateOf(*from)) {
			continue
		}
		if to != nil && r.Date.After(models.DateOf(*to)) {
			continue
		}
		out = append(out, r)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].UserID < out[j].UserID
	})

	// Apply limit, keeping the most recent
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}

func distinctUsers(logs []*models.DailyRecord) []string {
	seen := make(map[string]bool)
	var users []string
	for _, r := range logs {
		if !seen[r.UserID] {
			seen[r.UserID] = true
			users = append(users, r.UserID)
		}
	}
	sort.Strings(users)
	return users
}
