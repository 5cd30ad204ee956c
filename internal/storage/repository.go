// ABOUTME: Repository interface for per-user daily health logs.
// ABOUTME: One log per user per calendar day; writes replace the day's values.
package storage

import (
	"errors"
	"time"

	"github.com/harperreed/healthtrends/internal/models"
)

// ErrNotFound is returned when no log exists for the requested user and day.
var ErrNotFound = errors.New("not found")

// Repository defines the storage interface for daily logs.
// This interface allows swapping implementations (e.g., for testing).
type Repository interface {
	// UpsertLog stores r as the log for its user and day. An existing log
	// keeps its ID and CreatedAt; r is updated to reflect them.
	UpsertLog(r *models.DailyRecord) error
	GetLog(userID string, date time.Time) (*models.DailyRecord, error)
	// ListLogs returns logs in ascending date order. An empty userID matches
	// every user; nil bounds are open. A positive limit keeps the most recent logs.
	ListLogs(userID string, from, to *time.Time, limit int) ([]*models.DailyRecord, error)
	DeleteLog(userID string, date time.Time) error
	ListUsers() ([]string, error)

	// Lifecycle
	Close() error
}
