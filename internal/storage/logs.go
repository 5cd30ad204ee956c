// ABOUTME: Daily log CRUD operations for SQLite storage.
// ABOUTME: Implements Repository interface methods keyed by user and calendar day.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/healthtrends/internal/models"
)

const logColumns = `id, user_id, log_date, sleep_hours, vital_bpm, mood, medication_taken, symptom, notes, created_at, updated_at`

// UpsertLog inserts r or replaces the values of the existing log for the same user and day.
func (d *DB) UpsertLog(r *models.DailyRecord) error {
	if r.UserID == "" {
		return fmt.Errorf("upsert log: user id is required")
	}
	r.Date = models.DateOf(r.Date)
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	now := time.Now()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now

	query := `
		INSERT INTO daily_logs (` + logColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, log_date) DO UPDATE SET
			sleep_hours = excluded.sleep_hours,
			vital_bpm = excluded.vital_bpm,
			mood = excluded.mood,
			medication_taken = excluded.medication_taken,
			symptom = excluded.symptom,
			notes = excluded.notes,
			updated_at = excluded.updated_at
	`
	_, err := d.db.Exec(query,
		r.ID.String(),
		r.UserID,
		models.FormatDate(r.Date),
		r.SleepHours,
		r.VitalBPM,
		r.Mood,
		boolToInt(r.MedicationTaken),
		r.Symptom,
		r.Notes,
		r.CreatedAt.Format(time.RFC3339),
		r.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upsert log: %w", err)
	}

	// Reflect the persisted identity back onto r.
	var idStr, createdAt string
	err = d.db.QueryRow(
		`SELECT id, created_at FROM daily_logs WHERE user_id = ? AND log_date = ?`,
		r.UserID, models.FormatDate(r.Date),
	).Scan(&idStr, &createdAt)
	if err != nil {
		return fmt.Errorf("upsert log: %w", err)
	}
	r.ID, _ = uuid.Parse(idStr)
	r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)

	return nil
}

// GetLog retrieves the log for a user on a calendar day.
func (d *DB) GetLog(userID string, date time.Time) (*models.DailyRecord, error) {
	query := `SELECT ` + logColumns + ` FROM daily_logs WHERE user_id = ? AND log_date = ?`
	r, err := scanLog(d.db.QueryRow(query, userID, models.FormatDate(models.DateOf(date))))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("get log %s %s: %w", userID, models.FormatDate(date), ErrNotFound)
		}
		return nil, fmt.Errorf("get log: %w", err)
	}
	return r, nil
}

// ListLogs retrieves logs in ascending date order with optional user and date filters.
func (d *DB) ListLogs(userID string, from, to *time.Time, limit int) ([]*models.DailyRecord, error) {
	var where []string
	var args []interface{}

	if userID != "" {
		where = append(where, "user_id = ?")
		args = append(args, userID)
	}
	if from != nil {
		where = append(where, "log_date >= ?")
		args = append(args, models.FormatDate(models.DateOf(*from)))
	}
	if to != nil {
		where = append(where, "log_date <= ?")
		args = append(args, models.FormatDate(models.DateOf(*to)))
	}

	query := `SELECT ` + logColumns + ` FROM daily_logs`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}

	if limit > 0 {
		// Keep the most recent rows, then restore ascending order.
		query = `SELECT * FROM (` + query + ` ORDER BY log_date DESC, user_id DESC LIMIT ?) ORDER BY log_date ASC, user_id ASC`
		args = append(args, limit)
	} else {
		query += " ORDER BY log_date ASC, user_id ASC"
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list logs: %w", err)
	}
	defer rows.Close()

	var logs []*models.DailyRecord
	for rows.Next() {
		r, err := scanLog(rows)
		if err != nil {
			return nil, fmt.Errorf("list logs: %w", err)
		}
		logs = append(logs, r)
	}
	return logs, rows.Err()
}

// DeleteLog removes the log for a user on a calendar day.
func (d *DB) DeleteLog(userID string, date time.Time) error {
	day := models.FormatDate(models.DateOf(date))
	result, err := d.db.Exec("DELETE FROM daily_logs WHERE user_id = ? AND log_date = ?", userID, day)
	if err != nil {
		return fmt.Errorf("delete log: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete log: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("delete log %s %s: %w", userID, day, ErrNotFound)
	}

	return nil
}

// ListUsers returns the distinct user IDs that have at least one log.
func (d *DB) ListUsers() ([]string, error) {
	rows, err := d.db.Query("SELECT DISTINCT user_id FROM daily_logs ORDER BY user_id")
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanLog scans a single row into a DailyRecord.
func scanLog(row rowScanner) (*models.DailyRecord, error) {
	var r models.DailyRecord
	var idStr, logDate, createdAt, updatedAt string
	var sleep sql.NullFloat64
	var bpm, mood, medication sql.NullInt64
	var symptom, notes sql.NullString

	err := row.Scan(&idStr, &r.UserID, &logDate, &sleep, &bpm, &mood, &medication, &symptom, &notes, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	r.ID, _ = uuid.Parse(idStr)
	r.Date, err = models.ParseDate(logDate)
	if err != nil {
		return nil, fmt.Errorf("parse log date %q: %w", logDate, err)
	}
	r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	r.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)

	if sleep.Valid {
		r.SleepHours = &sleep.Float64
	}
	if bpm.Valid {
		v := int(bpm.Int64)
		r.VitalBPM = &v
	}
	if mood.Valid {
		v := int(mood.Int64)
		r.Mood = &v
	}
	if medication.Valid {
		v := medication.Int64 != 0
		r.MedicationTaken = &v
	}
	if symptom.Valid {
		r.Symptom = &symptom.String
	}
	if notes.Valid {
		r.Notes = &notes.String
	}

	return &r, nil
}

func boolToInt(b *bool) interface{} {
	if b == nil {
		return nil
	}
	if *b {
		return 1
	}
	return 0
}
