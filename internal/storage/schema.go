// ABOUTME: SQLite schema definition and initialization.
// ABOUTME: Defines the daily_logs table keyed by user and calendar day.
package storage

// initSchema creates or updates the database schema.
func (d *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS daily_logs (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		log_date TEXT NOT NULL,
		sleep_hours REAL,
		vital_bpm INTEGER,
		mood INTEGER,
		medication_taken INTEGER,
		symptom TEXT,
		notes TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (user_id, log_date)
	);

	CREATE INDEX IF NOT EXISTS idx_daily_logs_date ON daily_logs(log_date);
	CREATE INDEX IF NOT EXISTS idx_daily_logs_user_date ON daily_logs(user_id, log_date);
	`

	_, err := d.db.Exec(schema)
	return err
}
