package database

import "fmt"

// migrations are applied in ascending version order. Never edit an applied
// migration; add a new version instead.
var migrations = map[int]string{
	1: `
	CREATE TABLE IF NOT EXISTS lectionary (
		key TEXT PRIMARY KEY,
		old_testament TEXT NOT NULL,
		new_testament TEXT NOT NULL,
		updated_at TEXT NOT NULL DEFAULT (datetime('now'))
	);`,
	2: `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL DEFAULT '',
		phone_number TEXT NOT NULL DEFAULT '',
		streak_count INTEGER NOT NULL DEFAULT 0,
		best_streak_count INTEGER NOT NULL DEFAULT 0,
		last_prayer_date TEXT NOT NULL DEFAULT '',
		completed_devotions TEXT NOT NULL DEFAULT '{}',
		achievements TEXT NOT NULL DEFAULT '[]',
		created_at TEXT NOT NULL DEFAULT (datetime('now')),
		updated_at TEXT NOT NULL DEFAULT (datetime('now'))
	);`,
	3: `
	CREATE TABLE IF NOT EXISTS reminders (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		time_of_day TEXT NOT NULL,
		timezone TEXT NOT NULL,
		devotion TEXT NOT NULL,
		methods TEXT NOT NULL DEFAULT '[]',
		reading_type TEXT NOT NULL DEFAULT '',
		next_run_utc TEXT NOT NULL,
		created_at TEXT NOT NULL DEFAULT (datetime('now'))
	);
	CREATE INDEX IF NOT EXISTS idx_reminders_next_run ON reminders(next_run_utc);
	CREATE INDEX IF NOT EXISTS idx_reminders_user ON reminders(user_id);`,
}

func (db *DB) migrate() error {
	_, err := db.conn.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at TEXT NOT NULL DEFAULT (datetime('now'))
	)`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations: %w", err)
	}

	var current int
	if err := db.conn.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	for v := current + 1; ; v++ {
		stmt, ok := migrations[v]
		if !ok {
			return nil
		}
		if _, err := db.conn.Exec(stmt); err != nil {
			return fmt.Errorf("applying migration %d: %w", v, err)
		}
		if _, err := db.conn.Exec(`INSERT INTO schema_migrations (version) VALUES (?)`, v); err != nil {
			return fmt.Errorf("recording migration %d: %w", v, err)
		}
	}
}
