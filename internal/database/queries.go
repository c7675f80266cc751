package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const sqliteTime = "2006-01-02 15:04:05"

// GetReadingsByKey returns the lectionary entry for a liturgical key, or
// ErrNotFound when the key has no row.
func (db *DB) GetReadingsByKey(ctx context.Context, key string) (*LectionaryEntry, error) {
	var e LectionaryEntry
	var updated string
	err := db.conn.QueryRowContext(ctx,
		`SELECT key, old_testament, new_testament, updated_at FROM lectionary WHERE key = ?`,
		key,
	).Scan(&e.Key, &e.OldTestament, &e.NewTestament, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying lectionary key %q: %w", key, err)
	}
	e.UpdatedAt, _ = time.Parse(sqliteTime, updated)
	return &e, nil
}

// UpsertLectionaryEntry inserts or replaces the readings for a key. Used by
// the import command.
func (db *DB) UpsertLectionaryEntry(ctx context.Context, e LectionaryEntry) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO lectionary (key, old_testament, new_testament, updated_at)
		 VALUES (?, ?, ?, datetime('now'))
		 ON CONFLICT(key) DO UPDATE SET
			old_testament = excluded.old_testament,
			new_testament = excluded.new_testament,
			updated_at = excluded.updated_at`,
		e.Key, e.OldTestament, e.NewTestament,
	)
	if err != nil {
		return fmt.Errorf("upserting lectionary key %q: %w", e.Key, err)
	}
	return nil
}

// CreateReminder stores a new reminder.
func (db *DB) CreateReminder(ctx context.Context, r Reminder) error {
	methods, err := json.Marshal(r.Methods)
	if err != nil {
		return fmt.Errorf("encoding methods: %w", err)
	}
	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO reminders (id, user_id, time_of_day, timezone, devotion, methods, reading_type, next_run_utc)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID.String(), r.UserID, r.TimeOfDay, r.Timezone, r.Devotion,
		string(methods), r.ReadingType, r.NextRunUTC.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting reminder: %w", err)
	}
	return nil
}

// GetRemindersByUser lists a user's reminders ordered by time of day.
func (db *DB) GetRemindersByUser(ctx context.Context, userID string) ([]Reminder, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, time_of_day, timezone, devotion, methods, reading_type, next_run_utc, created_at
		 FROM reminders WHERE user_id = ? ORDER BY time_of_day`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying reminders for user %s: %w", userID, err)
	}
	defer rows.Close()
	return scanReminders(rows)
}

// GetReminder fetches a single reminder scoped to its owner.
func (db *DB) GetReminder(ctx context.Context, userID string, id uuid.UUID) (*Reminder, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, time_of_day, timezone, devotion, methods, reading_type, next_run_utc, created_at
		 FROM reminders WHERE user_id = ? AND id = ?`,
		userID, id.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("querying reminder %s: %w", id, err)
	}
	defer rows.Close()
	list, err := scanReminders(rows)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, ErrNotFound
	}
	return &list[0], nil
}

// DeleteReminder removes a reminder scoped to its owner. Deleting a missing
// reminder returns ErrNotFound.
func (db *DB) DeleteReminder(ctx context.Context, userID string, id uuid.UUID) error {
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM reminders WHERE user_id = ? AND id = ?`, userID, id.String())
	if err != nil {
		return fmt.Errorf("deleting reminder %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DueReminders returns every reminder whose next run is at or before now.
func (db *DB) DueReminders(ctx context.Context, now time.Time) ([]Reminder, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, time_of_day, timezone, devotion, methods, reading_type, next_run_utc, created_at
		 FROM reminders WHERE next_run_utc <= ? ORDER BY next_run_utc`,
		now.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("querying due reminders: %w", err)
	}
	defer rows.Close()
	return scanReminders(rows)
}

// UpdateReminderNextRun advances a reminder's next run time after a delivery
// attempt.
func (db *DB) UpdateReminderNextRun(ctx context.Context, id uuid.UUID, next time.Time) error {
	_, err := db.conn.ExecContext(ctx,
		`UPDATE reminders SET next_run_utc = ? WHERE id = ?`,
		next.UTC().Format(time.RFC3339), id.String())
	if err != nil {
		return fmt.Errorf("updating reminder %s next run: %w", id, err)
	}
	return nil
}

func scanReminders(rows *sql.Rows) ([]Reminder, error) {
	var out []Reminder
	for rows.Next() {
		var r Reminder
		var id, methods, nextRun, created string
		if err := rows.Scan(&id, &r.UserID, &r.TimeOfDay, &r.Timezone, &r.Devotion,
			&methods, &r.ReadingType, &nextRun, &created); err != nil {
			return nil, fmt.Errorf("scanning reminder: %w", err)
		}
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("parsing reminder id %q: %w", id, err)
		}
		r.ID = parsed
		if err := json.Unmarshal([]byte(methods), &r.Methods); err != nil {
			return nil, fmt.Errorf("decoding methods for reminder %s: %w", id, err)
		}
		if r.NextRunUTC, err = time.Parse(time.RFC3339, nextRun); err != nil {
			return nil, fmt.Errorf("parsing next run for reminder %s: %w", id, err)
		}
		r.CreatedAt, _ = time.Parse(sqliteTime, created)
		out = append(out, r)
	}
	return out, rows.Err()
}

// UpsertUser creates a user row or refreshes its contact fields. Streak
// fields are untouched on conflict; those change only via the transaction
// helpers below.
func (db *DB) UpsertUser(ctx context.Context, u User) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (id, email, phone_number)
		 VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			email = excluded.email,
			phone_number = excluded.phone_number,
			updated_at = datetime('now')`,
		u.ID, u.Email, u.PhoneNumber,
	)
	if err != nil {
		return fmt.Errorf("upserting user %s: %w", u.ID, err)
	}
	return nil
}

// GetUser fetches a user by id, or ErrNotFound.
func (db *DB) GetUser(ctx context.Context, id string) (*User, error) {
	row := db.conn.QueryRowContext(ctx, userSelect+` WHERE id = ?`, id)
	return scanUser(row)
}

// GetUserTx fetches a user inside an open transaction, for read-modify-write
// streak updates.
func GetUserTx(ctx context.Context, tx *sql.Tx, id string) (*User, error) {
	row := tx.QueryRowContext(ctx, userSelect+` WHERE id = ?`, id)
	return scanUser(row)
}

// SaveUserStreakTx writes the streak fields back inside the same transaction
// that read them.
func SaveUserStreakTx(ctx context.Context, tx *sql.Tx, u *User) error {
	completed, err := json.Marshal(u.CompletedDevotions)
	if err != nil {
		return fmt.Errorf("encoding completed devotions: %w", err)
	}
	achievements, err := json.Marshal(u.Achievements)
	if err != nil {
		return fmt.Errorf("encoding achievements: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE users SET
			streak_count = ?,
			best_streak_count = ?,
			last_prayer_date = ?,
			completed_devotions = ?,
			achievements = ?,
			updated_at = datetime('now')
		 WHERE id = ?`,
		u.StreakCount, u.BestStreakCount, u.LastPrayerDate,
		string(completed), string(achievements), u.ID,
	)
	if err != nil {
		return fmt.Errorf("saving streak for user %s: %w", u.ID, err)
	}
	return nil
}

const userSelect = `SELECT id, email, phone_number, streak_count, best_streak_count,
	last_prayer_date, completed_devotions, achievements, created_at, updated_at
	FROM users`

func scanUser(row *sql.Row) (*User, error) {
	var u User
	var completed, achievements, created, updated string
	err := row.Scan(&u.ID, &u.Email, &u.PhoneNumber, &u.StreakCount, &u.BestStreakCount,
		&u.LastPrayerDate, &completed, &achievements, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning user: %w", err)
	}
	if err := json.Unmarshal([]byte(completed), &u.CompletedDevotions); err != nil {
		return nil, fmt.Errorf("decoding completed devotions: %w", err)
	}
	if err := json.Unmarshal([]byte(achievements), &u.Achievements); err != nil {
		return nil, fmt.Errorf("decoding achievements: %w", err)
	}
	u.CreatedAt, _ = time.Parse(sqliteTime, created)
	u.UpdatedAt, _ = time.Parse(sqliteTime, updated)
	return &u, nil
}
