package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrationsAreIdempotent(t *testing.T) {
	db := newTestDB(t)
	if err := db.migrate(); err != nil {
		t.Fatalf("second migrate run failed: %v", err)
	}
}

func TestLectionaryRoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	entry := LectionaryEntry{
		Key:          "Lent 3 Tuesday",
		OldTestament: "Genesis 27:30-45; 28:10-22",
		NewTestament: "Mark 9:1-13",
	}
	if err := db.UpsertLectionaryEntry(ctx, entry); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := db.GetReadingsByKey(ctx, "Lent 3 Tuesday")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got.OldTestament != entry.OldTestament || got.NewTestament != entry.NewTestament {
		t.Errorf("got %q / %q, want %q / %q",
			got.OldTestament, got.NewTestament, entry.OldTestament, entry.NewTestament)
	}

	// Upsert over the same key replaces rather than duplicating.
	entry.NewTestament = "Mark 9:14-32"
	if err := db.UpsertLectionaryEntry(ctx, entry); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	got, err = db.GetReadingsByKey(ctx, "Lent 3 Tuesday")
	if err != nil {
		t.Fatalf("lookup after upsert: %v", err)
	}
	if got.NewTestament != "Mark 9:14-32" {
		t.Errorf("got %q after upsert, want updated reading", got.NewTestament)
	}
}

func TestGetReadingsByKeyNotFound(t *testing.T) {
	db := newTestDB(t)
	_, err := db.GetReadingsByKey(context.Background(), "Easter 3 Monday")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestReminderLifecycle(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := db.UpsertUser(ctx, User{ID: "user-1", Email: "u@example.com"}); err != nil {
		t.Fatalf("creating user: %v", err)
	}

	next := time.Date(2025, time.June, 2, 13, 0, 0, 0, time.UTC)
	r := Reminder{
		ID:         uuid.New(),
		UserID:     "user-1",
		TimeOfDay:  "09:00",
		Timezone:   "America/New_York",
		Devotion:   "morning",
		Methods:    []string{"push", "email"},
		NextRunUTC: next,
	}
	if err := db.CreateReminder(ctx, r); err != nil {
		t.Fatalf("create: %v", err)
	}

	list, err := db.GetRemindersByUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("got %d reminders, want 1", len(list))
	}
	got := list[0]
	if got.ID != r.ID || got.TimeOfDay != "09:00" || got.Timezone != "America/New_York" {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if len(got.Methods) != 2 || got.Methods[0] != "push" {
		t.Errorf("methods round trip mismatch: %v", got.Methods)
	}
	if !got.NextRunUTC.Equal(next) {
		t.Errorf("next run = %v, want %v", got.NextRunUTC, next)
	}

	// Due query picks it up exactly at the boundary but not before.
	due, err := db.DueReminders(ctx, next.Add(-time.Minute))
	if err != nil {
		t.Fatalf("due: %v", err)
	}
	if len(due) != 0 {
		t.Errorf("reminder reported due before its next run time")
	}
	due, err = db.DueReminders(ctx, next)
	if err != nil {
		t.Fatalf("due: %v", err)
	}
	if len(due) != 1 {
		t.Fatalf("got %d due reminders at boundary, want 1", len(due))
	}

	// Advancing the next run removes it from the due set.
	if err := db.UpdateReminderNextRun(ctx, r.ID, next.AddDate(0, 0, 1)); err != nil {
		t.Fatalf("update next run: %v", err)
	}
	due, err = db.DueReminders(ctx, next)
	if err != nil {
		t.Fatalf("due: %v", err)
	}
	if len(due) != 0 {
		t.Errorf("reminder still due after reschedule")
	}

	if err := db.DeleteReminder(ctx, "user-1", r.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := db.DeleteReminder(ctx, "user-1", r.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: got %v, want ErrNotFound", err)
	}
}

func TestDeleteReminderScopedToOwner(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	for _, id := range []string{"owner", "intruder"} {
		if err := db.UpsertUser(ctx, User{ID: id}); err != nil {
			t.Fatalf("creating user %s: %v", id, err)
		}
	}
	r := Reminder{
		ID:         uuid.New(),
		UserID:     "owner",
		TimeOfDay:  "06:00",
		Timezone:   "UTC",
		Devotion:   "morning",
		Methods:    []string{"push"},
		NextRunUTC: time.Now().UTC(),
	}
	if err := db.CreateReminder(ctx, r); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := db.DeleteReminder(ctx, "intruder", r.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("cross-user delete: got %v, want ErrNotFound", err)
	}
	if _, err := db.GetReminder(ctx, "owner", r.ID); err != nil {
		t.Errorf("reminder vanished after denied delete: %v", err)
	}
}

func TestUserStreakTx(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := db.UpsertUser(ctx, User{ID: "user-1"}); err != nil {
		t.Fatalf("creating user: %v", err)
	}

	err := db.WithTx(ctx, func(tx *sql.Tx) error {
		u, err := GetUserTx(ctx, tx, "user-1")
		if err != nil {
			return err
		}
		u.StreakCount = 3
		u.BestStreakCount = 7
		u.LastPrayerDate = "2025-06-01"
		u.CompletedDevotions = map[string]string{"morning": "2025-06-01T09:12:00Z"}
		u.Achievements = []Achievement{{ID: "streak_7", Title: "One Week Faithful", Date: "2025-05-28", Icon: "star"}}
		return SaveUserStreakTx(ctx, tx, u)
	})
	if err != nil {
		t.Fatalf("streak transaction: %v", err)
	}

	u, err := db.GetUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if u.StreakCount != 3 || u.BestStreakCount != 7 || u.LastPrayerDate != "2025-06-01" {
		t.Errorf("streak fields did not persist: %+v", u)
	}
	if u.CompletedDevotions["morning"] != "2025-06-01T09:12:00Z" {
		t.Errorf("completed devotions did not persist: %v", u.CompletedDevotions)
	}
	if len(u.Achievements) != 1 || u.Achievements[0].ID != "streak_7" {
		t.Errorf("achievements did not persist: %v", u.Achievements)
	}

	// A failing fn rolls the write back.
	boom := errors.New("boom")
	err = db.WithTx(ctx, func(tx *sql.Tx) error {
		u, err := GetUserTx(ctx, tx, "user-1")
		if err != nil {
			return err
		}
		u.StreakCount = 99
		if err := SaveUserStreakTx(ctx, tx, u); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("got %v, want wrapped boom", err)
	}
	u, err = db.GetUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("get user after rollback: %v", err)
	}
	if u.StreakCount != 3 {
		t.Errorf("rollback left streak at %d, want 3", u.StreakCount)
	}
}

func TestGetUserNotFound(t *testing.T) {
	db := newTestDB(t)
	_, err := db.GetUser(context.Background(), "nobody")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}
