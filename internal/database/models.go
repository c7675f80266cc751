// Package database provides SQLite-backed storage for the devotions API:
// the lectionary table keyed by liturgical key, reminder records, and user
// streak state.
package database

import (
	"time"

	"github.com/google/uuid"
)

// LectionaryEntry pairs the Old and New Testament references for one
// liturgical key. The key column holds exactly the string produced by the
// calendar package ("Lent 3 Tuesday", "25 Dec", ...).
type LectionaryEntry struct {
	Key          string    `json:"key"`
	OldTestament string    `json:"old_testament"`
	NewTestament string    `json:"new_testament"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Reminder is a recurring prayer reminder. NextRunUTC is the only field the
// scheduler computes and mutates; everything else is user input.
type Reminder struct {
	ID          uuid.UUID `json:"id"`
	UserID      string    `json:"user_id"`
	TimeOfDay   string    `json:"time_of_day"` // "HH:MM", validated on create
	Timezone    string    `json:"timezone"`    // IANA name; unknown falls back to UTC
	Devotion    string    `json:"devotion"`    // morning, midday, evening, close_of_day, night_watch, bible_in_a_year, lent
	Methods     []string  `json:"methods"`     // push, sms, email
	ReadingType string    `json:"reading_type,omitempty"`
	NextRunUTC  time.Time `json:"next_run_utc"`
	CreatedAt   time.Time `json:"created_at"`
}

// Achievement is a streak milestone a user has unlocked.
type Achievement struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Date  string `json:"date"` // YYYY-MM-DD
	Icon  string `json:"icon"`
}

// User carries the contact and streak fields the core touches. Streak
// mutation happens only through the read-modify-write transaction in the
// streak package.
type User struct {
	ID                 string            `json:"id"`
	Email              string            `json:"email,omitempty"`
	PhoneNumber        string            `json:"phone_number,omitempty"`
	StreakCount        int               `json:"streak_count"`
	BestStreakCount    int               `json:"best_streak_count"`
	LastPrayerDate     string            `json:"last_prayer_date,omitempty"` // YYYY-MM-DD
	CompletedDevotions map[string]string `json:"completed_devotions"`        // devotion key -> RFC3339 timestamp
	Achievements       []Achievement     `json:"achievements"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}
