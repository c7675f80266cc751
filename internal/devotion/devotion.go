// Package devotion assembles the daily devotion content: lectionary
// readings resolved through the liturgical key, the psalm of the day, the
// weekly intercession topic, and an optional catechism rotation.
package devotion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/zapponejosh/devotions-api/internal/calendar"
	"github.com/zapponejosh/devotions-api/internal/database"
)

// ReadingNotFound fills a reading slot when the lectionary has no row for
// the day's key. The devotion still renders.
const ReadingNotFound = "Reading not found"

// Names maps devotion identifiers to display names.
var Names = map[string]string{
	"morning":         "Morning Prayer",
	"midday":          "Midday Prayer",
	"evening":         "Evening Prayer",
	"close_of_day":    "Close of the Day",
	"night_watch":     "Night Watch",
	"bible_in_a_year": "Bible in a Year",
	"lent":            "Lenten Devotion",
}

// URLs maps devotion identifiers to their page paths, for reminder links.
var URLs = map[string]string{
	"morning":         "/morning_devotion",
	"midday":          "/midday_devotion",
	"evening":         "/evening_devotion",
	"close_of_day":    "/close_of_day_devotion",
	"night_watch":     "/night_watch_devotion",
	"bible_in_a_year": "/bible_in_a_year",
	"lent":            "/lent_devotion",
}

// Known reports whether id names a devotion this service can remind for.
func Known(id string) bool {
	_, ok := Names[id]
	return ok
}

// officePrayers are the fixed prayers each office attaches. The daily
// content is the same across offices; only this prayer differs.
var officePrayers = map[string]string{
	"morning":      "I thank You, my heavenly Father, through Jesus Christ, Your dear Son, that You have kept me this night from all harm and danger.",
	"midday":       "Blessed Savior, at this hour You hung upon the cross, stretching out Your loving arms; grant that all the peoples of the earth may look to You and be saved.",
	"evening":      "I thank You, my heavenly Father, through Jesus Christ, Your dear Son, that You have graciously kept me this day.",
	"close_of_day": "Visit our dwellings, O Lord, and drive from them all the snares of the enemy; let Your holy angels dwell with us to preserve us in peace.",
	"night_watch":  "Keep watch, dear Lord, with those who work, or watch, or weep this night, and give Your angels charge over those who sleep.",
}

// OfficePrayer returns the fixed prayer for an office, or an empty string
// for devotions that carry none.
func OfficePrayer(id string) string {
	return officePrayers[id]
}

// CatechismSection is one chief part in the rotation.
type CatechismSection struct {
	Title   string `json:"title"`
	Text    string `json:"text"`
	Meaning string `json:"meaning,omitempty"`
}

// catechismSections rotate by day of year when the catechism is enabled.
var catechismSections = []CatechismSection{
	{Title: "The Ten Commandments", Text: "You shall have no other gods.", Meaning: "We should fear, love, and trust in God above all things."},
	{Title: "The Creed", Text: "I believe in God, the Father Almighty, maker of heaven and earth."},
	{Title: "The Lord's Prayer", Text: "Our Father who art in heaven, hallowed be Thy name."},
	{Title: "Holy Baptism", Text: "Baptism is not just plain water, but it is the water included in God's command and combined with God's word."},
	{Title: "Confession", Text: "Confession has two parts. First, that we confess our sins, and second, that we receive absolution."},
	{Title: "The Sacrament of the Altar", Text: "It is the true body and blood of our Lord Jesus Christ under the bread and wine, instituted by Christ Himself."},
}

// weeklyPrayers is the intercession cycle, indexed by time.Weekday.
var weeklyPrayers = [7]struct {
	Topic  string
	Prayer string
}{
	time.Sunday:    {"The Church and Her Mission", "Lord, gather Your people around Word and Sacrament and send them out with the Gospel."},
	time.Monday:    {"Family, School, and Work", "Lord, bless our homes, our labor, and all who teach and learn."},
	time.Tuesday:   {"Good Government and Peace", "Lord, grant wisdom to those who govern and peace among the nations."},
	time.Wednesday: {"The Sick and Suffering", "Lord, comfort the sick, the grieving, and all in any need."},
	time.Thursday:  {"Pastors and Church Workers", "Lord, sustain all who serve in Your Church with faithfulness and joy."},
	time.Friday:    {"Missions and the Persecuted", "Lord, strengthen those who carry Your name where it is unwelcome."},
	time.Saturday:  {"Preparation for Worship", "Lord, prepare our hearts to receive Your gifts tomorrow."},
}

// Readings is the lectionary lookup the assembler depends on.
type Readings interface {
	GetReadingsByKey(ctx context.Context, key string) (*database.LectionaryEntry, error)
}

// Data is everything a devotion page needs for one date.
type Data struct {
	Date         string            `json:"date"`     // "Sunday, March 09, 2025"
	Key          string            `json:"key"`      // liturgical key
	PsalmRef     string            `json:"psalm_ref"`
	OldTestament string            `json:"old_testament"`
	NewTestament string            `json:"new_testament"`
	PrayerTopic  string            `json:"prayer_topic"`
	WeeklyPrayer string            `json:"weekly_prayer"`
	OfficePrayer string            `json:"office_prayer,omitempty"`
	Catechism    *CatechismSection `json:"catechism,omitempty"`
}

// Assembler builds Data from the lectionary store and the in-code tables.
type Assembler struct {
	readings        Readings
	logger          *slog.Logger
	enableCatechism bool
}

// NewAssembler wires an assembler. The catechism rotation ships disabled;
// pass enableCatechism to turn it on.
func NewAssembler(readings Readings, logger *slog.Logger, enableCatechism bool) *Assembler {
	return &Assembler{readings: readings, logger: logger, enableCatechism: enableCatechism}
}

// ForOffice assembles the devotion content for a date and attaches the
// office's fixed prayer. An empty or unknown office attaches nothing.
func (a *Assembler) ForOffice(ctx context.Context, date time.Time, office string) (*Data, error) {
	d, err := a.ForDate(ctx, date)
	if err != nil {
		return nil, err
	}
	d.OfficePrayer = OfficePrayer(office)
	return d, nil
}

// ForDate assembles the devotion content for a date. A missing lectionary
// key degrades to placeholder readings rather than failing; only storage
// errors propagate.
func (a *Assembler) ForDate(ctx context.Context, date time.Time) (*Data, error) {
	cy := calendar.NewChurchYear(date.Year())
	key := cy.Key(date)

	ot, nt := ReadingNotFound, ReadingNotFound
	entry, err := a.readings.GetReadingsByKey(ctx, key)
	switch {
	case err == nil:
		ot, nt = entry.OldTestament, entry.NewTestament
	case errors.Is(err, database.ErrNotFound):
		a.logger.Warn("no lectionary entry for key", "key", key)
	default:
		return nil, fmt.Errorf("looking up readings for %q: %w", key, err)
	}

	d := &Data{
		Date:         date.Format("Monday, January 02, 2006"),
		Key:          key,
		PsalmRef:     PsalmForDay(date),
		OldTestament: ot,
		NewTestament: nt,
	}

	wp := weeklyPrayers[date.Weekday()]
	d.PrayerTopic = wp.Topic
	d.WeeklyPrayer = wp.Prayer

	if a.enableCatechism {
		section := catechismSections[date.YearDay()%len(catechismSections)]
		d.Catechism = &section
	}

	return d, nil
}

// PsalmForDay walks the psalter once through the year, wrapping after 150.
func PsalmForDay(date time.Time) string {
	return fmt.Sprintf("Psalm %d", (date.YearDay()-1)%150+1)
}
