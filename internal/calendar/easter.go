// Package calendar provides the church-year date calculations that every
// devotional feature keys off of: Easter, the movable-season anchors derived
// from it, and the canonical liturgical key for an arbitrary date.
package calendar

import (
	"time"
)

// CalculateEaster calculates the date of Western Easter Sunday for a given
// year using the anonymous Gregorian computus.
//
// The result is always a date in March or April. The algorithm is valid for
// any year in the Gregorian calendar (1583 onward); no bound is enforced.
func CalculateEaster(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := ((h + l - 7*m + 114) % 31) + 1

	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// ChurchYear holds the Easter-derived anchor dates for a single calendar
// year. It is cheap to build, immutable once built, and safe to cache
// indefinitely: the dates for a given year never change.
//
// Invariant: AshWednesday < Easter < Pentecost < HolyTrinity, and
// Septuagesima < Sexagesima < Quinquagesima < AshWednesday.
type ChurchYear struct {
	Year          int
	Easter        time.Time
	AshWednesday  time.Time
	Pentecost     time.Time
	HolyTrinity   time.Time
	Septuagesima  time.Time
	Sexagesima    time.Time
	Quinquagesima time.Time
}

// NewChurchYear computes all anchor dates for the given year.
func NewChurchYear(year int) *ChurchYear {
	easter := CalculateEaster(year)
	pentecost := easter.AddDate(0, 0, 49)
	return &ChurchYear{
		Year:          year,
		Easter:        easter,
		AshWednesday:  easter.AddDate(0, 0, -46),
		Pentecost:     pentecost,
		HolyTrinity:   pentecost.AddDate(0, 0, 7),
		Septuagesima:  easter.AddDate(0, 0, -63),
		Sexagesima:    easter.AddDate(0, 0, -56),
		Quinquagesima: easter.AddDate(0, 0, -49),
	}
}

// Advent1 returns the first Sunday of Advent for the given year: the Sunday
// that falls between November 27 and December 3 inclusive.
//
// It is a free function rather than a method because calendar-page rendering
// asks for adjacent years at month boundaries.
func Advent1(year int) time.Time {
	dec3 := time.Date(year, time.December, 3, 0, 0, 0, 0, time.UTC)
	// Sunday on or before Dec 3.
	return dec3.AddDate(0, 0, -int(dec3.Weekday()))
}

// WeekOfChurchYear returns the 1-based week number, counted from the Advent 1
// that begins the church year containing the given date.
func (cy *ChurchYear) WeekOfChurchYear(date time.Time) int {
	d := Midnight(date)
	start := Advent1(d.Year())
	if d.Before(start) {
		start = Advent1(d.Year() - 1)
	}
	return daysBetween(start, d)/7 + 1
}

// Ascension returns Ascension Day, 39 days after Easter (always a Thursday).
func (cy *ChurchYear) Ascension() time.Time {
	return cy.Easter.AddDate(0, 0, 39)
}

// InLent reports whether the date falls within Lent, Ash Wednesday through
// Easter Sunday inclusive. The Lenten devotion and its reminders are gated
// on this.
func (cy *ChurchYear) InLent(date time.Time) bool {
	d := Midnight(date)
	return !d.Before(cy.AshWednesday) && !d.After(cy.Easter)
}

// Midnight truncates a time to midnight UTC of the same calendar day.
// All church-year arithmetic operates on these normalized dates.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// daysBetween returns the whole number of days from a to b.
// Both arguments must be midnight-UTC dates.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}
