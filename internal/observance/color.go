package observance

import (
	"strings"
	"time"

	"github.com/zapponejosh/devotions-api/internal/calendar"
)

// Color is a liturgical paramentage color.
type Color string

const (
	White  Color = "White"
	Red    Color = "Red"
	Violet Color = "Violet"
	Black  Color = "Black"
	Rose   Color = "Rose"
	Green  Color = "Green"
)

// IsValid reports whether c is one of the six recognized colors.
func (c Color) IsValid() bool {
	switch c {
	case White, Red, Violet, Black, Rose, Green:
		return true
	}
	return false
}

// Keyword tables for deriving a color when the registry carries none.
// Order matters: pre-Lent wins over White ("Septuagesima" is Green even
// though the day is a Sunday), Black wins over Violet ("Ash Wednesday"
// matches both lists).
var (
	preLentKeywords = []string{"Septuagesima", "Sexagesima", "Quinquagesima"}

	blackKeywords = []string{"Ash Wednesday", "Good Friday"}

	whiteKeywords = []string{
		"Christmas",
		"Epiphany of Our Lord",
		"All Saints",
		"Trinity",
		"Conversion of St. Paul",
		"Confession of St. Peter",
		"St. John, Apostle",
		"Nativity of St. John the Baptist",
		"Circumcision",
		"Presentation",
		"Annunciation",
		"Visitation",
		"St. Mary",
		"St. Joseph",
		"St. Timothy",
		"St. Titus",
		"Easter",
		"Ascension",
	}

	redKeywords = []string{
		"Palm Sunday",
		"Pentecost",
		"Reformation",
		"Martyr",
		"Holy Cross",
		"Andrew",
		"Thomas",
		"James",
		"Simon",
		"Jude",
		"Matthew",
		"Luke",
		"Mark",
		"Peter",
		"Paul",
		"Bartholomew",
		"Philip",
		"Barnabas",
		"Matthias",
	}

	violetKeywords = []string{"Ash", "Lent"}
)

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// ColorFor derives the liturgical color for a day from its resolved key:
// keyword tables first, then date-range positional fallbacks.
//
// The key passed here is the display name when one survived conflict
// resolution, otherwise the liturgical key ("Ash Thursday" still colors
// Violet even though its label is suppressed).
func ColorFor(key string, date time.Time, cy *calendar.ChurchYear) Color {
	if containsAny(key, preLentKeywords) {
		return Green
	}
	if containsAny(key, blackKeywords) {
		return Black
	}
	if containsAny(key, whiteKeywords) {
		return White
	}
	if containsAny(key, redKeywords) {
		return Red
	}
	if containsAny(key, violetKeywords) {
		return Violet
	}

	d := calendar.Midnight(date)

	// Advent: Violet, with Rose on Gaudete (the third Sunday).
	adventStart := calendar.Advent1(d.Year())
	christmasEve := time.Date(d.Year(), time.December, 24, 0, 0, 0, 0, time.UTC)
	if !d.Before(adventStart) && !d.After(christmasEve) {
		if d.Equal(adventStart.AddDate(0, 0, 14)) {
			return Rose
		}
		return Violet
	}

	// Christmas season, Dec 25 through Jan 5.
	if (d.Month() == time.December && d.Day() >= 25) ||
		(d.Month() == time.January && d.Day() <= 5) {
		return White
	}

	// Epiphany season, Jan 6 until Ash Wednesday; Transfiguration Sunday
	// (the Sunday three days before Ash Wednesday) is White.
	jan6 := time.Date(d.Year(), time.January, 6, 0, 0, 0, 0, time.UTC)
	if !d.Before(jan6) && d.Before(cy.AshWednesday) {
		if d.Equal(cy.AshWednesday.AddDate(0, 0, -3)) {
			return White
		}
		return Green
	}

	// The long green season after Holy Trinity.
	if d.After(cy.HolyTrinity) && d.Before(adventStart) {
		return Green
	}

	return Green
}

// SeasonFor derives the liturgical season name for a day. Keyword matches on
// the liturgical key take precedence over the date-range fallbacks, evaluated
// independently of the color.
func SeasonFor(key string, date time.Time, cy *calendar.ChurchYear) string {
	if containsAny(key, preLentKeywords) {
		return "Pre-Lent"
	}

	d := calendar.Midnight(date)
	if !d.Before(cy.Septuagesima) && d.Before(cy.AshWednesday) {
		return "Pre-Lent"
	}

	switch {
	case strings.Contains(key, "Advent"):
		return "Advent"
	case strings.Contains(key, "Christmas"):
		return "Christmas"
	case strings.Contains(key, "Epiphany"):
		return "Epiphany"
	case containsAny(key, violetKeywords):
		return "Lent"
	case strings.Contains(key, "Easter"):
		return "Easter"
	case strings.Contains(key, "Pentecost"):
		return "Pentecost"
	case strings.Contains(key, "Trinity"):
		return "Holy Trinity"
	}

	if !d.Before(calendar.Advent1(d.Year())) &&
		!d.After(time.Date(d.Year(), time.December, 24, 0, 0, 0, 0, time.UTC)) {
		return "Advent"
	}

	if (d.Month() == time.December && d.Day() >= 25) ||
		(d.Month() == time.January && d.Day() <= 5) {
		return "Christmas"
	}

	jan6 := time.Date(d.Year(), time.January, 6, 0, 0, 0, 0, time.UTC)
	if !d.Before(jan6) && d.Before(cy.AshWednesday) {
		return "Epiphany"
	}

	if d.After(cy.HolyTrinity) {
		return "Season after Pentecost (Ordinary Time)"
	}

	return "Ordinary Time"
}
