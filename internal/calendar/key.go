package calendar

import (
	"fmt"
	"time"
)

// dayNames indexes weekday names with Sunday first, matching the season
// arithmetic below (day 0 of Lent week 1 and of each Easter week is a
// Sunday).
var dayNames = [7]string{
	"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday",
}

// Key maps a date to its canonical liturgical key, the string used to join
// against the lectionary table.
//
// Inside the movable season (Ash Wednesday through Holy Trinity) the key is
// a season-relative label such as "Lent 3 Tuesday", "Easter Sunday" or
// "Pentecost Monday". Outside it, the key is the fixed-date form "DD Mon"
// (e.g. "25 Dec"). Total over any date; never returns an empty string.
func (cy *ChurchYear) Key(date time.Time) string {
	d := Midnight(date)

	if d.Before(cy.AshWednesday) || d.After(cy.HolyTrinity) {
		return d.Format("02 Jan")
	}

	if d.Before(cy.Easter) {
		return cy.lentKey(d)
	}
	return cy.easterKey(d)
}

// lentKey labels dates from Ash Wednesday up to (not including) Easter.
func (cy *ChurchYear) lentKey(d time.Time) string {
	daysSinceAsh := daysBetween(cy.AshWednesday, d)

	// The four days before the first Sunday in Lent carry "Ash" names.
	switch daysSinceAsh {
	case 0:
		return "Ash Wednesday"
	case 1:
		return "Ash Thursday"
	case 2:
		return "Ash Friday"
	case 3:
		return "Ash Saturday"
	}

	daysIntoLent := daysSinceAsh - 4
	week := daysIntoLent/7 + 1
	weekday := dayNames[daysIntoLent%7]

	// Week 6 is Holy Week.
	if week == 6 {
		switch weekday {
		case "Sunday":
			return "Palm Sunday"
		case "Thursday":
			return "Maundy Thursday"
		case "Friday":
			return "Good Friday"
		case "Saturday":
			return "Holy Saturday"
		default:
			return "Holy Week " + weekday
		}
	}

	return fmt.Sprintf("Lent %d %s", week, weekday)
}

// easterKey labels dates from Easter Sunday through Holy Trinity.
func (cy *ChurchYear) easterKey(d time.Time) string {
	daysSinceEaster := daysBetween(cy.Easter, d)
	week := daysSinceEaster/7 + 1
	weekday := dayNames[daysSinceEaster%7]

	switch {
	case daysSinceEaster == 0:
		return "Easter Sunday"
	case daysSinceEaster == 39:
		// The fortieth day, always a Thursday.
		return "Ascension Day"
	case daysSinceEaster == 49:
		return "Pentecost Sunday"
	case daysSinceEaster >= 50 && daysSinceEaster < 56:
		return "Pentecost " + weekday
	case daysSinceEaster == 56:
		return "Holy Trinity"
	}

	if week == 1 {
		return "Easter " + weekday
	}
	return fmt.Sprintf("Easter %d %s", week, weekday)
}

// ParseDateString parses a date string in YYYY-MM-DD format.
func ParseDateString(dateStr string) (time.Time, error) {
	return time.Parse("2006-01-02", dateStr)
}

// FormatDate formats a date as YYYY-MM-DD.
func FormatDate(date time.Time) string {
	return date.Format("2006-01-02")
}
