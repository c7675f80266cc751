package observance

import (
	"strconv"
	"strings"
	"time"

	"github.com/zapponejosh/devotions-api/internal/calendar"
)

// knownRule reports whether a rule name is one the matcher can evaluate.
func knownRule(rule string) bool {
	switch rule {
	case "advent_1", "advent_2", "advent_3", "advent_4",
		"sunday_after_christmas", "reformation_observed":
		return true
	}
	if n, ok := epiphanyWeek(rule); ok {
		return n >= 1
	}
	return false
}

func epiphanyWeek(rule string) (int, bool) {
	if !strings.HasPrefix(rule, "epiphany_") {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(rule, "epiphany_"))
	if err != nil {
		return 0, false
	}
	return n, true
}

// matchesRule evaluates a named rule for the given date. Each rule is a
// small closed-form date computation within the date's own calendar year.
func matchesRule(rule string, d time.Time, cy *calendar.ChurchYear) bool {
	switch rule {
	case "advent_1":
		return d.Equal(calendar.Advent1(d.Year()))
	case "advent_2":
		return d.Equal(calendar.Advent1(d.Year()).AddDate(0, 0, 7))
	case "advent_3":
		return d.Equal(calendar.Advent1(d.Year()).AddDate(0, 0, 14))
	case "advent_4":
		return d.Equal(calendar.Advent1(d.Year()).AddDate(0, 0, 21))
	case "sunday_after_christmas":
		christmas := time.Date(d.Year(), time.December, 25, 0, 0, 0, 0, time.UTC)
		return d.Equal(nextSunday(christmas))
	case "reformation_observed":
		// The Sunday on or before Oct 31; Oct 31 itself when it is a Sunday.
		oct31 := time.Date(d.Year(), time.October, 31, 0, 0, 0, 0, time.UTC)
		return d.Equal(oct31.AddDate(0, 0, -int(oct31.Weekday())))
	}

	if n, ok := epiphanyWeek(rule); ok {
		epiphany := time.Date(d.Year(), time.January, 6, 0, 0, 0, 0, time.UTC)
		target := nextSunday(epiphany).AddDate(0, 0, (n-1)*7)
		return d.Equal(target)
	}

	return false
}

// nextSunday returns the first Sunday strictly after t.
func nextSunday(t time.Time) time.Time {
	return t.AddDate(0, 0, 7-int(t.Weekday()))
}

// Matches reports whether the observance applies to the given date:
// fixed month/day equality, the Easter-relative offset landing on the date,
// or the named rule evaluating true.
func (o Observance) Matches(d time.Time, cy *calendar.ChurchYear) bool {
	switch {
	case o.Date != "":
		month, day := o.monthDay()
		return int(d.Month()) == month && d.Day() == day
	case o.EasterOffset != nil:
		return d.Equal(cy.Easter.AddDate(0, 0, *o.EasterOffset))
	case o.Rule != "":
		return matchesRule(o.Rule, d, cy)
	}
	return false
}
