// Package reminder implements prayer-reminder scheduling: computing the
// next UTC fire instant for a recurring time-of-day in a user's timezone,
// and the periodic sweep that sends due reminders and reschedules them.
package reminder

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseTimeOfDay validates and parses an "HH:MM" 24-hour time string.
//
// Minutes must be on a 15-minute increment; anything else is rejected with a
// descriptive error before it can reach a schedule.
func ParseTimeOfDay(s string) (hour, minute int, err error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return 0, 0, fmt.Errorf("invalid time %q: want HH:MM", s)
	}

	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid time %q: hour must be 00-23", s)
	}

	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid time %q: minute must be 00-59", s)
	}

	if minute%15 != 0 {
		return 0, 0, fmt.Errorf("invalid time %q: minutes must be in 15-minute increments (:00, :15, :30, :45)", s)
	}

	return hour, minute, nil
}

// NextRun computes the next UTC instant a reminder with the given time of
// day and IANA timezone should fire, strictly after now.
//
// An unrecognized timezone falls back to UTC rather than failing; a reminder
// with a stale timezone name still fires, just at UTC wall-clock time. The
// time string must already be validated (ParseTimeOfDay); a malformed one
// returns an error here as a backstop.
//
// Rescheduling after a fire calls this again with a fresh now, never with
// the previously scheduled instant. That avoids drift accumulation and
// duplicate near-future fires after a delayed sweep, at the cost of
// skipping at most one fire if the dispatcher was down across a whole day
// boundary.
func NextRun(timeOfDay, timezone string, now time.Time) (time.Time, error) {
	hour, minute, err := ParseTimeOfDay(timeOfDay)
	if err != nil {
		return time.Time{}, err
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc = time.UTC
	}

	local := now.In(loc)
	candidate := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, loc)

	// Already past (or exactly now): tomorrow, same wall-clock time.
	if !candidate.After(now) {
		candidate = time.Date(local.Year(), local.Month(), local.Day()+1, hour, minute, 0, 0, loc)
	}

	return candidate.UTC(), nil
}
