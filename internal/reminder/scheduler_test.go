package reminder

import (
	"testing"
	"time"
)

func TestParseTimeOfDay(t *testing.T) {
	valid := []struct {
		in           string
		hour, minute int
	}{
		{"00:00", 0, 0},
		{"06:30", 6, 30},
		{"09:00", 9, 0},
		{"12:45", 12, 45},
		{"23:15", 23, 15},
	}
	for _, tc := range valid {
		h, m, err := ParseTimeOfDay(tc.in)
		if err != nil {
			t.Errorf("ParseTimeOfDay(%q) unexpected error: %v", tc.in, err)
			continue
		}
		if h != tc.hour || m != tc.minute {
			t.Errorf("ParseTimeOfDay(%q) = %d:%d, want %d:%d", tc.in, h, m, tc.hour, tc.minute)
		}
	}

	invalid := []string{
		"",
		"9:00",
		"09:5",
		"24:00",
		"12:60",
		"12:07", // not on a quarter hour
		"12-30",
		"noon",
		"12:30:00",
	}
	for _, in := range invalid {
		if _, _, err := ParseTimeOfDay(in); err == nil {
			t.Errorf("ParseTimeOfDay(%q) accepted invalid input", in)
		}
	}
}

func TestNextRunLaterToday(t *testing.T) {
	// 10:00 UTC now, reminder at 14:00 Eastern (18:00 UTC during DST).
	now := time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC)
	got, err := NextRun("14:00", "America/New_York", now)
	if err != nil {
		t.Fatalf("NextRun: %v", err)
	}
	want := time.Date(2025, time.June, 1, 18, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestNextRunAlreadyPassedToday(t *testing.T) {
	// 14:00 UTC is 10:00 Eastern, so a 09:00 reminder has already fired
	// today and must land tomorrow.
	now := time.Date(2025, time.June, 1, 14, 0, 0, 0, time.UTC)
	got, err := NextRun("09:00", "America/New_York", now)
	if err != nil {
		t.Fatalf("NextRun: %v", err)
	}
	want := time.Date(2025, time.June, 2, 13, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if got.Location() != time.UTC {
		t.Errorf("result not in UTC: %v", got.Location())
	}
}

func TestNextRunExactlyNowRollsForward(t *testing.T) {
	now := time.Date(2025, time.June, 1, 13, 0, 0, 0, time.UTC) // 09:00 Eastern
	got, err := NextRun("09:00", "America/New_York", now)
	if err != nil {
		t.Fatalf("NextRun: %v", err)
	}
	want := time.Date(2025, time.June, 2, 13, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("a run at exactly now must schedule tomorrow: got %v, want %v", got, want)
	}
}

func TestNextRunUnknownTimezoneFallsBackToUTC(t *testing.T) {
	now := time.Date(2025, time.June, 1, 8, 0, 0, 0, time.UTC)
	got, err := NextRun("09:00", "Mars/Olympus_Mons", now)
	if err != nil {
		t.Fatalf("unknown timezone must not error: %v", err)
	}
	want := time.Date(2025, time.June, 1, 9, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestNextRunPreservesWallClockAcrossDST(t *testing.T) {
	// US spring forward: 2025-03-09 02:00 Eastern. A 09:00 reminder keeps
	// its local wall clock on both sides of the transition.
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata unavailable")
	}

	now := time.Date(2025, time.March, 8, 10, 0, 0, 0, loc) // after 09:00 EST
	got, err := NextRun("09:00", "America/New_York", now)
	if err != nil {
		t.Fatalf("NextRun: %v", err)
	}
	local := got.In(loc)
	if local.Hour() != 9 || local.Minute() != 0 {
		t.Errorf("wall clock drifted across DST: got %02d:%02d", local.Hour(), local.Minute())
	}
	if local.Day() != 9 {
		t.Errorf("got day %d, want 9", local.Day())
	}
	// EST offset is -5, EDT is -4; the UTC instant shifts even though the
	// wall clock does not.
	want := time.Date(2025, time.March, 9, 13, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestNextRunRoundTrip(t *testing.T) {
	zones := []string{"UTC", "America/New_York", "Europe/Berlin", "Asia/Tokyo", "Australia/Sydney"}
	times := []string{"00:00", "06:15", "12:30", "23:45"}
	now := time.Date(2025, time.November, 14, 3, 27, 0, 0, time.UTC)

	for _, zone := range zones {
		loc, err := time.LoadLocation(zone)
		if err != nil {
			t.Fatalf("loading %s: %v", zone, err)
		}
		for _, tod := range times {
			got, err := NextRun(tod, zone, now)
			if err != nil {
				t.Fatalf("NextRun(%q, %q): %v", tod, zone, err)
			}
			if !got.After(now) {
				t.Errorf("NextRun(%q, %q) = %v not after now %v", tod, zone, got, now)
			}
			if back := got.In(loc).Format("15:04"); back != tod {
				t.Errorf("NextRun(%q, %q) round trips to %q", tod, zone, back)
			}
		}
	}
}

func TestNextRunRejectsBadTimeOfDay(t *testing.T) {
	if _, err := NextRun("25:00", "UTC", time.Now()); err == nil {
		t.Error("invalid time of day must error")
	}
}
