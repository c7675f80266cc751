package observance

import (
	"time"

	"github.com/zapponejosh/devotions-api/internal/calendar"
)

// GridDay is one cell of the month grid: a resolved Day plus rendering
// hints for the calendar page.
type GridDay struct {
	Day
	InMonth bool `json:"in_month"`
	IsToday bool `json:"is_today"`
}

// MonthGrid builds the Sunday-first week rows for a month, including the
// leading and trailing days that belong to adjacent months.
//
// A month grid touches at most two calendar years (the week rows around
// January 1); one ChurchYear is built per distinct year and shared across
// every day of that year in the grid.
func MonthGrid(year int, month time.Month, today time.Time, reg *Registry) [][]GridDay {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)

	// Back up to the Sunday on or before the 1st.
	start := first.AddDate(0, 0, -int(first.Weekday()))

	years := map[int]*calendar.ChurchYear{}
	churchYear := func(y int) *calendar.ChurchYear {
		if cy, ok := years[y]; ok {
			return cy
		}
		cy := calendar.NewChurchYear(y)
		years[y] = cy
		return cy
	}

	todayMidnight := calendar.Midnight(today)

	var rows [][]GridDay
	d := start
	for {
		row := make([]GridDay, 0, 7)
		for i := 0; i < 7; i++ {
			resolved := Resolve(d, churchYear(d.Year()), reg)
			row = append(row, GridDay{
				Day:     resolved,
				InMonth: d.Month() == month && d.Year() == year,
				IsToday: d.Equal(todayMidnight),
			})
			d = d.AddDate(0, 0, 1)
		}
		rows = append(rows, row)

		if d.Month() != month || d.Year() != year {
			break
		}
	}

	return rows
}
