package observance

import (
	"strings"
	"time"

	"github.com/zapponejosh/devotions-api/internal/calendar"
)

// Day is the fully resolved description of one calendar day: the lectionary
// key, the human-facing label after conflict resolution (empty for plain
// ferias), and the derived color and season. Ephemeral; never persisted.
type Day struct {
	Date        time.Time `json:"date"`
	Key         string    `json:"key"`
	DisplayName string    `json:"display_name"`
	Color       Color     `json:"color"`
	Season      string    `json:"season"`
}

// suppressedKeys are day keys whose label is always hidden on the calendar:
// the Ash-week weekdays and the Pentecost octave weekdays.
var suppressedKeys = map[string]bool{
	"Ash Thursday":        true,
	"Ash Friday":          true,
	"Ash Saturday":        true,
	"Pentecost Monday":    true,
	"Pentecost Tuesday":   true,
	"Pentecost Wednesday": true,
	"Pentecost Thursday":  true,
	"Pentecost Friday":    true,
	"Pentecost Saturday":  true,
}

// Resolve maps a date to its resolved Day: liturgical key, display name
// after observance matching and priority resolution, color, and season.
//
// The church year passed in must belong to the date's calendar year.
// Callers rendering a month grid should build one ChurchYear per distinct
// year in the grid and reuse it, rather than recomputing Easter per day.
func Resolve(date time.Time, cy *calendar.ChurchYear, reg *Registry) Day {
	d := calendar.Midnight(date)
	key := cy.Key(d)

	displayName := key
	if suppressedKeys[key] || isFeria(key) {
		displayName = ""
	}

	matched := match(d, cy, reg)
	if len(matched) > 0 {
		movable, fixed := applyPriority(splitMatched(matched))

		names := make([]string, 0, len(movable)+len(fixed))
		for _, o := range movable {
			names = append(names, o.Name)
		}
		for _, o := range fixed {
			names = append(names, o.Name)
		}
		displayName = strings.Join(names, " / ")

		// Explicit registry colors win; the first surviving movable entry
		// takes precedence over fixed ones.
		if c := explicitColor(movable, fixed); c != "" {
			return Day{
				Date:        d,
				Key:         key,
				DisplayName: displayName,
				Color:       c,
				Season:      SeasonFor(key, d, cy),
			}
		}
	}

	colorKey := displayName
	if colorKey == "" {
		colorKey = key
	}

	return Day{
		Date:        d,
		Key:         key,
		DisplayName: displayName,
		Color:       ColorFor(colorKey, d, cy),
		Season:      SeasonFor(key, d, cy),
	}
}

// isFeria reports whether a key names a plain seasonal weekday whose label
// the calendar suppresses: a non-Sunday day inside a Lent, Easter, or Advent
// numbered week.
func isFeria(key string) bool {
	if strings.Contains(key, "Sunday") {
		return false
	}
	return strings.HasPrefix(key, "Easter") ||
		strings.HasPrefix(key, "Lent") ||
		strings.HasPrefix(key, "Advent")
}

// match collects every registry entry that applies to the date, in registry
// order.
func match(d time.Time, cy *calendar.ChurchYear, reg *Registry) []Observance {
	var matched []Observance
	for _, o := range reg.Observances {
		if o.Matches(d, cy) {
			matched = append(matched, o)
		}
	}
	return matched
}

func splitMatched(matched []Observance) (movable, fixed []Observance) {
	for _, o := range matched {
		if o.IsFixed() {
			fixed = append(fixed, o)
		} else {
			movable = append(movable, o)
		}
	}
	return movable, fixed
}

// applyPriority reduces competing matches deterministically. The rules run
// in a fixed order; each can only narrow the movable set:
//
//  1. "Reformation Day (Observed)" collapses the movable set to itself.
//  2. A fixed "All Saints' Day" clears the movable set entirely (it
//     silently overrides a numbered Trinity Sunday).
//  3. An Advent entry drops any movable entry naming Trinity.
//  4. A pre-Lent, Lent, Transfiguration, or Ash Wednesday entry drops
//     movable Epiphany entries, except "The Baptism of Our Lord" and
//     "Epiphany of Our Lord".
//
// Fixed-vs-fixed conflicts have no rule; surviving fixed entries are simply
// concatenated after the movable ones.
func applyPriority(movable, fixed []Observance) ([]Observance, []Observance) {
	if hasName(movable, "Reformation Day (Observed)") {
		movable = keepNamed(movable, "Reformation Day (Observed)")
	}

	if hasName(fixed, "All Saints' Day") {
		movable = nil
	}

	if hasKeyword(movable, "Advent") {
		movable = dropKeyword(movable, "Trinity")
	}

	if hasKeyword(movable, "Septuagesima", "Sexagesima", "Quinquagesima",
		"Transfiguration", "Lent", "Ash Wednesday") {
		kept := movable[:0]
		for _, o := range movable {
			if !strings.Contains(o.Name, "Epiphany") ||
				strings.Contains(o.Name, "The Baptism of Our Lord") ||
				strings.Contains(o.Name, "Epiphany of Our Lord") {
				kept = append(kept, o)
			}
		}
		movable = kept
	}

	return movable, fixed
}

func hasName(items []Observance, name string) bool {
	for _, o := range items {
		if o.Name == name {
			return true
		}
	}
	return false
}

func keepNamed(items []Observance, name string) []Observance {
	kept := items[:0]
	for _, o := range items {
		if o.Name == name {
			kept = append(kept, o)
		}
	}
	return kept
}

func hasKeyword(items []Observance, keywords ...string) bool {
	for _, o := range items {
		for _, k := range keywords {
			if strings.Contains(o.Name, k) {
				return true
			}
		}
	}
	return false
}

func dropKeyword(items []Observance, keyword string) []Observance {
	kept := items[:0]
	for _, o := range items {
		if !strings.Contains(o.Name, keyword) {
			kept = append(kept, o)
		}
	}
	return kept
}

func explicitColor(movable, fixed []Observance) Color {
	if len(movable) > 0 && movable[0].Color != "" {
		return movable[0].Color
	}
	if len(fixed) > 0 && fixed[0].Color != "" {
		return fixed[0].Color
	}
	return ""
}
