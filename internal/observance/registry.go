// Package observance matches dates against the registry of named feasts and
// commemorations, resolves conflicting matches by explicit priority rules,
// and derives the display name, liturgical color, and season for a day.
package observance

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed registry.yaml
var defaultRegistryYAML []byte

// Observance is one named entry in the church-year registry. Exactly one of
// Date, EasterOffset, or Rule is set:
//
//   - Date pins the observance to a fixed month/day ("12-25").
//   - EasterOffset places it a signed number of days from Easter Sunday.
//   - Rule names a closed-form computation such as advent_1 or epiphany_3
//     (see rules.go).
//
// Color is optional; when absent the color is derived from keyword and
// date-range heuristics (color.go).
type Observance struct {
	Name         string `yaml:"name"`
	Date         string `yaml:"date,omitempty"`
	EasterOffset *int   `yaml:"easter_offset,omitempty"`
	Rule         string `yaml:"rule,omitempty"`
	Color        Color  `yaml:"color,omitempty"`
}

// IsFixed reports whether the observance is keyed to a fixed calendar date.
// Everything else (offset- and rule-based entries) counts as movable for
// conflict resolution.
func (o Observance) IsFixed() bool {
	return o.Date != ""
}

// monthDay returns the parsed fixed date. Only valid after Validate.
func (o Observance) monthDay() (month, day int) {
	parts := strings.SplitN(o.Date, "-", 2)
	month, _ = strconv.Atoi(parts[0])
	day, _ = strconv.Atoi(parts[1])
	return month, day
}

// Registry is the static, ordered collection of observances. It is loaded
// once at startup and read-only afterwards; no ambient global state.
type Registry struct {
	Observances []Observance `yaml:"observances"`
}

// LoadRegistry reads a registry from a YAML file. An empty path loads the
// embedded default registry.
func LoadRegistry(path string) (*Registry, error) {
	data := defaultRegistryYAML
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read observance registry: %w", err)
		}
	}

	var reg Registry
	if err := yaml.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse observance registry: %w", err)
	}

	if err := reg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observance registry: %w", err)
	}

	return &reg, nil
}

// Validate checks every entry for a name, exactly one matching mode, a
// parseable fixed date, and a known rule name.
func (r *Registry) Validate() error {
	for i, o := range r.Observances {
		if o.Name == "" {
			return fmt.Errorf("entry %d: name is required", i)
		}

		modes := 0
		if o.Date != "" {
			modes++
		}
		if o.EasterOffset != nil {
			modes++
		}
		if o.Rule != "" {
			modes++
		}
		if modes != 1 {
			return fmt.Errorf("entry %q: exactly one of date, easter_offset, rule required", o.Name)
		}

		if o.Date != "" {
			month, day, err := parseMonthDay(o.Date)
			if err != nil {
				return fmt.Errorf("entry %q: %w", o.Name, err)
			}
			if month < 1 || month > 12 || day < 1 || day > 31 {
				return fmt.Errorf("entry %q: date %q out of range", o.Name, o.Date)
			}
		}

		if o.Rule != "" && !knownRule(o.Rule) {
			return fmt.Errorf("entry %q: unknown rule %q", o.Name, o.Rule)
		}

		if o.Color != "" && !o.Color.IsValid() {
			return fmt.Errorf("entry %q: unknown color %q", o.Name, o.Color)
		}
	}
	return nil
}

func parseMonthDay(s string) (int, int, error) {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("date %q: want MM-DD", s)
	}
	month, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("date %q: bad month", s)
	}
	day, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("date %q: bad day", s)
	}
	return month, day, nil
}
