package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the civil date format used in files and exports.
const DateLayout = "2006-01-02"

// Preset names how a DateRange was built.
type Preset string

const (
	PresetYTD      Preset = "YTD"
	PresetFullYear Preset = "FULL_YEAR"
	PresetCustom   Preset = "CUSTOM"
)

// ParsePreset accepts ytd, full_year (or "full year") and custom.
func ParsePreset(s string) (Preset, error) {
	switch strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), " ", "_")) {
	case "", "YTD":
		return PresetYTD, nil
	case "FULL_YEAR", "YEAR":
		return PresetFullYear, nil
	case "CUSTOM":
		return PresetCustom, nil
	}
	return "", fmt.Errorf("unknown date range preset %q", s)
}

// DateRange is an inclusive range of civil dates.
type DateRange struct {
	From   time.Time
	To     time.Time
	Preset Preset
	Year   int
}

// Day truncates t to its civil date in UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD date.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// NewDateRange builds a range from a preset. YTD runs from January 1st of year
// to asOf (or December 31st when year is already over); FULL_YEAR covers the
// whole calendar year; CUSTOM uses from and to verbatim.
func NewDateRange(preset Preset, year int, asOf, from, to time.Time) (DateRange, error) {
	var r DateRange
	switch preset {
	case PresetYTD:
		end := Day(asOf)
		if end.Year() != year {
			end = time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
		}
		r = DateRange{From: time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC), To: end}
	case PresetFullYear:
		r = DateRange{
			From: time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
			To:   time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC),
		}
	case PresetCustom:
		if from.IsZero() || to.IsZero() {
			return DateRange{}, fmt.Errorf("custom date range needs both bounds")
		}
		r = DateRange{From: Day(from), To: Day(to)}
		year = r.From.Year()
	default:
		return DateRange{}, fmt.Errorf("unknown date range preset %q", preset)
	}
	if r.From.After(r.To) {
		return DateRange{}, fmt.Errorf("start date %s is after end date %s", r.From.Format(DateLayout), r.To.Format(DateLayout))
	}
	r.Preset = preset
	r.Year = year
	return r, nil
}

// Contains reports whether the civil date of t lies within the range, bounds included.
func (r DateRange) Contains(t time.Time) bool {
	d := Day(t)
	return !d.Before(r.From) && !d.After(r.To)
}

func (r DateRange) String() string {
	return r.From.Format(DateLayout) + " to " + r.To.Format(DateLayout)
}

type dateRangeJSON struct {
	Start  string `json:"start"`
	End    string `json:"end"`
	Preset Preset `json:"preset,omitempty"`
	Year   int    `json:"year,omitempty"`
}

func (r DateRange) MarshalJSON() ([]byte, error) {
	return json.Marshal(dateRangeJSON{
		Start:  r.From.Format(DateLayout),
		End:    r.To.Format(DateLayout),
		Preset: r.Preset,
		Year:   r.Year,
	})
}

func (r *DateRange) UnmarshalJSON(data []byte) error {
	var raw dateRangeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	from, err := ParseDay(raw.Start)
	if err != nil {
		return err
	}
	to, err := ParseDay(raw.End)
	if err != nil {
		return err
	}
	*r = DateRange{From: from, To: to, Preset: raw.Preset, Year: raw.Year}
	return nil
}
