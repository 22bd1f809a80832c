package engine

import (
	"strings"
	"time"
)

// =============================================================================
// DAY - Calendar date key ("2006-01-02", UTC)
// =============================================================================

// Day is an ISO calendar date. ISO dates compare lexicographically in
// chronological order, so Day works directly as a sortable map key.
type Day string

const dayLayout = "2006-01-02"

func DayOf(t time.Time) Day {
	return Day(t.UTC().Format(dayLayout))
}

// Time parses the day back to midnight UTC. ok is false for malformed keys.
func (d Day) Time() (time.Time, bool) {
	t, err := time.Parse(dayLayout, string(d))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Weekday returns the lowercase English weekday name, or "" for malformed days.
func (d Day) Weekday() string {
	t, ok := d.Time()
	if !ok {
		return ""
	}
	return strings.ToLower(t.Weekday().String())
}

func (d Day) Next() Day {
	t, ok := d.Time()
	if !ok {
		return d
	}
	return DayOf(t.AddDate(0, 0, 1))
}

func (d Day) Before(other Day) bool { return d < other }
func (d Day) After(other Day) bool  { return d > other }

// =============================================================================
// PERIOD - Inclusive date range
// =============================================================================

type Period struct {
	Start Day
	End   Day
}

func (p Period) Valid() bool {
	_, okStart := p.Start.Time()
	_, okEnd := p.End.Time()
	return okStart && okEnd && !p.End.Before(p.Start)
}

// Days lists every date in the range, inclusive, in ascending order.
func (p Period) Days() []Day {
	if !p.Valid() {
		return nil
	}
	var days []Day
	for d := p.Start; !d.After(p.End); d = d.Next() {
		days = append(days, d)
		if len(days) > maxRangeDays {
			break
		}
	}
	return days
}

// maxRangeDays bounds range expansion so a corrupt period cannot spin the
// assembler. Ten years of daily rows is far beyond any reporting window.
const maxRangeDays = 3660

// periodOf derives the inclusive span between the earliest and latest day
// present. ok is false when no bucketable days exist.
func periodOf(days map[Day]bool) (Period, bool) {
	var min, max Day
	for d := range days {
		if min == "" || d.Before(min) {
			min = d
		}
		if max == "" || d.After(max) {
			max = d
		}
	}
	if min == "" {
		return Period{}, false
	}
	return Period{Start: min, End: max}, true
}
