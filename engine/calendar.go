/*
calendar.go - Per worker-day calendar status

PURPOSE:
  Determines, for one worker on one date, whether the day is a holiday,
  carries time off, or is a non-working day. Holiday and time-off status are
  dual-sourced: when the corresponding integration flag is on, the
  authoritative per-worker calendar is consulted; when it is off, status is
  inferred from the interval type tags recorded that day.

PRECEDENCE:
  Holiday status wins over time-off when reducing effective capacity: a
  holiday zeroes the day regardless of any time-off record. Full-day time
  off and non-working days also zero it; partial time off subtracts its
  hours, clamped at zero.
*/
package engine

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CalendarStatus is the resolved calendar state of one worker-day.
type CalendarStatus struct {
	Holiday     bool
	HolidayName string

	TimeOff        bool
	TimeOffName    string
	TimeOffHours   decimal.Decimal
	FullDayTimeOff bool

	NonWorking bool
}

// resolveCalendar computes the calendar status for one worker-day.
// intervals are that day's recorded intervals, used only for the
// tag-inferred fallbacks when an integration flag is off.
func resolveCalendar(cfg *Config, id WorkerID, day Day, intervals []*Interval) CalendarStatus {
	var st CalendarStatus

	if cfg.Flags.HolidayCalendar {
		for _, h := range cfg.Holidays[id] {
			if h.Date == day {
				st.Holiday = true
				st.HolidayName = h.Name
				break
			}
		}
	} else {
		for _, iv := range intervals {
			if iv.Type == TypeHoliday {
				st.Holiday = true
				break
			}
		}
	}

	if cfg.Flags.TimeOffCalendar {
		for _, to := range cfg.TimeOff[id] {
			if to.Date == day {
				st.TimeOff = true
				st.TimeOffName = to.Name
				st.TimeOffHours = to.Hours
				st.FullDayTimeOff = to.FullDay
				break
			}
		}
	} else {
		// Tag-inferred time off carries no full-day flag; it behaves as
		// partial time off worth the summed duration of the tagged intervals.
		hours := decimal.Zero
		for _, iv := range intervals {
			if iv.Type == TypeTimeOff {
				if h := ResolveHours(iv); h.IsPositive() {
					hours = hours.Add(h)
				}
				st.TimeOff = true
			}
		}
		st.TimeOffHours = hours
	}

	if cfg.Flags.WorkingDays {
		if profile := cfg.Profiles[id]; profile != nil {
			st.NonWorking = !workingDay(profile, day)
		}
	}

	return st
}

// workingDay reports whether the date's weekday appears in the profile's
// working-days set. Names are matched case-insensitively.
func workingDay(profile *WorkerProfile, day Day) bool {
	weekday := day.Weekday()
	for _, name := range profile.WorkingDays {
		if strings.EqualFold(name, weekday) {
			return true
		}
	}
	return false
}

// effectiveCapacity reduces the override-resolved base capacity by the
// day's calendar status, clamped at zero.
func effectiveCapacity(base decimal.Decimal, st CalendarStatus) decimal.Decimal {
	if st.Holiday || st.FullDayTimeOff || st.NonWorking {
		return decimal.Zero
	}
	capacity := base
	if st.TimeOff {
		capacity = capacity.Sub(st.TimeOffHours)
	}
	if capacity.IsNegative() {
		return decimal.Zero
	}
	return capacity
}
