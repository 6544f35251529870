package calendar

import (
	"time"

	"github.com/meenmo/shortrate/utils"
)

// CalendarID identifies a holiday calendar.
type CalendarID string

const (
	// TARGET is the Trans-European Automated Real-time Gross settlement calendar.
	TARGET CalendarID = "TARGET"
	// NullCalendar treats weekends as the only non-business days.
	NullCalendar CalendarID = "NONE"
)

// BusinessDayConvention selects how a non-business day is rolled.
type BusinessDayConvention string

const (
	Unadjusted        BusinessDayConvention = "UNADJUSTED"
	Following         BusinessDayConvention = "FOLLOWING"
	ModifiedFollowing BusinessDayConvention = "MODIFIED_FOLLOWING"
	Preceding         BusinessDayConvention = "PRECEDING"
)

func isHoliday(cal CalendarID, t time.Time) bool {
	switch cal {
	case TARGET:
		return isTargetHoliday(t)
	default:
		return false
	}
}

// IsBusinessDay checks weekends and holiday sets.
func IsBusinessDay(cal CalendarID, t time.Time) bool {
	if t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		return false
	}
	return !isHoliday(cal, t)
}

// Adjust applies Modified Following.
func Adjust(cal CalendarID, t time.Time) time.Time {
	origMonth := t.Month()
	for !IsBusinessDay(cal, t) {
		t = t.AddDate(0, 0, 1)
	}
	if t.Month() != origMonth {
		t = t.AddDate(0, 0, -1)
		for !IsBusinessDay(cal, t) {
			t = t.AddDate(0, 0, -1)
		}
	}
	return t
}

// AdjustFollowing applies a simple Following convention (no month preservation).
func AdjustFollowing(cal CalendarID, t time.Time) time.Time {
	for !IsBusinessDay(cal, t) {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

// AdjustPreceding rolls back to the previous business day.
func AdjustPreceding(cal CalendarID, t time.Time) time.Time {
	for !IsBusinessDay(cal, t) {
		t = t.AddDate(0, 0, -1)
	}
	return t
}

// AdjustWith applies the given business day convention.
func AdjustWith(cal CalendarID, t time.Time, bdc BusinessDayConvention) time.Time {
	switch bdc {
	case Unadjusted:
		return t
	case Following:
		return AdjustFollowing(cal, t)
	case Preceding:
		return AdjustPreceding(cal, t)
	default:
		return Adjust(cal, t)
	}
}

// AddBusinessDays advances n business days (n can be negative).
func AddBusinessDays(cal CalendarID, t time.Time, n int) time.Time {
	step := 1
	if n < 0 {
		step = -1
	}
	for n != 0 {
		t = t.AddDate(0, 0, step)
		if IsBusinessDay(cal, t) {
			n -= step
		}
	}
	return t
}

// Advance moves t by period p on cal.
//
// Day periods count business days. Week, month and year periods roll the calendar
// date and then apply bdc; with endOfMonth set, a start on the last business day of
// its month lands on the last business day of the target month.
func Advance(cal CalendarID, t time.Time, p utils.Period, bdc BusinessDayConvention, endOfMonth bool) time.Time {
	if p.Length == 0 {
		return AdjustWith(cal, t, bdc)
	}
	switch p.Unit {
	case utils.UnitDays:
		return AddBusinessDays(cal, t, p.Length)
	case utils.UnitWeeks:
		return AdjustWith(cal, p.AddTo(t), bdc)
	default:
		target := p.AddTo(t)
		if endOfMonth && IsEndOfMonth(cal, t) {
			return LastBusinessDayOfMonth(cal, target)
		}
		return AdjustWith(cal, target, bdc)
	}
}

// LastBusinessDayOfMonth returns the last business day of the month containing t.
func LastBusinessDayOfMonth(cal CalendarID, t time.Time) time.Time {
	nextMonth := time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, time.UTC)
	return AddBusinessDays(cal, nextMonth, -1)
}

// IsEndOfMonth checks if t is the last business day of its month.
func IsEndOfMonth(cal CalendarID, t time.Time) bool {
	return t.Equal(LastBusinessDayOfMonth(cal, t))
}
