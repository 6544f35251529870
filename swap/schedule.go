package swap

import (
	"fmt"
	"time"

	"github.com/meenmo/shortrate/calendar"
	"github.com/meenmo/shortrate/utils"
)

// GenerateSchedule builds the accrual periods of a leg between effective and maturity.
//
// Unadjusted dates are rolled from a single anchor (effective for Forward,
// maturity for Backward) so repeated adjustments never drift. A leftover
// fraction of a period becomes a short stub at the far end.
func GenerateSchedule(effective, maturity time.Time, leg LegConvention) ([]SchedulePeriod, error) {
	if !maturity.After(effective) {
		return nil, fmt.Errorf("GenerateSchedule: maturity %s not after effective %s: %w",
			utils.FormatDate(maturity), utils.FormatDate(effective), ErrInvalidSwap)
	}
	if leg.Tenor.Length <= 0 {
		return nil, fmt.Errorf("GenerateSchedule: unsupported tenor %s: %w", leg.Tenor, ErrInvalidSwap)
	}

	var unadjusted []time.Time
	switch leg.Rule {
	case Backward:
		unadjusted = rollBackward(effective, maturity, leg)
	default:
		unadjusted = rollForward(effective, maturity, leg)
	}

	periods := make([]SchedulePeriod, 0, len(unadjusted)-1)
	for i := 0; i < len(unadjusted)-1; i++ {
		accrualStart := calendar.AdjustWith(leg.Calendar, unadjusted[i], leg.Convention)
		accrualEnd := calendar.AdjustWith(leg.Calendar, unadjusted[i+1], leg.Convention)
		payDate := accrualEnd
		if leg.PayDelayDays > 0 {
			payDate = calendar.AddBusinessDays(leg.Calendar, accrualEnd, leg.PayDelayDays)
		}
		periods = append(periods, SchedulePeriod{
			StartDate:   accrualStart,
			EndDate:     accrualEnd,
			PayDate:     payDate,
			AccrualDays: int(utils.Days(accrualStart, accrualEnd)),
			FixingDate:  calendar.AddBusinessDays(leg.Calendar, accrualStart, -leg.FixingDays),
		})
	}
	return periods, nil
}

func rollForward(effective, maturity time.Time, leg LegConvention) []time.Time {
	dates := []time.Time{effective}
	eom := leg.EndOfMonth && utils.IsLastDayOfMonth(effective)
	for i := 1; ; i++ {
		next := shift(effective, leg.Tenor, i, eom)
		if !next.Before(maturity) {
			break
		}
		dates = append(dates, next)
	}
	return append(dates, maturity)
}

func rollBackward(effective, maturity time.Time, leg LegConvention) []time.Time {
	dates := []time.Time{maturity}
	eom := leg.EndOfMonth && utils.IsLastDayOfMonth(maturity)
	for i := 1; ; i++ {
		prev := shift(maturity, leg.Tenor, -i, eom)
		if !prev.After(effective) {
			break
		}
		dates = append([]time.Time{prev}, dates...)
	}
	return append([]time.Time{effective}, dates...)
}

// shift moves anchor by n periods; with eom the result is pinned to month end.
func shift(anchor time.Time, p utils.Period, n int, eom bool) time.Time {
	switch p.Unit {
	case utils.UnitDays:
		return anchor.AddDate(0, 0, n*p.Length)
	case utils.UnitWeeks:
		return anchor.AddDate(0, 0, 7*n*p.Length)
	}
	d := utils.AddMonth(anchor, n*p.Months())
	if eom {
		return utils.Date(d.Year(), d.Month(), utils.DaysInMonth(d.Year(), d.Month()))
	}
	return d
}
