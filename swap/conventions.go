package swap

import (
	"github.com/meenmo/shortrate/calendar"
	"github.com/meenmo/shortrate/utils"
)

// EURFixedLeg is the annual 30E/360 unadjusted fixed leg of a EUR IBOR swap.
func EURFixedLeg() LegConvention {
	return LegConvention{
		Tenor:      utils.NewPeriod(1, utils.UnitYears),
		Calendar:   calendar.TARGET,
		Convention: calendar.Unadjusted,
		DayCount:   utils.E30360,
		Rule:       Forward,
	}
}

// EURIBOR6MLeg is the semiannual ACT/360 floating leg fixing two days before accrual start.
func EURIBOR6MLeg() LegConvention {
	return LegConvention{
		Tenor:      utils.NewPeriod(6, utils.UnitMonths),
		Calendar:   calendar.TARGET,
		Convention: calendar.ModifiedFollowing,
		DayCount:   utils.Act360,
		Rule:       Forward,
		FixingDays: 2,
	}
}
