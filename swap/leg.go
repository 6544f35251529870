package swap

import (
	"github.com/meenmo/shortrate/calendar"
	"github.com/meenmo/shortrate/utils"
)

// DateGeneration selects the direction in which schedule dates are rolled.
type DateGeneration string

const (
	// Forward rolls from the effective date; any stub falls at the end.
	Forward DateGeneration = "FORWARD"
	// Backward rolls from maturity; any stub falls at the start.
	Backward DateGeneration = "BACKWARD"
)

// LegConvention captures the schedule and accrual settings of one swap leg.
type LegConvention struct {
	Tenor        utils.Period
	Calendar     calendar.CalendarID
	Convention   calendar.BusinessDayConvention
	DayCount     string
	Rule         DateGeneration
	EndOfMonth   bool
	FixingDays   int
	PayDelayDays int
}
