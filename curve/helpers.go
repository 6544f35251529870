package curve

import (
	"fmt"
	"time"

	"github.com/meenmo/shortrate/calendar"
	"github.com/meenmo/shortrate/utils"
)

// HelperKind enumerates the instruments a curve can be bootstrapped from.
type HelperKind int

const (
	// KindDeposit is a simply compounded money-market deposit.
	KindDeposit HelperKind = iota + 1
	// KindOIS is an overnight indexed swap quoted at its fair fixed rate.
	KindOIS
)

func (k HelperKind) String() string {
	switch k {
	case KindDeposit:
		return "Deposit"
	case KindOIS:
		return "OIS"
	default:
		return "Unknown"
	}
}

// RateHelper is a quoted instrument that pins one curve node.
// Quote is a decimal rate (0.0517 for 5.17%).
type RateHelper struct {
	Kind           HelperKind
	Quote          float64
	Tenor          utils.Period
	SettlementDays int
	Calendar       calendar.CalendarID
	Convention     calendar.BusinessDayConvention
	DayCount       string
	// FixedFrequency is the OIS fixed leg period; zero means annual.
	FixedFrequency utils.Period
}

// NewDepositHelper returns a simply compounded deposit helper.
func NewDepositHelper(quote float64, tenor utils.Period, fixingDays int, cal calendar.CalendarID, bdc calendar.BusinessDayConvention, dayCount string) *RateHelper {
	return &RateHelper{
		Kind:           KindDeposit,
		Quote:          quote,
		Tenor:          tenor,
		SettlementDays: fixingDays,
		Calendar:       cal,
		Convention:     bdc,
		DayCount:       dayCount,
	}
}

// NewOISHelper returns an OIS helper with an annual fixed leg, modified following.
func NewOISHelper(quote float64, tenor utils.Period, settlementDays int, cal calendar.CalendarID, fixedDayCount string) *RateHelper {
	return &RateHelper{
		Kind:           KindOIS,
		Quote:          quote,
		Tenor:          tenor,
		SettlementDays: settlementDays,
		Calendar:       cal,
		Convention:     calendar.ModifiedFollowing,
		DayCount:       fixedDayCount,
		FixedFrequency: utils.NewPeriod(1, utils.UnitYears),
	}
}

// Name labels the helper in errors and reports, e.g. "OIS 5Y".
func (h *RateHelper) Name() string {
	return h.Kind.String() + " " + h.Tenor.String()
}

// StartDate is the spot date implied by the reference date.
func (h *RateHelper) StartDate(reference time.Time) time.Time {
	return calendar.Advance(h.Calendar, reference, utils.NewPeriod(h.SettlementDays, utils.UnitDays), calendar.Following, false)
}

// MaturityDate is the pillar date the helper determines.
func (h *RateHelper) MaturityDate(reference time.Time) time.Time {
	start := h.StartDate(reference)
	return calendar.Advance(h.Calendar, start, h.Tenor, h.Convention, false)
}

// ImpliedQuote returns the rate the helper would quote on c.
func (h *RateHelper) ImpliedQuote(c *Curve) (float64, error) {
	r, err := h.resolve(c.ReferenceDate())
	if err != nil {
		return 0, err
	}
	return r.impliedQuote(c), nil
}

type accrualPeriod struct {
	payment time.Time
	accrual float64
}

// resolvedHelper carries the dates of a helper fixed against a reference date.
type resolvedHelper struct {
	helper   *RateHelper
	start    time.Time
	maturity time.Time
	periods  []accrualPeriod
}

func (h *RateHelper) validate() error {
	if h.Kind != KindDeposit && h.Kind != KindOIS {
		return fmt.Errorf("%s: unknown helper kind", h.Name())
	}
	if h.Tenor.Length <= 0 {
		return fmt.Errorf("%s: tenor must be positive", h.Name())
	}
	if h.SettlementDays < 0 {
		return fmt.Errorf("%s: negative settlement days", h.Name())
	}
	if !utils.KnownDayCount(h.DayCount) {
		return fmt.Errorf("%s: unknown day count %q", h.Name(), h.DayCount)
	}
	return nil
}

func (h *RateHelper) resolve(reference time.Time) (*resolvedHelper, error) {
	if err := h.validate(); err != nil {
		return nil, err
	}
	r := &resolvedHelper{
		helper:   h,
		start:    h.StartDate(reference),
		maturity: h.MaturityDate(reference),
	}
	if h.Kind == KindOIS {
		r.periods = h.fixedPeriods(r.start)
	}
	return r, nil
}

// fixedPeriods rolls the fixed leg backward from maturity so coupons align to it.
// Tenors up to one period pay once at maturity.
func (h *RateHelper) fixedPeriods(start time.Time) []accrualPeriod {
	months := h.FixedFrequency.Months()
	if months <= 0 {
		months = 12
	}
	unadjMaturity := h.Tenor.AddTo(start)
	unadjusted := []time.Time{unadjMaturity}
	for i := 1; ; i++ {
		d := utils.AddMonth(unadjMaturity, -i*months)
		if !d.After(start) {
			break
		}
		unadjusted = append([]time.Time{d}, unadjusted...)
	}
	unadjusted = append([]time.Time{start}, unadjusted...)

	periods := make([]accrualPeriod, 0, len(unadjusted)-1)
	for i := 0; i < len(unadjusted)-1; i++ {
		accStart := calendar.AdjustWith(h.Calendar, unadjusted[i], h.Convention)
		accEnd := calendar.AdjustWith(h.Calendar, unadjusted[i+1], h.Convention)
		periods = append(periods, accrualPeriod{
			payment: accEnd,
			accrual: utils.YearFraction(accStart, accEnd, h.DayCount),
		})
	}
	return periods
}

func (r *resolvedHelper) impliedQuote(c *Curve) float64 {
	dfStart := c.DFAt(r.start)
	dfEnd := c.DFAt(r.maturity)
	switch r.helper.Kind {
	case KindDeposit:
		tau := utils.YearFraction(r.start, r.maturity, r.helper.DayCount)
		return (dfStart/dfEnd - 1) / tau
	default:
		// compounded overnight leg telescopes to DF(start) - DF(end)
		var annuity float64
		for _, p := range r.periods {
			annuity += p.accrual * c.DFAt(p.payment)
		}
		return (dfStart - dfEnd) / annuity
	}
}
