package swap

import (
	"fmt"
	"math"
	"reflect"
	"time"

	"github.com/meenmo/shortrate/utils"
)

const basisPoint = 1e-4

func isNilInterface(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map, reflect.Func:
		return rv.IsNil()
	default:
		return false
	}
}

// VanillaSwapSpec holds the economic terms of a fixed-vs-IBOR swap.
type VanillaSwapSpec struct {
	Type          Type
	Nominal       float64
	EffectiveDate time.Time
	MaturityDate  time.Time
	FixedRate     float64
	FixedLeg      LegConvention
	FloatLeg      LegConvention
	// Spread is added to the floating rate (decimal).
	Spread float64
}

// VanillaSwap is a single-curve fixed-vs-floating swap with generated schedules.
type VanillaSwap struct {
	spec        VanillaSwapSpec
	fixedPeriod []SchedulePeriod
	floatPeriod []SchedulePeriod
}

// NewVanillaSwap generates both leg schedules.
func NewVanillaSwap(spec VanillaSwapSpec) (*VanillaSwap, error) {
	if spec.Type != Payer && spec.Type != Receiver {
		return nil, fmt.Errorf("NewVanillaSwap: unknown swap type %d: %w", spec.Type, ErrInvalidSwap)
	}
	if spec.Nominal <= 0 {
		return nil, fmt.Errorf("NewVanillaSwap: nominal %g must be positive: %w", spec.Nominal, ErrInvalidSwap)
	}
	fixed, err := GenerateSchedule(spec.EffectiveDate, spec.MaturityDate, spec.FixedLeg)
	if err != nil {
		return nil, fmt.Errorf("NewVanillaSwap: fixed leg: %w", err)
	}
	float, err := GenerateSchedule(spec.EffectiveDate, spec.MaturityDate, spec.FloatLeg)
	if err != nil {
		return nil, fmt.Errorf("NewVanillaSwap: floating leg: %w", err)
	}
	return &VanillaSwap{spec: spec, fixedPeriod: fixed, floatPeriod: float}, nil
}

// WithFixedRate returns a copy of the swap struck at rate.
func (s *VanillaSwap) WithFixedRate(rate float64) *VanillaSwap {
	out := *s
	out.spec.FixedRate = rate
	return &out
}

// WithType returns a copy of the swap with the given direction.
func (s *VanillaSwap) WithType(t Type) *VanillaSwap {
	out := *s
	out.spec.Type = t
	return &out
}

// Spec returns the swap terms.
func (s *VanillaSwap) Spec() VanillaSwapSpec {
	return s.spec
}

// Type returns Payer or Receiver.
func (s *VanillaSwap) Type() Type {
	return s.spec.Type
}

// Nominal returns the notional amount.
func (s *VanillaSwap) Nominal() float64 {
	return s.spec.Nominal
}

// FixedRate returns the fixed coupon rate (decimal).
func (s *VanillaSwap) FixedRate() float64 {
	return s.spec.FixedRate
}

// FixedSchedule returns the fixed leg accrual periods.
func (s *VanillaSwap) FixedSchedule() []SchedulePeriod {
	return append([]SchedulePeriod(nil), s.fixedPeriod...)
}

// FloatingSchedule returns the floating leg accrual periods.
func (s *VanillaSwap) FloatingSchedule() []SchedulePeriod {
	return append([]SchedulePeriod(nil), s.floatPeriod...)
}

// FixedCoupons returns the fixed cashflows before the principal.
func (s *VanillaSwap) FixedCoupons() []Coupon {
	out := make([]Coupon, 0, len(s.fixedPeriod))
	for _, p := range s.fixedPeriod {
		accrual := utils.YearFraction(p.StartDate, p.EndDate, s.spec.FixedLeg.DayCount)
		out = append(out, Coupon{
			PayDate: p.PayDate,
			Accrual: accrual,
			Amount:  s.spec.Nominal * s.spec.FixedRate * accrual,
		})
	}
	return out
}

func forwardRate(c DiscountCurve, start, end time.Time, dayCount string) float64 {
	alpha := utils.YearFraction(start, end, dayCount)
	if alpha == 0 {
		return 0
	}
	return (c.DFAt(start)/c.DFAt(end) - 1.0) / alpha
}

// annuity is sum of nominal * accrual * DF(pay) over periods paying after the curve's reference date.
func (s *VanillaSwap) annuity(c DiscountCurve, periods []SchedulePeriod, dayCount string, after time.Time) float64 {
	var a float64
	for _, p := range periods {
		if p.PayDate.Before(after) {
			continue
		}
		a += s.spec.Nominal * utils.YearFraction(p.StartDate, p.EndDate, dayCount) * c.DFAt(p.PayDate)
	}
	return a
}

// PVByLeg returns the unsigned leg PVs and the signed net PV for the swap holder.
func (s *VanillaSwap) PVByLeg(c DiscountCurve, valuationDate time.Time) (PV, error) {
	if isNilInterface(c) {
		return PV{}, ErrNilCurve
	}
	fixedPV := s.spec.FixedRate * s.annuity(c, s.fixedPeriod, s.spec.FixedLeg.DayCount, valuationDate)

	var floatPV float64
	for _, p := range s.floatPeriod {
		if p.PayDate.Before(valuationDate) {
			continue
		}
		accrual := utils.YearFraction(p.StartDate, p.EndDate, s.spec.FloatLeg.DayCount)
		rate := forwardRate(c, p.StartDate, p.EndDate, s.spec.FloatLeg.DayCount) + s.spec.Spread
		floatPV += s.spec.Nominal * accrual * rate * c.DFAt(p.PayDate)
	}

	sign := float64(s.spec.Type)
	return PV{
		FixedLegPV:    fixedPV,
		FloatingLegPV: floatPV,
		TotalPV:       sign * (floatPV - fixedPV),
	}, nil
}

// NPV is the value to the holder: floating minus fixed for a payer.
func (s *VanillaSwap) NPV(c DiscountCurve, valuationDate time.Time) (float64, error) {
	pv, err := s.PVByLeg(c, valuationDate)
	if err != nil {
		return 0, fmt.Errorf("NPV: %w", err)
	}
	return pv.TotalPV, nil
}

// FixedLegBPS is the PV of one basis point on the fixed leg.
func (s *VanillaSwap) FixedLegBPS(c DiscountCurve, valuationDate time.Time) float64 {
	return s.annuity(c, s.fixedPeriod, s.spec.FixedLeg.DayCount, valuationDate) * basisPoint
}

// FloatingLegBPS is the PV of one basis point of spread on the floating leg.
func (s *VanillaSwap) FloatingLegBPS(c DiscountCurve, valuationDate time.Time) float64 {
	return s.annuity(c, s.floatPeriod, s.spec.FloatLeg.DayCount, valuationDate) * basisPoint
}

// FairRate is the fixed rate that sets the NPV to zero.
func (s *VanillaSwap) FairRate(c DiscountCurve, valuationDate time.Time) (float64, error) {
	pv, err := s.PVByLeg(c, valuationDate)
	if err != nil {
		return 0, fmt.Errorf("FairRate: %w", err)
	}
	bps := s.FixedLegBPS(c, valuationDate)
	if bps == 0 || math.IsNaN(bps) {
		return 0, fmt.Errorf("FairRate: fixed leg annuity is zero: %w", ErrInvalidSwap)
	}
	return pv.FloatingLegPV / (bps / basisPoint), nil
}
