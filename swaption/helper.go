package swaption

import (
	"fmt"
	"math"
	"time"

	"github.com/meenmo/shortrate/black"
	"github.com/meenmo/shortrate/calendar"
	"github.com/meenmo/shortrate/curve"
	"github.com/meenmo/shortrate/model"
	"github.com/meenmo/shortrate/swap"
	"github.com/meenmo/shortrate/utils"
)

// Index describes the IBOR index underlying a swaption helper.
type Index struct {
	Name       string
	Tenor      utils.Period
	FixingDays int
	Calendar   calendar.CalendarID
	Convention calendar.BusinessDayConvention
	DayCount   string
	EndOfMonth bool
}

// Euribor6M is the six-month Euribor index on TARGET.
func Euribor6M() Index {
	return Index{
		Name:       "Euribor6M",
		Tenor:      utils.NewPeriod(6, utils.UnitMonths),
		FixingDays: 2,
		Calendar:   calendar.TARGET,
		Convention: calendar.ModifiedFollowing,
		DayCount:   utils.Act360,
		EndOfMonth: true,
	}
}

// HelperSpec defines a calibration swaption quoted by Black volatility.
// Zero-valued leg fields default to the index tenor and day count.
type HelperSpec struct {
	Expiry        utils.Period
	Length        utils.Period
	Vol           float64
	Index         Index
	FixedLegTenor utils.Period
	FixedDayCount string
	FloatDayCount string
	Curve         *curve.Curve
	// Strike is the fixed rate; nil means at-the-money.
	Strike  *float64
	Nominal float64
}

// Helper is a swaption whose market price comes from a Black volatility quote.
// The underlying is a receiver swap when struck at or below the forward, a payer otherwise.
type Helper struct {
	spec      HelperSpec
	swaption  *Swaption
	engine    JamshidianEngine
	inputs    blackInputs
	marketVal float64
}

// NewHelper resolves the helper's dates against the curve's reference date.
func NewHelper(spec HelperSpec) (*Helper, error) {
	if spec.Curve == nil {
		return nil, fmt.Errorf("NewHelper: %w", swap.ErrNilCurve)
	}
	if spec.Vol <= 0 || math.IsNaN(spec.Vol) {
		return nil, fmt.Errorf("NewHelper: volatility %g must be positive: %w", spec.Vol, ErrInvalidSwaption)
	}
	if spec.FixedLegTenor.Length == 0 {
		spec.FixedLegTenor = spec.Index.Tenor
	}
	if spec.FixedDayCount == "" {
		spec.FixedDayCount = spec.Index.DayCount
	}
	if spec.FloatDayCount == "" {
		spec.FloatDayCount = spec.Index.DayCount
	}
	if spec.Nominal == 0 {
		spec.Nominal = 1
	}

	idx := spec.Index
	ref := spec.Curve.ReferenceDate()
	exercise := calendar.Advance(idx.Calendar, ref, spec.Expiry, idx.Convention, false)
	start := calendar.Advance(idx.Calendar, exercise, utils.NewPeriod(idx.FixingDays, utils.UnitDays), idx.Convention, false)
	end := calendar.Advance(idx.Calendar, start, spec.Length, idx.Convention, false)

	swapSpec := swap.VanillaSwapSpec{
		Type:          swap.Receiver,
		Nominal:       spec.Nominal,
		EffectiveDate: start,
		MaturityDate:  end,
		FixedLeg: swap.LegConvention{
			Tenor:      spec.FixedLegTenor,
			Calendar:   idx.Calendar,
			Convention: idx.Convention,
			DayCount:   spec.FixedDayCount,
			Rule:       swap.Forward,
		},
		FloatLeg: swap.LegConvention{
			Tenor:      idx.Tenor,
			Calendar:   idx.Calendar,
			Convention: idx.Convention,
			DayCount:   spec.FloatDayCount,
			Rule:       swap.Forward,
			FixingDays: idx.FixingDays,
		},
	}
	underlying, err := swap.NewVanillaSwap(swapSpec)
	if err != nil {
		return nil, fmt.Errorf("NewHelper %sx%s: %w", spec.Expiry, spec.Length, err)
	}
	forward, err := underlying.FairRate(spec.Curve, ref)
	if err != nil {
		return nil, fmt.Errorf("NewHelper %sx%s: %w", spec.Expiry, spec.Length, err)
	}
	strike := forward
	if spec.Strike != nil {
		strike = *spec.Strike
	}
	typ := swap.Receiver
	if strike > forward {
		typ = swap.Payer
	}
	underlying = underlying.WithFixedRate(strike).WithType(typ)

	sw, err := NewSwaption(underlying, exercise)
	if err != nil {
		return nil, fmt.Errorf("NewHelper %sx%s: %w", spec.Expiry, spec.Length, err)
	}
	h := &Helper{spec: spec, swaption: sw, engine: NewJamshidianEngine()}
	h.inputs, err = BlackEngine{Curve: spec.Curve}.inputs(sw)
	if err != nil {
		return nil, fmt.Errorf("NewHelper %sx%s: %w", spec.Expiry, spec.Length, err)
	}
	h.marketVal = h.BlackPrice(spec.Vol)
	return h, nil
}

// Name labels the helper as expiry x length, e.g. "1Yx5Y".
func (h *Helper) Name() string {
	return h.spec.Expiry.String() + "x" + h.spec.Length.String()
}

// Swaption returns the underlying instrument.
func (h *Helper) Swaption() *Swaption {
	return h.swaption
}

// MarketVol returns the quoted Black volatility.
func (h *Helper) MarketVol() float64 {
	return h.spec.Vol
}

// Expiry returns the option tenor.
func (h *Helper) Expiry() utils.Period {
	return h.spec.Expiry
}

// Length returns the underlying swap tenor.
func (h *Helper) Length() utils.Period {
	return h.spec.Length
}

// ExerciseDate returns the resolved exercise date.
func (h *Helper) ExerciseDate() time.Time {
	return h.swaption.exercise
}

// ForwardRate is the fair rate of the underlying swap.
func (h *Helper) ForwardRate() float64 {
	return h.inputs.forward
}

// MarketValue is the Black price at the quoted volatility.
func (h *Helper) MarketValue() float64 {
	return h.marketVal
}

// BlackPrice is the Black price at vol.
func (h *Helper) BlackPrice(vol float64) float64 {
	in := h.inputs
	return in.annuity * black.Formula(in.typ, in.strike, in.forward, vol*math.Sqrt(in.expiry), 1)
}

func (h *Helper) blackVega(vol float64) float64 {
	in := h.inputs
	return in.annuity * black.Vega(in.strike, in.forward, vol, in.expiry, 1)
}

// ModelValue prices the swaption under m with the Jamshidian engine.
func (h *Helper) ModelValue(m *model.HullWhite) (float64, error) {
	v, err := h.engine.Price(h.swaption, m)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", h.Name(), err)
	}
	return v, nil
}

// ImpliedVolatility inverts BlackPrice at price, searching [minVol, maxVol].
func (h *Helper) ImpliedVolatility(price, accuracy float64, maxEvaluations int, minVol, maxVol float64) (float64, error) {
	guess := h.spec.Vol
	vol, err := black.ImpliedVol(price, h.BlackPrice, h.blackVega, guess, accuracy, maxEvaluations, minVol, maxVol)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", h.Name(), err)
	}
	return vol, nil
}
