// Package bond prices deterministic bond cashflows off a discount curve or a
// Hull-White model.
package bond

import (
	"errors"
	"fmt"
	"time"

	"github.com/meenmo/shortrate/curve"
	"github.com/meenmo/shortrate/model"
	"github.com/meenmo/shortrate/swap"
	"github.com/meenmo/shortrate/utils"
)

// ErrNoCashflows is returned when nothing is left to price.
var ErrNoCashflows = errors.New("no cashflows")

// ZeroCoupon returns the single redemption of a zero-coupon bond.
func ZeroCoupon(maturity time.Time, face float64) []Cashflow {
	return []Cashflow{{Date: maturity, Principal: face}}
}

// FixedRate generates the coupons of a bullet bond on the given leg convention,
// with the face value redeemed on the last payment date.
func FixedRate(effective, maturity time.Time, couponRate, face float64, leg swap.LegConvention) ([]Cashflow, error) {
	periods, err := swap.GenerateSchedule(effective, maturity, leg)
	if err != nil {
		return nil, fmt.Errorf("FixedRate: %w", err)
	}
	cfs := make([]Cashflow, 0, len(periods))
	for _, p := range periods {
		cfs = append(cfs, Cashflow{
			Date:   p.PayDate,
			Coupon: face * couponRate * utils.YearFraction(p.StartDate, p.EndDate, leg.DayCount),
		})
	}
	cfs[len(cfs)-1].Principal = face
	return cfs, nil
}

// PriceOnCurve discounts the cashflows paid after the curve's reference date.
func PriceOnCurve(cfs []Cashflow, c *curve.Curve) (float64, error) {
	return price(cfs, c.ReferenceDate(), func(d time.Time) float64 { return c.DFAt(d) })
}

// PriceOnModel discounts the cashflows with the model's zero-bond prices at time 0.
func PriceOnModel(cfs []Cashflow, m *model.HullWhite) (float64, error) {
	c := m.Curve()
	return price(cfs, c.ReferenceDate(), func(d time.Time) float64 { return m.Discount(c.Time(d)) })
}

// PriceAtRate is the model value at time t (year fraction) of the cashflows paid
// after t, conditional on the short rate being r.
func PriceAtRate(cfs []Cashflow, m *model.HullWhite, t, r float64) (float64, error) {
	c := m.Curve()
	var pv float64
	n := 0
	for _, cf := range cfs {
		T := c.Time(cf.Date)
		if T <= t {
			continue
		}
		pv += cf.Amount() * m.ZeroBondPrice(t, T, r)
		n++
	}
	if n == 0 {
		return 0, fmt.Errorf("PriceAtRate: nothing paid after t=%g: %w", t, ErrNoCashflows)
	}
	return pv, nil
}

func price(cfs []Cashflow, reference time.Time, df func(time.Time) float64) (float64, error) {
	var pv float64
	n := 0
	for _, cf := range cfs {
		if !cf.Date.After(reference) {
			continue
		}
		pv += cf.Amount() * df(cf.Date)
		n++
	}
	if n == 0 {
		return 0, fmt.Errorf("price: all cashflows on or before %s: %w", utils.FormatDate(reference), ErrNoCashflows)
	}
	return pv, nil
}
