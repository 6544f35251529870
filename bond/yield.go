package bond

import (
	"fmt"
	"math"
	"time"

	"github.com/meenmo/shortrate/solver"
	"github.com/meenmo/shortrate/utils"
)

const (
	yieldFloor   = -0.05
	yieldCeiling = 0.50
	yieldGuess   = 0.025
	// the bracket expands no further than these
	yieldMin = -10.0
	yieldMax = 10.0
)

var yieldSettings = solver.Settings{Accuracy: 1e-12, MaxIterations: 100}

// Yield solves for the continuously compounded rate y with
// sum amount_k * exp(-y t_k) = price, t_k measured from settlement on dayCount.
// Cashflows on or before settlement are ignored.
func Yield(cfs []Cashflow, price float64, settlement time.Time, dayCount string) (float64, error) {
	var times, amounts []float64
	for _, cf := range cfs {
		if !cf.Date.After(settlement) {
			continue
		}
		times = append(times, utils.YearFraction(settlement, cf.Date, dayCount))
		amounts = append(amounts, cf.Amount())
	}
	if len(times) == 0 {
		return 0, fmt.Errorf("Yield: %w", ErrNoCashflows)
	}
	if !(price > 0) {
		return 0, fmt.Errorf("Yield: price %g must be positive", price)
	}

	f := func(y float64) float64 {
		p, _ := priceAndDeriv(y, times, amounts)
		return p - price
	}
	df := func(y float64) float64 {
		_, d := priceAndDeriv(y, times, amounts)
		return d
	}
	lo, hi, err := solver.Bracket(f, yieldFloor, yieldCeiling, yieldMin, yieldMax, 50)
	if err != nil {
		return 0, fmt.Errorf("Yield: price %g: %w", price, err)
	}
	y, err := solver.SafeNewton(f, df, yieldGuess, lo, hi, yieldSettings)
	if err != nil {
		return 0, fmt.Errorf("Yield: %w", err)
	}
	return y, nil
}

// priceAndDeriv returns the price at y and its derivative in y.
func priceAndDeriv(y float64, times, amounts []float64) (float64, float64) {
	var p, d float64
	for i, t := range times {
		disc := amounts[i] * math.Exp(-y*t)
		p += disc
		d -= t * disc
	}
	return p, d
}
