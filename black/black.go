// Package black implements the Black-76 formula on forwards and its inversion.
package black

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/meenmo/shortrate/solver"
)

// ErrNoImpliedVolatility is returned when no volatility in the search range reproduces the price.
var ErrNoImpliedVolatility = errors.New("no implied volatility")

// OptionType is the payoff direction.
type OptionType int

const (
	Call OptionType = 1
	Put  OptionType = -1
)

func (o OptionType) String() string {
	if o == Put {
		return "Put"
	}
	return "Call"
}

// Formula returns the discounted Black price of an option on a forward.
// stdDev is the total standard deviation vol*sqrt(T).
func Formula(typ OptionType, strike, forward, stdDev, discount float64) float64 {
	w := float64(typ)
	if stdDev <= 0 {
		return discount * math.Max(w*(forward-strike), 0)
	}
	if strike <= 0 {
		if typ == Call {
			return discount * forward
		}
		return 0
	}
	d1 := math.Log(forward/strike)/stdDev + 0.5*stdDev
	d2 := d1 - stdDev
	n := distuv.UnitNormal
	return discount * w * (forward*n.CDF(w*d1) - strike*n.CDF(w*d2))
}

// StdDevDerivative is the sensitivity of Formula to stdDev; it does not depend on the option type.
func StdDevDerivative(strike, forward, stdDev, discount float64) float64 {
	if stdDev <= 0 || strike <= 0 {
		return 0
	}
	d1 := math.Log(forward/strike)/stdDev + 0.5*stdDev
	return discount * forward * distuv.UnitNormal.Prob(d1)
}

// Vega is the sensitivity of Formula to the annualized volatility.
func Vega(strike, forward, vol, expiry, discount float64) float64 {
	sqrtT := math.Sqrt(expiry)
	return StdDevDerivative(strike, forward, vol*sqrtT, discount) * sqrtT
}

// ImpliedVol inverts an increasing price(vol) function on [lo, hi] with a
// safeguarded Newton search. vega is d price / d vol.
func ImpliedVol(target float64, price, vega func(vol float64) float64, guess, precision float64, maxIter int, lo, hi float64) (float64, error) {
	if lo >= hi {
		return 0, fmt.Errorf("ImpliedVol: invalid bounds [%g, %g]: %w", lo, hi, ErrNoImpliedVolatility)
	}
	pLo, pHi := price(lo), price(hi)
	if target < pLo || target > pHi {
		return 0, fmt.Errorf("ImpliedVol: price %.10g outside [%.10g, %.10g] for vol in [%g, %g]: %w",
			target, pLo, pHi, lo, hi, ErrNoImpliedVolatility)
	}

	f := func(v float64) float64 { return price(v) - target }
	vol, err := solver.SafeNewton(f, vega, guess, lo, hi, solver.Settings{Accuracy: precision, MaxIterations: maxIter})
	if err != nil {
		return 0, fmt.Errorf("ImpliedVol: %v: %w", err, ErrNoImpliedVolatility)
	}
	return vol, nil
}
