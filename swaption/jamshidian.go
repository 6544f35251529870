package swaption

import (
	"fmt"

	"github.com/meenmo/shortrate/black"
	"github.com/meenmo/shortrate/model"
	"github.com/meenmo/shortrate/solver"
	"github.com/meenmo/shortrate/swap"
)

// JamshidianEngine prices a swaption as a portfolio of zero-bond options struck
// at the bond prices implied by the critical short rate.
type JamshidianEngine struct {
	// Settings controls the critical-rate search.
	Settings solver.Settings
	// MinRate and MaxRate bound the bracket expansion.
	MinRate, MaxRate float64
}

// NewJamshidianEngine returns an engine searching r* in [-10, 10] to 1e-12.
func NewJamshidianEngine() JamshidianEngine {
	return JamshidianEngine{
		Settings: solver.Settings{Accuracy: 1e-12, MaxIterations: 10000},
		MinRate:  -10,
		MaxRate:  10,
	}
}

// CriticalRate solves sum(amt_i * P(T_ex, t_i, r) / P(T_ex, T_s, r)) = nominal for r,
// where T_s is the swap start.
func (e JamshidianEngine) CriticalRate(sw *Swaption, m *model.HullWhite) (float64, error) {
	exTime, valueTime, times, amounts := sw.bondCashflows(m.Curve())
	return e.criticalRate(m, sw.underlying.Nominal(), exTime, valueTime, times, amounts)
}

func (e JamshidianEngine) criticalRate(m *model.HullWhite, nominal, exTime, valueTime float64, times, amounts []float64) (float64, error) {
	if len(times) == 0 {
		return 0, fmt.Errorf("criticalRate: no fixed payments after exercise: %w", ErrCriticalRateNotFound)
	}
	f := func(r float64) float64 {
		start := m.ZeroBondPrice(exTime, valueTime, r)
		v := -nominal
		for i, t := range times {
			v += amounts[i] * m.ZeroBondPrice(exTime, t, r) / start
		}
		return v
	}
	lo, hi, err := solver.Bracket(f, -0.05, 0.15, e.MinRate, e.MaxRate, 100)
	if err != nil {
		return 0, fmt.Errorf("criticalRate: %v: %w", err, ErrCriticalRateNotFound)
	}
	r, err := solver.Brent(f, lo, hi, e.Settings)
	if err != nil {
		return 0, fmt.Errorf("criticalRate: %v: %w", err, ErrCriticalRateNotFound)
	}
	return r, nil
}

// Price returns the Hull-White value of the swaption. A payer swaption is a put
// on the fixed-coupon bond forward-starting at the swap start, a receiver
// swaption a call.
func (e JamshidianEngine) Price(sw *Swaption, m *model.HullWhite) (float64, error) {
	exTime, valueTime, times, amounts := sw.bondCashflows(m.Curve())
	rStar, err := e.criticalRate(m, sw.underlying.Nominal(), exTime, valueTime, times, amounts)
	if err != nil {
		return 0, fmt.Errorf("JamshidianEngine.Price: %w", err)
	}

	w := black.Call
	if sw.Type() == swap.Payer {
		w = black.Put
	}
	start := m.ZeroBondPrice(exTime, valueTime, rStar)
	var value float64
	for i, t := range times {
		strike := m.ZeroBondPrice(exTime, t, rStar) / start
		zbo, err := m.ForwardBondOption(w, strike, exTime, valueTime, t)
		if err != nil {
			return 0, fmt.Errorf("JamshidianEngine.Price: %w", err)
		}
		value += amounts[i] * zbo
	}
	return value, nil
}
