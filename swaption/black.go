package swaption

import (
	"fmt"
	"math"

	"github.com/meenmo/shortrate/black"
	"github.com/meenmo/shortrate/curve"
	"github.com/meenmo/shortrate/swap"
)

// BlackEngine prices a swaption with Black-76 on the forward swap rate.
type BlackEngine struct {
	Curve *curve.Curve
}

type blackInputs struct {
	annuity, forward, strike, expiry float64
	typ                              black.OptionType
}

func (e BlackEngine) inputs(sw *Swaption) (blackInputs, error) {
	if e.Curve == nil {
		return blackInputs{}, fmt.Errorf("BlackEngine: %w", swap.ErrNilCurve)
	}
	ref := e.Curve.ReferenceDate()
	s := sw.underlying
	forward, err := s.FairRate(e.Curve, ref)
	if err != nil {
		return blackInputs{}, fmt.Errorf("BlackEngine: %w", err)
	}
	typ := black.Call
	if s.Type() == swap.Receiver {
		typ = black.Put
	}
	return blackInputs{
		annuity: s.FixedLegBPS(e.Curve, ref) / 1e-4,
		forward: forward,
		strike:  s.FixedRate(),
		expiry:  e.Curve.Time(sw.exercise),
		typ:     typ,
	}, nil
}

// Price is annuity * Black(forward swap rate, strike, vol * sqrt(T)).
func (e BlackEngine) Price(sw *Swaption, vol float64) (float64, error) {
	in, err := e.inputs(sw)
	if err != nil {
		return 0, err
	}
	return in.annuity * black.Formula(in.typ, in.strike, in.forward, vol*math.Sqrt(in.expiry), 1), nil
}

// Vega is the sensitivity of Price to vol.
func (e BlackEngine) Vega(sw *Swaption, vol float64) (float64, error) {
	in, err := e.inputs(sw)
	if err != nil {
		return 0, err
	}
	return in.annuity * black.Vega(in.strike, in.forward, vol, in.expiry, 1), nil
}
