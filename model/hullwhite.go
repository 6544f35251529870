// Package model implements the one-factor Hull-White short-rate model fitted
// exactly to an initial discount curve.
package model

import (
	"errors"
	"fmt"
	"math"

	"github.com/meenmo/shortrate/black"
	"github.com/meenmo/shortrate/curve"
)

var (
	// ErrInvalidParameters is returned for negative or non-finite model parameters.
	ErrInvalidParameters = errors.New("invalid model parameters")
	// ErrNumericalInstability is returned when a closed-form expression is not finite.
	ErrNumericalInstability = errors.New("numerical instability")
)

// taylorThreshold is the |a*tau| below which B uses its series expansion.
const taylorThreshold = 1e-6

// Params are the free parameters: mean reversion A and volatility Sigma.
type Params struct {
	A     float64 `json:"a" yaml:"a"`
	Sigma float64 `json:"sigma" yaml:"sigma"`
}

// Validate rejects parameter sets the model is not defined for.
func (p Params) Validate() error {
	if math.IsNaN(p.A) || math.IsInf(p.A, 0) || math.IsNaN(p.Sigma) || math.IsInf(p.Sigma, 0) {
		return fmt.Errorf("a=%g sigma=%g: %w", p.A, p.Sigma, ErrInvalidParameters)
	}
	if p.Sigma < 0 {
		return fmt.Errorf("sigma=%g must be non-negative: %w", p.Sigma, ErrInvalidParameters)
	}
	return nil
}

// HullWhite is dr = (theta(t) - a r) dt + sigma dW with theta fitted to the curve.
//
// A HullWhite value is read-only except through SetParams; concurrent pricing
// should use a WithParams snapshot.
type HullWhite struct {
	curve  *curve.Curve
	params Params
	r0     float64
}

// NewHullWhite binds the model to a curve. The curve is shared, not copied.
func NewHullWhite(c *curve.Curve, p Params) (*HullWhite, error) {
	if c == nil {
		return nil, fmt.Errorf("NewHullWhite: nil curve: %w", ErrInvalidParameters)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("NewHullWhite: %w", err)
	}
	return &HullWhite{curve: c, params: p, r0: c.ForwardRate(0)}, nil
}

// Params returns the current parameters.
func (m *HullWhite) Params() Params {
	return m.params
}

// SetParams replaces the parameters in place.
func (m *HullWhite) SetParams(p Params) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("SetParams: %w", err)
	}
	m.params = p
	return nil
}

// WithParams returns an independent model on the same curve.
func (m *HullWhite) WithParams(p Params) (*HullWhite, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("WithParams: %w", err)
	}
	return &HullWhite{curve: m.curve, params: p, r0: m.r0}, nil
}

// Curve returns the term structure the model is fitted to.
func (m *HullWhite) Curve() *curve.Curve {
	return m.curve
}

// ShortRate0 is the initial short rate, the instantaneous forward f(0, 0).
func (m *HullWhite) ShortRate0() float64 {
	return m.r0
}

// B is (1 - exp(-a(T-t)))/a, with the series expansion near a = 0.
func (m *HullWhite) B(t, T float64) float64 {
	return bFactor(m.params.A, T-t)
}

func bFactor(a, tau float64) float64 {
	x := a * tau
	if math.Abs(x) < taylorThreshold {
		return tau * (1 - x/2 + x*x/6)
	}
	return -math.Expm1(-x) / a
}

// A is P(T)/P(t) exp(B f(0,t) - sigma^2/4 B(0,2t) B(t,T)^2).
func (m *HullWhite) A(t, T float64) float64 {
	pt := m.curve.DF(t)
	pT := m.curve.DF(T)
	b := m.B(t, T)
	f := m.curve.ForwardRate(t)
	s := m.params.Sigma
	v := 0.25 * s * s * b * b * bFactor(m.params.A, 2*t)
	return pT / pt * math.Exp(b*f-v)
}

// ZeroBondPrice is the time-t price of a bond paying 1 at T given short rate r.
func (m *HullWhite) ZeroBondPrice(t, T, r float64) float64 {
	return m.A(t, T) * math.Exp(-m.B(t, T)*r)
}

// Discount is ZeroBondPrice(0, T, r0); it reproduces the curve by construction.
func (m *HullWhite) Discount(T float64) float64 {
	return m.ZeroBondPrice(0, T, m.r0)
}

// DiscountBondOption prices an option expiring at maturity on a zero bond paying 1 at bondMaturity.
func (m *HullWhite) DiscountBondOption(typ black.OptionType, strike, maturity, bondMaturity float64) (float64, error) {
	return m.ForwardBondOption(typ, strike, maturity, maturity, bondMaturity)
}

// ForwardBondOption prices an option expiring at maturity to exchange strike units of
// the zero bond maturing at bondStart for the zero bond maturing at bondMaturity.
// With bondStart equal to maturity it is the plain zero-bond option.
func (m *HullWhite) ForwardBondOption(typ black.OptionType, strike, maturity, bondStart, bondMaturity float64) (float64, error) {
	if bondStart < maturity {
		return 0, fmt.Errorf("ForwardBondOption: bond starts at %g before option expiry %g: %w", bondStart, maturity, ErrInvalidParameters)
	}
	if bondMaturity < bondStart {
		return 0, fmt.Errorf("ForwardBondOption: bond matures at %g before its start %g: %w", bondMaturity, bondStart, ErrInvalidParameters)
	}
	pStart := m.curve.DF(bondStart)
	pBond := m.curve.DF(bondMaturity)
	v := m.bondStdDev(maturity, bondStart, bondMaturity)
	price := black.Formula(typ, strike*pStart, pBond, v, 1)
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, fmt.Errorf("ForwardBondOption: a=%g sigma=%g: %w", m.params.A, m.params.Sigma, ErrNumericalInstability)
	}
	return price, nil
}

// bondStdDev is the terminal std dev of ln(P(T,S)/P(T,U)) at option expiry T for a
// bond running from U to S: sigma B(U,S) exp(-a(U-T)) sqrt((1-exp(-2aT))/(2a)).
func (m *HullWhite) bondStdDev(maturity, bondStart, bondMaturity float64) float64 {
	a := m.params.A
	s := m.params.Sigma
	b := m.B(bondStart, bondMaturity) * math.Exp(-a*(bondStart-maturity))
	var varFactor float64
	if math.Abs(a*maturity) < taylorThreshold {
		varFactor = maturity
	} else {
		varFactor = -math.Expm1(-2*a*maturity) / (2 * a)
	}
	return s * b * math.Sqrt(varFactor)
}
