package model_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/meenmo/shortrate/black"
	"github.com/meenmo/shortrate/calendar"
	"github.com/meenmo/shortrate/curve"
	"github.com/meenmo/shortrate/model"
	"github.com/meenmo/shortrate/utils"
)

var today = utils.Date(2002, time.February, 15)

func oisCurve(t *testing.T) *curve.Curve {
	t.Helper()
	quotes := map[string]float64{"3M": 0.0517, "6M": 0.0484, "1Y": 0.0436, "2Y": 0.0388, "5Y": 0.0362, "10Y": 0.0379, "30Y": 0.0411}
	helpers := make([]*curve.RateHelper, 0, len(quotes))
	for tenor, q := range quotes {
		helpers = append(helpers, curve.NewOISHelper(q, utils.MustParsePeriod(tenor), 2, calendar.TARGET, utils.Act360))
	}
	ctx := curve.DefaultBuildContext(today)
	ctx.Interpolation = curve.LogCubic
	c, err := curve.Bootstrap(ctx, helpers)
	require.NoError(t, err)
	return c
}

func TestDiscountFitsCurve(t *testing.T) {
	t.Parallel()

	flat, err := curve.NewFlatCurve(today, 0.04875825, utils.Act365F)
	require.NoError(t, err)

	for _, c := range []*curve.Curve{flat, oisCurve(t)} {
		for _, p := range []model.Params{{A: 0.1, Sigma: 0.01}, {A: 1e-9, Sigma: 0.02}, {A: -0.02, Sigma: 0.005}} {
			m, err := model.NewHullWhite(c, p)
			require.NoError(t, err)
			for _, T := range []float64{0.1, 0.5, 1, 2.5, 5, 7.3, 10, 20, 30, 40} {
				got, want := m.Discount(T), c.DF(T)
				if math.Abs(got/want-1) > 1e-10 {
					t.Fatalf("a=%g T=%g: discount got %.15f want %.15f", p.A, T, got, want)
				}
			}
		}
	}
}

func TestZeroBondPriceDecreasingInRate(t *testing.T) {
	t.Parallel()

	m, err := model.NewHullWhite(oisCurve(t), model.Params{A: 0.05, Sigma: 0.01})
	require.NoError(t, err)

	for _, tt := range []float64{0, 0.5, 1, 3, 5} {
		for _, dT := range []float64{0.25, 1, 4, 10} {
			prev := math.Inf(1)
			for r := -0.05; r <= 0.20; r += 0.005 {
				p := m.ZeroBondPrice(tt, tt+dT, r)
				if !(p < prev) {
					t.Fatalf("P(%g,%g,r) not decreasing at r=%g: %.15f >= %.15f", tt, tt+dT, r, p, prev)
				}
				prev = p
			}
		}
	}
}

func TestSmallMeanReversionIsStable(t *testing.T) {
	t.Parallel()

	c, err := curve.NewFlatCurve(today, 0.04, utils.Act365F)
	require.NoError(t, err)

	zero, err := model.NewHullWhite(c, model.Params{A: 0, Sigma: 0.01})
	require.NoError(t, err)
	tiny, err := model.NewHullWhite(c, model.Params{A: 1e-7, Sigma: 0.01})
	require.NoError(t, err)
	small, err := model.NewHullWhite(c, model.Params{A: 1e-4, Sigma: 0.01})
	require.NoError(t, err)

	require.InDelta(t, 2.0, zero.B(1, 3), 1e-15)
	require.InDelta(t, zero.B(1, 3), tiny.B(1, 3), 1e-6)
	require.InDelta(t, zero.B(1, 3), small.B(1, 3), 1e-3)

	for _, m := range []*model.HullWhite{zero, tiny, small} {
		p, err := m.DiscountBondOption(black.Put, 0.95, 2, 5)
		require.NoError(t, err)
		require.False(t, math.IsNaN(p))
		require.Greater(t, p, 0.0)
	}
	p0, _ := zero.DiscountBondOption(black.Put, 0.95, 2, 5)
	p1, _ := tiny.DiscountBondOption(black.Put, 0.95, 2, 5)
	require.InDelta(t, p0, p1, 1e-8)
}

func TestDiscountBondOptionParity(t *testing.T) {
	t.Parallel()

	c, err := curve.NewFlatCurve(today, 0.04875825, utils.Act365F)
	require.NoError(t, err)
	m, err := model.NewHullWhite(c, model.Params{A: 0.1, Sigma: 0.012})
	require.NoError(t, err)

	strike, T, S := 0.9, 1.5, 4.0
	call, err := m.DiscountBondOption(black.Call, strike, T, S)
	require.NoError(t, err)
	put, err := m.DiscountBondOption(black.Put, strike, T, S)
	require.NoError(t, err)
	require.InDelta(t, c.DF(S)-strike*c.DF(T), call-put, 1e-14)
}

func TestForwardBondOption(t *testing.T) {
	t.Parallel()

	c, err := curve.NewFlatCurve(today, 0.04875825, utils.Act365F)
	require.NoError(t, err)
	m, err := model.NewHullWhite(c, model.Params{A: 0.05, Sigma: 0.006})
	require.NoError(t, err)

	strike, T, U, S := 0.9, 1.0, 1.01, 4.0
	call, err := m.ForwardBondOption(black.Call, strike, T, U, S)
	require.NoError(t, err)
	put, err := m.ForwardBondOption(black.Put, strike, T, U, S)
	require.NoError(t, err)
	require.InDelta(t, c.DF(S)-strike*c.DF(U), call-put, 1e-14)

	// variance of ln(P(T,S)/P(T,U)) is sigma^2 int_0^T (B(t,S)-B(t,U))^2 dt
	const n = 2000
	h := T / n
	var variance float64
	for i := 0; i <= n; i++ {
		x := float64(i) * h
		d := m.B(x, S) - m.B(x, U)
		w := 2.0
		switch {
		case i == 0 || i == n:
			w = 1
		case i%2 == 1:
			w = 4
		}
		variance += w * d * d
	}
	variance *= 0.006 * 0.006 * h / 3
	want := black.Formula(black.Put, strike*c.DF(U), c.DF(S), math.Sqrt(variance), 1)
	require.InDelta(t, want, put, 1e-12)

	plain, err := m.DiscountBondOption(black.Put, strike, T, S)
	require.NoError(t, err)
	same, err := m.ForwardBondOption(black.Put, strike, T, T, S)
	require.NoError(t, err)
	require.Equal(t, plain, same)

	_, err = m.ForwardBondOption(black.Put, strike, T, 0.5, S)
	require.ErrorIs(t, err, model.ErrInvalidParameters)
}

func TestInvalidParameters(t *testing.T) {
	t.Parallel()

	c, err := curve.NewFlatCurve(today, 0.03, utils.Act365F)
	require.NoError(t, err)

	_, err = model.NewHullWhite(c, model.Params{A: 0.1, Sigma: -0.01})
	require.ErrorIs(t, err, model.ErrInvalidParameters)

	m, err := model.NewHullWhite(c, model.Params{A: 0.1, Sigma: 0.01})
	require.NoError(t, err)
	require.ErrorIs(t, m.SetParams(model.Params{A: math.NaN(), Sigma: 0.01}), model.ErrInvalidParameters)
	require.Equal(t, model.Params{A: 0.1, Sigma: 0.01}, m.Params())

	snap, err := m.WithParams(model.Params{A: 0.2, Sigma: 0.02})
	require.NoError(t, err)
	require.Equal(t, 0.1, m.Params().A, "snapshot must not alias the original")
	require.Equal(t, 0.2, snap.Params().A)
}
