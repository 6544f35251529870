package bond_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/meenmo/shortrate/bond"
	"github.com/meenmo/shortrate/curve"
	"github.com/meenmo/shortrate/model"
	"github.com/meenmo/shortrate/swap"
	"github.com/meenmo/shortrate/utils"
)

var today = utils.Date(2002, time.February, 15)

func TestModelMatchesCurve(t *testing.T) {
	t.Parallel()

	c, err := curve.NewFlatCurve(today, 0.04875825, utils.Act365F)
	require.NoError(t, err)
	m, err := model.NewHullWhite(c, model.Params{A: 0.05, Sigma: 0.008})
	require.NoError(t, err)

	for _, years := range []int{1, 5, 10, 30} {
		cfs := bond.ZeroCoupon(utils.AddMonth(today, 12*years), 100)
		mkt, err := bond.PriceOnCurve(cfs, c)
		require.NoError(t, err)
		hw, err := bond.PriceOnModel(cfs, m)
		require.NoError(t, err)
		if math.Abs(hw/mkt-1) > 1e-10 {
			t.Fatalf("%dY zero: model %.12f vs curve %.12f", years, hw, mkt)
		}
	}
}

func TestFixedRateBond(t *testing.T) {
	t.Parallel()

	c, err := curve.NewFlatCurve(today, 0.04, utils.Act365F)
	require.NoError(t, err)
	m, err := model.NewHullWhite(c, model.Params{A: 0.1, Sigma: 0.01})
	require.NoError(t, err)

	effective := utils.Date(2003, time.February, 19)
	cfs, err := bond.FixedRate(effective, utils.Date(2008, time.February, 19), 0.05, 100, swap.EURFixedLeg())
	require.NoError(t, err)
	require.Len(t, cfs, 5)
	require.Equal(t, 100.0, cfs[4].Principal)
	require.InDelta(t, 105.0, cfs[4].Amount(), 1e-12)

	// higher short rate at t lowers the conditional bond value
	t1 := c.Time(effective)
	lo, err := bond.PriceAtRate(cfs, m, t1, 0.02)
	require.NoError(t, err)
	hi, err := bond.PriceAtRate(cfs, m, t1, 0.06)
	require.NoError(t, err)
	require.Greater(t, lo, hi)

	_, err = bond.PriceAtRate(cfs, m, 50, 0.04)
	require.ErrorIs(t, err, bond.ErrNoCashflows)
	_, err = bond.PriceOnCurve(bond.ZeroCoupon(today, 100), c)
	require.ErrorIs(t, err, bond.ErrNoCashflows)
}

func TestYieldInvertsCurvePrice(t *testing.T) {
	t.Parallel()

	c, err := curve.NewFlatCurve(today, 0.04875825, utils.Act365F)
	require.NoError(t, err)

	zero := bond.ZeroCoupon(utils.AddMonth(today, 60), 1)
	p, err := bond.PriceOnCurve(zero, c)
	require.NoError(t, err)
	y, err := bond.Yield(zero, p, today, utils.Act365F)
	require.NoError(t, err)
	require.InDelta(t, 0.04875825, y, 1e-10)

	coupons, err := bond.FixedRate(today, utils.Date(2012, time.February, 15), 0.06, 100, swap.EURFixedLeg())
	require.NoError(t, err)
	p, err = bond.PriceOnCurve(coupons, c)
	require.NoError(t, err)
	require.Greater(t, p, 100.0)
	y, err = bond.Yield(coupons, p, today, utils.Act365F)
	require.NoError(t, err)
	require.InDelta(t, 0.04875825, y, 1e-10, "flat curve yield equals the curve rate")

	tau := utils.YearFraction(today, zero[0].Date, utils.Act365F)
	for _, want := range []float64{-0.20, 0.80, 3.0} {
		y, err = bond.Yield(zero, math.Exp(-want*tau), today, utils.Act365F)
		require.NoError(t, err, want)
		require.InDelta(t, want, y, 1e-10)
	}

	_, err = bond.Yield(zero, 0, today, utils.Act365F)
	require.Error(t, err)
	_, err = bond.Yield(zero, p, utils.Date(2030, time.January, 1), utils.Act365F)
	require.ErrorIs(t, err, bond.ErrNoCashflows)
}
