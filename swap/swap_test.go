package swap_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/meenmo/shortrate/calendar"
	"github.com/meenmo/shortrate/curve"
	"github.com/meenmo/shortrate/swap"
	"github.com/meenmo/shortrate/utils"
)

var (
	today      = utils.Date(2002, time.February, 15)
	settlement = utils.Date(2002, time.February, 19)
)

func forwardStartingSwap(t *testing.T, rate float64) *swap.VanillaSwap {
	t.Helper()
	start := calendar.Advance(calendar.TARGET, settlement, utils.NewPeriod(1, utils.UnitYears), calendar.ModifiedFollowing, false)
	maturity := utils.AddMonth(start, 60)
	s, err := swap.NewVanillaSwap(swap.VanillaSwapSpec{
		Type:          swap.Payer,
		Nominal:       1000,
		EffectiveDate: start,
		MaturityDate:  maturity,
		FixedRate:     rate,
		FixedLeg:      swap.EURFixedLeg(),
		FloatLeg:      swap.EURIBOR6MLeg(),
	})
	require.NoError(t, err)
	return s
}

func TestForwardSchedule(t *testing.T) {
	t.Parallel()

	s := forwardStartingSwap(t, 0.03)
	fixed := s.FixedSchedule()
	require.Len(t, fixed, 5)
	require.Equal(t, utils.Date(2003, time.February, 19), fixed[0].StartDate)
	require.Equal(t, utils.Date(2008, time.February, 19), fixed[4].EndDate)
	require.Len(t, s.FloatingSchedule(), 10)

	// 2005-02-19 is a Saturday; the unadjusted fixed leg keeps it
	require.Equal(t, utils.Date(2005, time.February, 19), fixed[1].EndDate)
	for _, c := range s.FixedCoupons() {
		require.InDelta(t, 1.0, c.Accrual, 1e-15)
		require.InDelta(t, 30.0, c.Amount, 1e-12)
	}
}

func TestBackwardScheduleFrontStub(t *testing.T) {
	t.Parallel()

	leg := swap.LegConvention{
		Tenor:      utils.NewPeriod(1, utils.UnitYears),
		Calendar:   calendar.TARGET,
		Convention: calendar.ModifiedFollowing,
		DayCount:   utils.Act360,
		Rule:       swap.Backward,
	}
	periods, err := swap.GenerateSchedule(utils.Date(2002, time.February, 19), utils.Date(2004, time.August, 19), leg)
	require.NoError(t, err)
	require.Len(t, periods, 3)
	require.Equal(t, utils.Date(2002, time.August, 19), periods[0].EndDate)
	require.Equal(t, utils.Date(2004, time.August, 19), periods[2].EndDate)

	_, err = swap.GenerateSchedule(utils.Date(2004, time.August, 19), utils.Date(2002, time.February, 19), leg)
	require.ErrorIs(t, err, swap.ErrInvalidSwap)
}

func TestParSwapHasZeroNPV(t *testing.T) {
	t.Parallel()

	flat, err := curve.NewFlatCurve(today, 0.04875825, utils.Act365F)
	require.NoError(t, err)

	s := forwardStartingSwap(t, 0.03)
	fair, err := s.FairRate(flat, today)
	require.NoError(t, err)
	require.Greater(t, fair, 0.04)
	require.Less(t, fair, 0.06)

	for _, typ := range []swap.Type{swap.Payer, swap.Receiver} {
		atm := s.WithFixedRate(fair).WithType(typ)
		npv, err := atm.NPV(flat, today)
		require.NoError(t, err)
		if math.Abs(npv) > 1e-10 {
			t.Fatalf("%s par swap NPV = %.3e, want 0", typ, npv)
		}
	}

	// the dummy 3% payer swap is in the money when rates are near 5%
	npv, err := s.NPV(flat, today)
	require.NoError(t, err)
	require.Greater(t, npv, 0.0)

	bps := s.FixedLegBPS(flat, today)
	require.InDelta(t, (fair-0.03)/1e-4*bps, npv, 1e-9)
	require.Greater(t, s.FloatingLegBPS(flat, today), 0.0)
}

func TestNilCurve(t *testing.T) {
	t.Parallel()

	var c *curve.Curve
	_, err := forwardStartingSwap(t, 0.03).NPV(c, today)
	require.ErrorIs(t, err, swap.ErrNilCurve)
}
