package curve_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meenmo/shortrate/calendar"
	"github.com/meenmo/shortrate/curve"
	"github.com/meenmo/shortrate/utils"
)

func oisHelpers() []*curve.RateHelper {
	quotes := []struct {
		tenor string
		rate  float64
	}{
		{"3M", 0.0517},
		{"6M", 0.0484},
		{"1Y", 0.0436},
		{"2Y", 0.0388},
		{"5Y", 0.0362},
		{"10Y", 0.0379},
		{"30Y", 0.0411},
	}
	out := make([]*curve.RateHelper, 0, len(quotes))
	for _, q := range quotes {
		out = append(out, curve.NewOISHelper(q.rate, utils.MustParsePeriod(q.tenor), 2, calendar.TARGET, utils.Act360))
	}
	return out
}

func TestBootstrapRepricesHelpers(t *testing.T) {
	t.Parallel()

	for _, interp := range []curve.Interpolation{curve.LogLinear, curve.LogCubic, curve.MonotoneLogCubic} {
		interp := interp
		t.Run(interp.String(), func(t *testing.T) {
			t.Parallel()

			ctx := curve.DefaultBuildContext(today)
			ctx.Interpolation = interp
			helpers := oisHelpers()

			c, err := curve.Bootstrap(ctx, helpers)
			require.NoError(t, err)
			require.Len(t, c.Nodes(), len(helpers)+1)

			for _, h := range helpers {
				got, err := h.ImpliedQuote(c)
				require.NoError(t, err)
				if math.Abs(got-h.Quote) > 1e-9 {
					t.Fatalf("%s reprice mismatch: got %.12f want %.12f", h.Name(), got, h.Quote)
				}
			}

			prev := 1.0
			for _, n := range c.Nodes()[1:] {
				require.Less(t, n.DF, prev, "positive quotes give decreasing DFs")
				prev = n.DF
			}
		})
	}
}

func TestBootstrapAmbiguousNode(t *testing.T) {
	t.Parallel()

	helpers := []*curve.RateHelper{
		curve.NewOISHelper(0.04, utils.MustParsePeriod("1Y"), 2, calendar.TARGET, utils.Act360),
		curve.NewOISHelper(0.041, utils.MustParsePeriod("12M"), 2, calendar.TARGET, utils.Act360),
	}
	_, err := curve.Bootstrap(curve.DefaultBuildContext(today), helpers)
	require.ErrorIs(t, err, curve.ErrAmbiguousNode)
}

func TestBootstrapFailureNamesInstrument(t *testing.T) {
	t.Parallel()

	// a deposit quote below -100% has no positive discount factor solution
	helpers := []*curve.RateHelper{
		curve.NewDepositHelper(-5, utils.MustParsePeriod("6M"), 2, calendar.TARGET, calendar.ModifiedFollowing, utils.Act360),
	}
	_, err := curve.Bootstrap(curve.DefaultBuildContext(today), helpers)
	require.Error(t, err)
	require.ErrorIs(t, err, curve.ErrBootstrapFailure)

	var bErr *curve.BootstrapError
	require.True(t, errors.As(err, &bErr))
	require.Equal(t, "Deposit 6M", bErr.Instrument)
}

func TestDepositBootstrap(t *testing.T) {
	t.Parallel()

	h := curve.NewDepositHelper(0.05, utils.MustParsePeriod("6M"), 2, calendar.TARGET, calendar.ModifiedFollowing, utils.Act360)
	c, err := curve.Bootstrap(curve.DefaultBuildContext(today), []*curve.RateHelper{h})
	require.NoError(t, err)

	start := h.StartDate(today)
	end := h.MaturityDate(today)
	tau := utils.YearFraction(start, end, utils.Act360)
	require.InDelta(t, 1+0.05*tau, c.DFAt(start)/c.DFAt(end), 1e-10)
}
