package scenario_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meenmo/shortrate/calibration"
	"github.com/meenmo/shortrate/cmd/hwcalib/internal/scenario"
	"github.com/meenmo/shortrate/config"
)

func TestEuriborScenario(t *testing.T) {
	t.Parallel()

	for _, src := range []scenario.CurveSource{scenario.FlatCurve, scenario.OISCurve} {
		src := src
		t.Run(string(src), func(t *testing.T) {
			t.Parallel()

			cfg := config.DefaultConfig
			rep, err := scenario.Run(context.Background(), src, &cfg)
			require.NoError(t, err)

			require.Equal(t, "2003-02-19", rep.SwapStart.Format("2006-01-02"))
			require.Equal(t, "2008-02-19", rep.SwapEnd.Format("2006-01-02"))

			// 3% is well below the forward, so paying fixed is in the money.
			require.Greater(t, rep.Dummy.NPV, 0.0)
			require.InDelta(t, 0.0, rep.ATM.NPV, 1e-8)
			require.Less(t, rep.OTM.NPV, 0.0)
			require.Greater(t, rep.ITM.NPV, 0.0)
			require.InDelta(t, rep.Dummy.FairRate, rep.ATM.FixedRate, 1e-15)
			require.InDelta(t, 1.2*rep.ATM.FixedRate, rep.OTM.FixedRate, 1e-15)
			require.Greater(t, rep.Dummy.FixedLegBPS, 0.0)
			require.Greater(t, rep.Dummy.FloatingLegBPS, 0.0)
			if src == scenario.FlatCurve {
				require.InDelta(t, 0.05, rep.Dummy.FairRate, 2e-3)
			}

			res := rep.Calibration
			require.NotNil(t, res)
			require.Len(t, res.Instruments, 5)
			require.Equal(t, "1Yx5Y", res.Instruments[0].Name)
			require.Equal(t, "5Yx1Y", res.Instruments[4].Name)
			require.Greater(t, res.Params.A, -0.2)
			require.Less(t, res.Params.A, 0.5)
			require.Greater(t, res.Params.Sigma, 0.001)
			require.Less(t, res.Params.Sigma, 0.05)
			require.False(t, math.IsNaN(res.Objective))

			require.Len(t, rep.Vols, 5)
			for _, v := range rep.Vols {
				require.Empty(t, v.VolError, v.Name)
				require.InDelta(t, v.MarketVol, v.ModelVol, 0.03, v.Name)
			}

			require.InDelta(t, rep.SwapBond.Curve, rep.SwapBond.Model, 1e-9)
			require.Len(t, rep.Bonds, 7)
			for _, b := range rep.Bonds {
				require.InDelta(t, b.Curve, b.Model, 1e-9*b.Curve, b.Label)
				require.InDelta(t, b.CurveYield, b.ModelYield, 1e-8, b.Label)
				if src == scenario.FlatCurve {
					require.InDelta(t, 0.04875825, b.CurveYield, 1e-9, b.Label)
				}
			}
		})
	}
}

func TestEuriborScenarioImpliedVolFit(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig
	cfg.Calibration.ErrorKind = calibration.ImpliedVolError.String()
	rep, err := scenario.Run(context.Background(), scenario.FlatCurve, &cfg)
	require.NoError(t, err)

	res := rep.Calibration
	require.True(t, res.Converged, res.EndCriteria.String())
	require.InDelta(t, 0.0464, res.Params.A, 0.0065)
	require.InDelta(t, 0.0058, res.Params.Sigma, 0.0004)

	// the single factor cannot fit the whole co-terminal skew; the 1Yx5Y
	// vol stays about 1.4 vol points under the market
	require.Len(t, rep.Vols, 5)
	require.Equal(t, "1Yx5Y", rep.Vols[0].Name)
	require.InDelta(t, -0.0143, rep.Vols[0].Diff, 0.0055)
	for i, v := range rep.Vols {
		require.Empty(t, v.VolError, v.Name)
		require.Less(t, math.Abs(v.Diff), 0.02, v.Name)
		require.InDelta(t, res.Instruments[i].ModelVol-res.Instruments[i].MarketVol, v.Diff, 1e-3, v.Name)
	}
}

func TestParseSource(t *testing.T) {
	t.Parallel()

	src, err := scenario.ParseSource(" OIS ")
	require.NoError(t, err)
	require.Equal(t, scenario.OISCurve, src)

	_, err = scenario.ParseSource("libor")
	require.Error(t, err)
}
