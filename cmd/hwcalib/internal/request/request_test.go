package request_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meenmo/shortrate/calibration"
	"github.com/meenmo/shortrate/cmd/hwcalib/internal/request"
	"github.com/meenmo/shortrate/config"
	"github.com/meenmo/shortrate/model"
	"github.com/meenmo/shortrate/utils"
)

func quotes() []request.SwaptionQuote {
	return []request.SwaptionQuote{
		{Expiry: utils.MustParsePeriod("1Y"), Length: utils.MustParsePeriod("5Y"), Vol: 0.1148},
		{Expiry: utils.MustParsePeriod("3Y"), Length: utils.MustParsePeriod("3Y"), Vol: 0.1070},
		{Expiry: utils.MustParsePeriod("5Y"), Length: utils.MustParsePeriod("1Y"), Vol: 0.1000},
	}
}

func TestCalibrateOnOISQuotes(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig
	res, err := request.Calibrate(context.Background(), &cfg, request.CalibrationInput{
		ReferenceDate: "2002-02-15",
		OISQuotes: map[string]float64{
			"3M": 0.0517, "6M": 0.0484, "1Y": 0.0436, "2Y": 0.0388,
			"5Y": 0.0362, "10Y": 0.0379, "30Y": 0.0411,
		},
		Swaptions:     quotes(),
		ErrorKind:     calibration.ImpliedVolError.String(),
		Initial:       &model.Params{A: 0.05, Sigma: 0.008},
		Interpolation: "monotone-log-cubic",
	})
	require.NoError(t, err)
	require.Len(t, res.Instruments, 3)
	require.Greater(t, res.Params.Sigma, 0.0)
	for _, ir := range res.Instruments {
		require.InDelta(t, ir.MarketVol, ir.ModelVol, 0.03, ir.Name)
	}
}

func TestCalibrateRejectsAmbiguousCurve(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig
	rate := 0.04
	_, err := request.Calibrate(context.Background(), &cfg, request.CalibrationInput{
		ReferenceDate: "2002-02-15",
		FlatRate:      &rate,
		OISQuotes:     map[string]float64{"1Y": 0.04},
		Swaptions:     quotes(),
	})
	require.ErrorContains(t, err, "only one")

	_, err = request.Calibrate(context.Background(), &cfg, request.CalibrationInput{
		ReferenceDate: "15/02/2002",
		FlatRate:      &rate,
		Swaptions:     quotes(),
	})
	require.ErrorContains(t, err, "reference_date")
}
