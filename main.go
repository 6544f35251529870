package main

import (
	"context"
	"fmt"

	"github.com/meenmo/shortrate/calibration"
	"github.com/meenmo/shortrate/curve"
	"github.com/meenmo/shortrate/marketdata"
	"github.com/meenmo/shortrate/model"
	"github.com/meenmo/shortrate/swaption"
	"github.com/meenmo/shortrate/utils"
)

func main() {
	helpers, err := marketdata.CurveHelpers(marketdata.DefaultQuoteFeed(), marketdata.EoniaConventions())
	if err != nil {
		panic(err)
	}
	ctx := curve.DefaultBuildContext(marketdata.EuriborToday)
	ctx.Interpolation = curve.LogCubic
	c, err := curve.Bootstrap(ctx, helpers)
	if err != nil {
		panic(err)
	}

	var instruments []calibration.Instrument
	for _, cell := range marketdata.EuriborSwaptionVols().CoTerminal(utils.MustParsePeriod("6Y")) {
		h, err := swaption.NewHelper(swaption.HelperSpec{
			Expiry: cell.Expiry,
			Length: cell.Length,
			Vol:    cell.Vol,
			Index:  swaption.Euribor6M(),
			Curve:  c,
		})
		if err != nil {
			panic(err)
		}
		instruments = append(instruments, calibration.Instrument{
			Name:      h.Name(),
			Expiry:    cell.Expiry,
			Tenor:     cell.Length,
			MarketVol: cell.Vol,
			ErrorKind: calibration.RelativePriceError,
			Pricer:    h,
		})
	}

	hw, err := model.NewHullWhite(c, model.Params{A: 0.1, Sigma: 0.01})
	if err != nil {
		panic(err)
	}
	res, err := calibration.Calibrate(context.Background(), instruments, hw, calibration.DefaultEndCriteria)
	if err != nil {
		panic(err)
	}

	for _, ir := range res.Instruments {
		fmt.Printf("%-6s model vol %.5f market vol %.5f\n", ir.Name, ir.ModelVol, ir.MarketVol)
	}
	fmt.Printf("a = %.6f, sigma = %.6f (%s)\n", res.Params.A, res.Params.Sigma, res.EndCriteria)
}
