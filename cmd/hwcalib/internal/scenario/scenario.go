// Package scenario replays the 2002 Euribor Hull-White calibration: curve,
// forward-starting payer swap, co-terminal swaption fit and bond comparison.
package scenario

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang/glog"

	"github.com/meenmo/shortrate/bond"
	"github.com/meenmo/shortrate/calendar"
	"github.com/meenmo/shortrate/calibration"
	"github.com/meenmo/shortrate/config"
	"github.com/meenmo/shortrate/curve"
	"github.com/meenmo/shortrate/marketdata"
	"github.com/meenmo/shortrate/model"
	"github.com/meenmo/shortrate/swap"
	"github.com/meenmo/shortrate/swaption"
	"github.com/meenmo/shortrate/utils"
)

// CurveSource selects the discount curve the scenario runs on.
type CurveSource string

const (
	// FlatCurve is the 4.875825% flat forward curve quoted from settlement.
	FlatCurve CurveSource = "flat"
	// OISCurve is bootstrapped from the Eonia quotes as of today.
	OISCurve CurveSource = "ois"
)

const (
	swapNominal    = 1000.0
	dummyFixedRate = 0.03
)

// coTerminalMaturity is expiry plus length of every calibration swaption.
var coTerminalMaturity = utils.MustParsePeriod("6Y")

// SwapQuote is the single-curve valuation of one payer swap.
type SwapQuote struct {
	FixedRate      float64 `json:"fixed_rate"`
	NPV            float64 `json:"npv"`
	FairRate       float64 `json:"fair_rate"`
	FixedLegBPS    float64 `json:"fixed_leg_bps"`
	FloatingLegBPS float64 `json:"floating_leg_bps"`
}

// BondComparison contrasts curve and model zero-bond prices for one maturity.
// Yields are continuously compounded ACT/365F from the curve reference date.
type BondComparison struct {
	Label      string    `json:"label"`
	Maturity   time.Time `json:"maturity"`
	Curve      float64   `json:"curve"`
	Model      float64   `json:"model"`
	CurveYield float64   `json:"curve_yield"`
	ModelYield float64   `json:"model_yield"`
}

// VolComparison is the report-grade implied vol of one calibrated swaption.
type VolComparison struct {
	Name      string  `json:"name"`
	ModelVol  float64 `json:"model_vol"`
	MarketVol float64 `json:"market_vol"`
	Diff      float64 `json:"diff"`
	VolError  string  `json:"vol_error,omitempty"`
}

// Report collects every figure the scenario prints.
type Report struct {
	Source      CurveSource         `json:"source"`
	Today       time.Time           `json:"today"`
	Settlement  time.Time           `json:"settlement"`
	SwapStart   time.Time           `json:"swap_start"`
	SwapEnd     time.Time           `json:"swap_end"`
	Dummy       SwapQuote           `json:"dummy"`
	ATM         SwapQuote           `json:"atm"`
	OTM         SwapQuote           `json:"otm"`
	ITM         SwapQuote           `json:"itm"`
	Calibration *calibration.Result `json:"calibration"`
	Vols        []VolComparison     `json:"vols"`
	SwapBond    BondComparison      `json:"swap_bond"`
	Bonds       []BondComparison    `json:"bonds"`
}

// ParseSource accepts "flat" or "ois".
func ParseSource(s string) (CurveSource, error) {
	switch CurveSource(strings.ToLower(strings.TrimSpace(s))) {
	case FlatCurve:
		return FlatCurve, nil
	case OISCurve:
		return OISCurve, nil
	default:
		return "", fmt.Errorf("unknown curve %q (use flat or ois)", s)
	}
}

// BuildCurve constructs the scenario's discount curve.
func BuildCurve(src CurveSource, cfg *config.Config) (*curve.Curve, error) {
	switch src {
	case FlatCurve:
		return curve.NewFlatCurve(marketdata.EuriborSettlement, marketdata.EuriborFlatRate, utils.Act365F)
	case OISCurve:
		helpers, err := marketdata.CurveHelpers(marketdata.DefaultQuoteFeed(), marketdata.EoniaConventions())
		if err != nil {
			return nil, err
		}
		ctx, err := cfg.BuildContext(marketdata.EuriborToday)
		if err != nil {
			return nil, err
		}
		return curve.Bootstrap(ctx, helpers)
	default:
		return nil, fmt.Errorf("BuildCurve: unknown curve %q", src)
	}
}

// CalibrationSet builds one Jamshidian-priced swaption helper per vol cell.
func CalibrationSet(c *curve.Curve, cells []marketdata.Cell, kind calibration.ErrorKind) ([]calibration.Instrument, error) {
	out := make([]calibration.Instrument, 0, len(cells))
	for _, cell := range cells {
		h, err := swaption.NewHelper(swaption.HelperSpec{
			Expiry: cell.Expiry,
			Length: cell.Length,
			Vol:    cell.Vol,
			Index:  swaption.Euribor6M(),
			Curve:  c,
		})
		if err != nil {
			return nil, fmt.Errorf("CalibrationSet: %w", err)
		}
		out = append(out, calibration.Instrument{
			Name:      h.Name(),
			Expiry:    cell.Expiry,
			Tenor:     cell.Length,
			MarketVol: cell.Vol,
			ErrorKind: kind,
			Pricer:    h,
		})
	}
	return out, nil
}

// Run executes the full scenario on src.
func Run(ctx context.Context, src CurveSource, cfg *config.Config) (*Report, error) {
	c, err := BuildCurve(src, cfg)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: curve: %w", src, err)
	}
	rep := &Report{Source: src, Today: marketdata.EuriborToday, Settlement: marketdata.EuriborSettlement}

	payer, err := forwardPayer()
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", src, err)
	}
	rep.SwapStart = payer.Spec().EffectiveDate
	rep.SwapEnd = payer.Spec().MaturityDate

	if rep.Dummy, err = quoteSwap(payer, c); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", src, err)
	}
	atm := rep.Dummy.FairRate
	for _, q := range []struct {
		dst  *SwapQuote
		rate float64
	}{{&rep.ATM, atm}, {&rep.OTM, atm * 1.2}, {&rep.ITM, atm * 0.8}} {
		if *q.dst, err = quoteSwap(payer.WithFixedRate(q.rate), c); err != nil {
			return nil, fmt.Errorf("scenario %s: %w", src, err)
		}
	}

	kind, err := cfg.Calibration.Kind()
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", src, err)
	}
	cells := marketdata.EuriborSwaptionVols().CoTerminal(coTerminalMaturity)
	instruments, err := CalibrationSet(c, cells, kind)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", src, err)
	}
	hw, err := model.NewHullWhite(c, cfg.Calibration.InitialParams())
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", src, err)
	}
	rep.Calibration, err = calibration.Calibrate(ctx, instruments, hw, cfg.Calibration.EndCriteria(), cfg.Options()...)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: calibration: %w", src, err)
	}
	glog.V(1).Infof("scenario %s: run %s a=%.6f sigma=%.6f", src, rep.Calibration.RunID, hw.Params().A, hw.Params().Sigma)

	rep.Vols = reportVols(instruments, rep.Calibration, cfg.ReportVol.Settings())

	if rep.SwapBond, err = compareBond("swap end", rep.SwapEnd, c, hw); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", src, err)
	}
	for _, q := range marketdata.EoniaQuotes {
		mat := calendar.Advance(calendar.TARGET, marketdata.EuriborToday, q.Tenor, calendar.ModifiedFollowing, false)
		b, err := compareBond(q.Tenor.String(), mat, c, hw)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", src, err)
		}
		rep.Bonds = append(rep.Bonds, b)
	}
	return rep, nil
}

// forwardPayer is the 1Y-forward 5Y payer swap on nominal 1000.
func forwardPayer() (*swap.VanillaSwap, error) {
	start := calendar.Advance(calendar.TARGET, marketdata.EuriborSettlement, utils.MustParsePeriod("1Y"), calendar.ModifiedFollowing, false)
	end := calendar.Advance(calendar.TARGET, start, utils.MustParsePeriod("5Y"), calendar.ModifiedFollowing, false)
	return swap.NewVanillaSwap(swap.VanillaSwapSpec{
		Type:          swap.Payer,
		Nominal:       swapNominal,
		EffectiveDate: start,
		MaturityDate:  end,
		FixedRate:     dummyFixedRate,
		FixedLeg:      swap.EURFixedLeg(),
		FloatLeg:      swap.EURIBOR6MLeg(),
	})
}

func quoteSwap(s *swap.VanillaSwap, c *curve.Curve) (SwapQuote, error) {
	ref := c.ReferenceDate()
	npv, err := s.NPV(c, ref)
	if err != nil {
		return SwapQuote{}, err
	}
	fair, err := s.FairRate(c, ref)
	if err != nil {
		return SwapQuote{}, err
	}
	return SwapQuote{
		FixedRate:      s.FixedRate(),
		NPV:            npv,
		FairRate:       fair,
		FixedLegBPS:    s.FixedLegBPS(c, ref),
		FloatingLegBPS: s.FloatingLegBPS(c, ref),
	}, nil
}

func reportVols(instruments []calibration.Instrument, res *calibration.Result, iv calibration.ImpliedVolSettings) []VolComparison {
	out := make([]VolComparison, len(instruments))
	for i, in := range instruments {
		ir := res.Instruments[i]
		vc := VolComparison{Name: in.Name, MarketVol: in.MarketVol}
		vol, err := in.Pricer.ImpliedVolatility(ir.ModelPrice, iv.Accuracy, iv.MaxEvaluations, iv.MinVol, iv.MaxVol)
		if err != nil {
			vc.VolError = err.Error()
		} else {
			vc.ModelVol = vol
			vc.Diff = vol - in.MarketVol
		}
		out[i] = vc
	}
	return out
}

func compareBond(label string, maturity time.Time, c *curve.Curve, m *model.HullWhite) (BondComparison, error) {
	cfs := bond.ZeroCoupon(maturity, 1)
	onCurve, err := bond.PriceOnCurve(cfs, c)
	if err != nil {
		return BondComparison{}, fmt.Errorf("bond %s: %w", label, err)
	}
	onModel, err := bond.PriceOnModel(cfs, m)
	if err != nil {
		return BondComparison{}, fmt.Errorf("bond %s: %w", label, err)
	}
	ref := c.ReferenceDate()
	curveYield, err := bond.Yield(cfs, onCurve, ref, utils.Act365F)
	if err != nil {
		return BondComparison{}, fmt.Errorf("bond %s: %w", label, err)
	}
	modelYield, err := bond.Yield(cfs, onModel, ref, utils.Act365F)
	if err != nil {
		return BondComparison{}, fmt.Errorf("bond %s: %w", label, err)
	}
	return BondComparison{
		Label:      label,
		Maturity:   maturity,
		Curve:      onCurve,
		Model:      onModel,
		CurveYield: curveYield,
		ModelYield: modelYield,
	}, nil
}
