// Package request implements the JSON-in/JSON-out calibration command.
package request

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/meenmo/shortrate/calibration"
	"github.com/meenmo/shortrate/cmd/hwcalib/internal/scenario"
	"github.com/meenmo/shortrate/config"
	"github.com/meenmo/shortrate/curve"
	"github.com/meenmo/shortrate/marketdata"
	"github.com/meenmo/shortrate/model"
	"github.com/meenmo/shortrate/utils"
)

// CalibrationInput defines the JSON input schema.
//
// Conventions:
// - rates and vols are decimals (0.0436 means 4.36%)
// - exactly one of flat_rate and ois_quotes must be set
type CalibrationInput struct {
	ReferenceDate string             `json:"reference_date"` // "2002-02-15"
	FlatRate      *float64           `json:"flat_rate"`      // continuously compounded, ACT/365F
	OISQuotes     map[string]float64 `json:"ois_quotes"`     // tenor -> par rate
	Swaptions     []SwaptionQuote    `json:"swaptions"`
	ErrorKind     string             `json:"error_kind"`    // optional, defaults to config
	Initial       *model.Params      `json:"initial"`       // optional, defaults to config
	Interpolation string             `json:"interpolation"` // optional, defaults to config
}

// SwaptionQuote is one calibration target.
type SwaptionQuote struct {
	Expiry utils.Period `json:"expiry"`
	Length utils.Period `json:"length"`
	Vol    float64      `json:"vol"`
}

// CalibrationOutput is the calibration result plus any failure message.
type CalibrationOutput struct {
	*calibration.Result
	Error string `json:"error,omitempty"`
}

// Run reads a CalibrationInput from -input or stdin and writes a CalibrationOutput.
func Run(ctx context.Context, cfg *config.Config, path string, stdin io.Reader, stdout io.Writer) int {
	inputBytes, err := readInput(stdin, path)
	if err != nil {
		return writeError(stdout, fmt.Sprintf("failed to read input: %v", err))
	}
	var input CalibrationInput
	if err := json.Unmarshal(inputBytes, &input); err != nil {
		return writeError(stdout, fmt.Sprintf("failed to parse JSON input: %v", err))
	}
	res, err := Calibrate(ctx, cfg, input)
	if err != nil {
		return writeError(stdout, err.Error())
	}
	outputBytes, _ := json.Marshal(CalibrationOutput{Result: res})
	fmt.Fprintln(stdout, string(outputBytes))
	return 0
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path != "" {
		return os.ReadFile(path)
	}
	return io.ReadAll(stdin)
}

func writeError(stdout io.Writer, msg string) int {
	outputBytes, _ := json.Marshal(CalibrationOutput{Error: msg})
	fmt.Fprintln(stdout, string(outputBytes))
	return 1
}

// Calibrate builds the curve and swaption helpers described by input and fits the model.
func Calibrate(ctx context.Context, cfg *config.Config, input CalibrationInput) (*calibration.Result, error) {
	ref, err := utils.ParseDate(input.ReferenceDate)
	if err != nil {
		return nil, fmt.Errorf("invalid reference_date: %v", err)
	}
	if len(input.Swaptions) == 0 {
		return nil, fmt.Errorf("swaptions is required")
	}

	c, err := buildCurve(ref, cfg, input)
	if err != nil {
		return nil, err
	}

	kind, err := cfg.Calibration.Kind()
	if strings.TrimSpace(input.ErrorKind) != "" {
		kind, err = calibration.ParseErrorKind(input.ErrorKind)
	}
	if err != nil {
		return nil, err
	}

	cells := make([]marketdata.Cell, len(input.Swaptions))
	for i, q := range input.Swaptions {
		cells[i] = marketdata.Cell{Expiry: q.Expiry, Length: q.Length, Vol: q.Vol}
	}
	instruments, err := scenario.CalibrationSet(c, cells, kind)
	if err != nil {
		return nil, err
	}

	initial := cfg.Calibration.InitialParams()
	if input.Initial != nil {
		initial = *input.Initial
	}
	hw, err := model.NewHullWhite(c, initial)
	if err != nil {
		return nil, err
	}
	return calibration.Calibrate(ctx, instruments, hw, cfg.Calibration.EndCriteria(), cfg.Options()...)
}

func buildCurve(ref time.Time, cfg *config.Config, input CalibrationInput) (*curve.Curve, error) {
	switch {
	case input.FlatRate != nil && len(input.OISQuotes) > 0:
		return nil, fmt.Errorf("set only one of flat_rate and ois_quotes")
	case input.FlatRate != nil:
		return curve.NewFlatCurve(ref, *input.FlatRate, utils.Act365F)
	case len(input.OISQuotes) > 0:
		quotes := make([]marketdata.RateQuote, 0, len(input.OISQuotes))
		for tenor, v := range input.OISQuotes {
			p, err := utils.ParsePeriod(tenor)
			if err != nil {
				return nil, fmt.Errorf("invalid ois_quotes tenor: %v", err)
			}
			quotes = append(quotes, marketdata.RateQuote{Tenor: p, Value: v, Kind: marketdata.QuoteOIS})
		}
		helpers, err := marketdata.CurveHelpers(marketdata.NewMapQuoteFeed(quotes), marketdata.EoniaConventions())
		if err != nil {
			return nil, err
		}
		bc, err := cfg.BuildContext(ref)
		if err != nil {
			return nil, err
		}
		if input.Interpolation != "" {
			if bc.Interpolation, err = curve.ParseInterpolation(input.Interpolation); err != nil {
				return nil, err
			}
		}
		return curve.Bootstrap(bc, helpers)
	default:
		return nil, fmt.Errorf("one of flat_rate and ois_quotes is required")
	}
}
