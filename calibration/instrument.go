package calibration

import (
	"fmt"
	"strings"

	"github.com/meenmo/shortrate/model"
	"github.com/meenmo/shortrate/utils"
)

// ErrorKind selects how an instrument's residual is measured.
type ErrorKind int

const (
	// PriceError is model price minus market price.
	PriceError ErrorKind = iota + 1
	// RelativePriceError is (model - market) / market price.
	RelativePriceError
	// ImpliedVolError is implied vol of the model price minus market vol.
	ImpliedVolError
	// RelativeImpliedVolError is (implied vol - market vol) / market vol.
	RelativeImpliedVolError
)

func (k ErrorKind) String() string {
	switch k {
	case PriceError:
		return "PriceError"
	case RelativePriceError:
		return "RelativePriceError"
	case ImpliedVolError:
		return "ImpliedVolError"
	case RelativeImpliedVolError:
		return "RelativeImpliedVolError"
	default:
		return "Unknown"
	}
}

// ParseErrorKind accepts the String form, case-insensitively.
func ParseErrorKind(s string) (ErrorKind, error) {
	for _, k := range []ErrorKind{PriceError, RelativePriceError, ImpliedVolError, RelativeImpliedVolError} {
		if strings.EqualFold(s, k.String()) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("ParseErrorKind: unknown error kind %q", s)
}

// Pricer is the market/model view of one calibration instrument.
// *swaption.Helper implements it.
type Pricer interface {
	MarketValue() float64
	ModelValue(m *model.HullWhite) (float64, error)
	ImpliedVolatility(price, accuracy float64, maxEvaluations int, minVol, maxVol float64) (float64, error)
}

// Instrument is a calibration target.
type Instrument struct {
	Name      string
	Expiry    utils.Period
	Tenor     utils.Period
	MarketVol float64
	ErrorKind ErrorKind
	Pricer    Pricer
}

// ImpliedVolSettings bounds the implied volatility search used by vol residuals.
type ImpliedVolSettings struct {
	Accuracy       float64
	MaxEvaluations int
	MinVol         float64
	MaxVol         float64
}

// DefaultImpliedVolSettings is used inside the objective function.
var DefaultImpliedVolSettings = ImpliedVolSettings{
	Accuracy:       1e-12,
	MaxEvaluations: 5000,
	MinVol:         0.001,
	MaxVol:         10,
}

// Residual prices the instrument under m and measures it per its ErrorKind.
func (in Instrument) Residual(m *model.HullWhite, iv ImpliedVolSettings) (float64, error) {
	modelValue, err := in.Pricer.ModelValue(m)
	if err != nil {
		return 0, err
	}
	market := in.Pricer.MarketValue()

	switch in.ErrorKind {
	case PriceError:
		return modelValue - market, nil
	case RelativePriceError:
		return (modelValue - market) / market, nil
	case ImpliedVolError, RelativeImpliedVolError:
		vol, err := in.Pricer.ImpliedVolatility(modelValue, iv.Accuracy, iv.MaxEvaluations, iv.MinVol, iv.MaxVol)
		if err != nil {
			return 0, err
		}
		diff := vol - in.MarketVol
		if in.ErrorKind == RelativeImpliedVolError {
			return diff / in.MarketVol, nil
		}
		return diff, nil
	default:
		return 0, fmt.Errorf("instrument %s: unknown error kind %d", in.Name, in.ErrorKind)
	}
}
