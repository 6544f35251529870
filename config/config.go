// Package config holds the numerical settings of the curve bootstrap, the
// implied volatility inversions and the Hull-White calibration.
//
// Values are layered: DefaultConfig, then an optional YAML file, then
// environment variables prefixed HWCALIB (e.g. HWCALIB_CALIBRATION_PARALLELISM).
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"github.com/meenmo/shortrate/calibration"
	"github.com/meenmo/shortrate/curve"
	"github.com/meenmo/shortrate/model"
	"github.com/meenmo/shortrate/utils"
)

// EnvPrefix namespaces environment overrides.
const EnvPrefix = "HWCALIB"

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds solver and calibration parameters.
type Config struct {
	Bootstrap BootstrapConfig `yaml:"bootstrap" envconfig:"BOOTSTRAP"`
	// ImpliedVol is the inversion used inside the calibration objective.
	ImpliedVol ImpliedVolConfig `yaml:"implied_vol" envconfig:"IMPLIED_VOL"`
	// ReportVol is the looser inversion used when printing model vols.
	ReportVol   ImpliedVolConfig  `yaml:"report_vol" envconfig:"REPORT_VOL"`
	Calibration CalibrationConfig `yaml:"calibration" envconfig:"CALIBRATION"`
}

// BootstrapConfig controls curve construction.
type BootstrapConfig struct {
	DayCount      string  `yaml:"day_count" envconfig:"DAY_COUNT" validate:"required,daycount"`
	Interpolation string  `yaml:"interpolation" envconfig:"INTERPOLATION" validate:"oneof=log-linear log-cubic monotone-log-cubic"`
	Extrapolation string  `yaml:"extrapolation" envconfig:"EXTRAPOLATION" validate:"oneof=flat-forward flat-zero"`
	Accuracy      float64 `yaml:"accuracy" envconfig:"ACCURACY" validate:"gt=0"`
	MaxIterations int     `yaml:"max_iterations" envconfig:"MAX_ITERATIONS" validate:"gt=0"`
	MaxPasses     int     `yaml:"max_passes" envconfig:"MAX_PASSES" validate:"gt=0"`
}

// ImpliedVolConfig bounds a Black volatility inversion.
type ImpliedVolConfig struct {
	Accuracy       float64 `yaml:"accuracy" envconfig:"ACCURACY" validate:"gt=0"`
	MaxEvaluations int     `yaml:"max_evaluations" envconfig:"MAX_EVALUATIONS" validate:"gt=0"`
	MinVol         float64 `yaml:"min_vol" envconfig:"MIN_VOL" validate:"gt=0"`
	MaxVol         float64 `yaml:"max_vol" envconfig:"MAX_VOL" validate:"gtfield=MinVol"`
}

// CalibrationConfig holds the Levenberg-Marquardt stopping rules and starting point.
type CalibrationConfig struct {
	ErrorKind                    string  `yaml:"error_kind" envconfig:"ERROR_KIND" validate:"oneof=PriceError RelativePriceError ImpliedVolError RelativeImpliedVolError"`
	InitialA                     float64 `yaml:"initial_a" envconfig:"INITIAL_A"`
	InitialSigma                 float64 `yaml:"initial_sigma" envconfig:"INITIAL_SIGMA" validate:"gt=0"`
	MaxIterations                int     `yaml:"max_iterations" envconfig:"MAX_ITERATIONS" validate:"gt=0"`
	MaxStationaryStateIterations int     `yaml:"max_stationary_state_iterations" envconfig:"MAX_STATIONARY_STATE_ITERATIONS" validate:"gt=0"`
	RootEpsilon                  float64 `yaml:"root_epsilon" envconfig:"ROOT_EPSILON" validate:"gte=0"`
	FunctionEpsilon              float64 `yaml:"function_epsilon" envconfig:"FUNCTION_EPSILON" validate:"gte=0"`
	GradientNormEpsilon          float64 `yaml:"gradient_norm_epsilon" envconfig:"GRADIENT_NORM_EPSILON" validate:"gte=0"`
	Parallelism                  int     `yaml:"parallelism" envconfig:"PARALLELISM" validate:"gt=0,lte=64"`
	SigmaFloor                   float64 `yaml:"sigma_floor" envconfig:"SIGMA_FLOOR" validate:"gt=0"`
}

// DefaultConfig reproduces the settings of the 2002 Euribor calibration run.
var DefaultConfig = Config{
	Bootstrap: BootstrapConfig{
		DayCount:      utils.Act365F,
		Interpolation: curve.LogCubic.String(),
		Extrapolation: curve.ExtrapolateFlatForward.String(),
		Accuracy:      1e-12,
		MaxIterations: 100,
		MaxPasses:     50,
	},
	ImpliedVol: ImpliedVolConfig{
		Accuracy:       calibration.DefaultImpliedVolSettings.Accuracy,
		MaxEvaluations: calibration.DefaultImpliedVolSettings.MaxEvaluations,
		MinVol:         calibration.DefaultImpliedVolSettings.MinVol,
		MaxVol:         calibration.DefaultImpliedVolSettings.MaxVol,
	},
	ReportVol: ImpliedVolConfig{
		Accuracy:       1e-4,
		MaxEvaluations: 1000,
		MinVol:         0.05,
		MaxVol:         0.50,
	},
	Calibration: CalibrationConfig{
		ErrorKind:                    calibration.RelativePriceError.String(),
		InitialA:                     0.1,
		InitialSigma:                 0.01,
		MaxIterations:                calibration.DefaultEndCriteria.MaxIterations,
		MaxStationaryStateIterations: calibration.DefaultEndCriteria.MaxStationaryStateIterations,
		RootEpsilon:                  calibration.DefaultEndCriteria.RootEpsilon,
		FunctionEpsilon:              calibration.DefaultEndCriteria.FunctionEpsilon,
		GradientNormEpsilon:          calibration.DefaultEndCriteria.GradientNormEpsilon,
		Parallelism:                  1,
		SigmaFloor:                   calibration.SigmaFloor,
	},
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	err := v.RegisterValidation("daycount", func(fl validator.FieldLevel) bool {
		return utils.KnownDayCount(fl.Field().String())
	})
	if err != nil {
		panic(fmt.Sprintf("config: register daycount validation: %v", err))
	}
	return v
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty) and HWCALIB_* environment variables, then validates it.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("Load: %w", err)
		}
		if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
			return nil, fmt.Errorf("Load: parse %s: %w", path, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("Load: environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("Load: %w", err)
	}
	return &cfg, nil
}

// Validate checks every field against its constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// BuildContext turns the bootstrap section into a curve.BuildContext.
func (c Config) BuildContext(valuation time.Time) (curve.BuildContext, error) {
	interp, err := curve.ParseInterpolation(c.Bootstrap.Interpolation)
	if err != nil {
		return curve.BuildContext{}, fmt.Errorf("BuildContext: %w", err)
	}
	extrap, err := curve.ParseExtrapolation(c.Bootstrap.Extrapolation)
	if err != nil {
		return curve.BuildContext{}, fmt.Errorf("BuildContext: %w", err)
	}
	return curve.BuildContext{
		ValuationDate: valuation,
		DayCount:      c.Bootstrap.DayCount,
		Interpolation: interp,
		Extrapolation: extrap,
		Accuracy:      c.Bootstrap.Accuracy,
		MaxIterations: c.Bootstrap.MaxIterations,
		MaxPasses:     c.Bootstrap.MaxPasses,
	}, nil
}

// Settings converts the section into calibration.ImpliedVolSettings.
func (v ImpliedVolConfig) Settings() calibration.ImpliedVolSettings {
	return calibration.ImpliedVolSettings{
		Accuracy:       v.Accuracy,
		MaxEvaluations: v.MaxEvaluations,
		MinVol:         v.MinVol,
		MaxVol:         v.MaxVol,
	}
}

// EndCriteria returns the stopping rules.
func (c CalibrationConfig) EndCriteria() calibration.EndCriteria {
	return calibration.EndCriteria{
		MaxIterations:                c.MaxIterations,
		MaxStationaryStateIterations: c.MaxStationaryStateIterations,
		RootEpsilon:                  c.RootEpsilon,
		FunctionEpsilon:              c.FunctionEpsilon,
		GradientNormEpsilon:          c.GradientNormEpsilon,
	}
}

// InitialParams is the starting point of the search.
func (c CalibrationConfig) InitialParams() model.Params {
	return model.Params{A: c.InitialA, Sigma: c.InitialSigma}
}

// Kind parses ErrorKind.
func (c CalibrationConfig) Kind() (calibration.ErrorKind, error) {
	return calibration.ParseErrorKind(c.ErrorKind)
}

// Options returns the calibration options implied by c, including the objective's vol inversion.
func (c Config) Options() []calibration.Option {
	return []calibration.Option{
		calibration.WithParallelism(c.Calibration.Parallelism),
		calibration.WithSigmaFloor(c.Calibration.SigmaFloor),
		calibration.WithImpliedVolSettings(c.ImpliedVol.Settings()),
	}
}
