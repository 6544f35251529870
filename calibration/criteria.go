package calibration

// EndCriteriaType records which stopping rule ended a calibration.
type EndCriteriaType int

const (
	NoCriteria EndCriteriaType = iota
	MaxIterations
	StationaryPoint
	StationaryFunctionValue
	StationaryFunctionAccuracy
	ZeroGradientNorm
)

func (t EndCriteriaType) String() string {
	switch t {
	case MaxIterations:
		return "MaxIterations"
	case StationaryPoint:
		return "StationaryPoint"
	case StationaryFunctionValue:
		return "StationaryFunctionValue"
	case StationaryFunctionAccuracy:
		return "StationaryFunctionAccuracy"
	case ZeroGradientNorm:
		return "ZeroGradientNorm"
	default:
		return "None"
	}
}

// MarshalText encodes the type by name.
func (t EndCriteriaType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Converged reports whether the type is a successful stop.
func (t EndCriteriaType) Converged() bool {
	return t != NoCriteria && t != MaxIterations
}

// EndCriteria are the stopping rules; the first one met ends the run.
type EndCriteria struct {
	MaxIterations                int     `yaml:"max_iterations" validate:"gt=0"`
	MaxStationaryStateIterations int     `yaml:"max_stationary_state_iterations" validate:"gt=0"`
	RootEpsilon                  float64 `yaml:"root_epsilon" validate:"gte=0"`
	FunctionEpsilon              float64 `yaml:"function_epsilon" validate:"gte=0"`
	GradientNormEpsilon          float64 `yaml:"gradient_norm_epsilon" validate:"gte=0"`
}

// DefaultEndCriteria matches EndCriteria(400, 100, 1e-8, 1e-8, 1e-8).
var DefaultEndCriteria = EndCriteria{
	MaxIterations:                400,
	MaxStationaryStateIterations: 100,
	RootEpsilon:                  1e-8,
	FunctionEpsilon:              1e-8,
	GradientNormEpsilon:          1e-8,
}
