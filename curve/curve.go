package curve

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/interp"

	"github.com/meenmo/shortrate/utils"
)

var (
	// ErrAmbiguousNode is returned when two nodes or helpers share a maturity.
	ErrAmbiguousNode = errors.New("ambiguous curve node")
	// ErrBootstrapFailure is returned when a node's root search does not converge.
	ErrBootstrapFailure = errors.New("bootstrap failure")
	// ErrInvalidCurve is returned for malformed node sets or modes.
	ErrInvalidCurve = errors.New("invalid curve")
)

// Interpolation selects how discount factors are interpolated between nodes.
type Interpolation int

const (
	// LogLinear interpolates ln(DF) linearly (piecewise flat forwards).
	LogLinear Interpolation = iota + 1
	// LogCubic fits a natural cubic spline through ln(DF).
	LogCubic
	// MonotoneLogCubic fits a Fritsch-Butland monotone cubic through ln(DF).
	MonotoneLogCubic
)

func (i Interpolation) String() string {
	switch i {
	case LogLinear:
		return "log-linear"
	case LogCubic:
		return "log-cubic"
	case MonotoneLogCubic:
		return "monotone-log-cubic"
	default:
		return "invalid"
	}
}

// ParseInterpolation maps a config name to an Interpolation.
func ParseInterpolation(name string) (Interpolation, error) {
	switch name {
	case "log-linear", "loglinear":
		return LogLinear, nil
	case "log-cubic", "cubic":
		return LogCubic, nil
	case "monotone-log-cubic", "monotone":
		return MonotoneLogCubic, nil
	default:
		return 0, fmt.Errorf("ParseInterpolation: unknown interpolation %q: %w", name, ErrInvalidCurve)
	}
}

// Extrapolation selects how the curve extends beyond its last node.
type Extrapolation int

const (
	// ExtrapolateFlatForward keeps the instantaneous forward at the last node constant.
	ExtrapolateFlatForward Extrapolation = iota + 1
	// ExtrapolateFlatZero keeps the continuously compounded zero rate at the last node constant.
	ExtrapolateFlatZero
)

func (e Extrapolation) String() string {
	switch e {
	case ExtrapolateFlatForward:
		return "flat-forward"
	case ExtrapolateFlatZero:
		return "flat-zero"
	default:
		return "invalid"
	}
}

// ParseExtrapolation maps a config name to an Extrapolation.
func ParseExtrapolation(name string) (Extrapolation, error) {
	switch name {
	case "flat-forward":
		return ExtrapolateFlatForward, nil
	case "flat-zero":
		return ExtrapolateFlatZero, nil
	default:
		return 0, fmt.Errorf("ParseExtrapolation: unknown extrapolation %q: %w", name, ErrInvalidCurve)
	}
}

// Node is a (time, discount factor) pillar. Time is a year fraction from the reference date.
type Node struct {
	Time float64
	DF   float64
}

// Curve is an immutable discount curve over a year-fraction time axis.
//
// Between the reference date and the first non-zero node the zero rate of that
// node is held flat. Beyond the last node the chosen Extrapolation applies.
type Curve struct {
	reference time.Time
	dayCount  string
	nodes     []Node
	logDFs    []float64
	interp    Interpolation
	extrap    Extrapolation
	spline    interp.FittablePredictor
	lastFwd   float64
}

// NewCurve builds a curve from nodes sorted by time. A (0, 1) node is prepended when missing.
func NewCurve(reference time.Time, dayCount string, nodes []Node, interpolation Interpolation, extrapolation Extrapolation) (*Curve, error) {
	if reference.IsZero() {
		return nil, fmt.Errorf("NewCurve: reference date is required: %w", ErrInvalidCurve)
	}
	if interpolation < LogLinear || interpolation > MonotoneLogCubic {
		return nil, fmt.Errorf("NewCurve: interpolation must be set explicitly: %w", ErrInvalidCurve)
	}
	if extrapolation != ExtrapolateFlatForward && extrapolation != ExtrapolateFlatZero {
		return nil, fmt.Errorf("NewCurve: extrapolation must be set explicitly: %w", ErrInvalidCurve)
	}

	ns := make([]Node, 0, len(nodes)+1)
	if len(nodes) == 0 || nodes[0].Time != 0 {
		ns = append(ns, Node{Time: 0, DF: 1})
	}
	ns = append(ns, nodes...)
	if ns[0].DF != 1 {
		return nil, fmt.Errorf("NewCurve: DF(0) = %g, want 1: %w", ns[0].DF, ErrInvalidCurve)
	}
	if len(ns) < 2 {
		return nil, fmt.Errorf("NewCurve: need at least one node after the reference date: %w", ErrInvalidCurve)
	}

	logDFs := make([]float64, len(ns))
	for i, n := range ns {
		if math.IsNaN(n.DF) || math.IsInf(n.DF, 0) || n.DF <= 0 {
			return nil, fmt.Errorf("NewCurve: node %d has DF %g: %w", i, n.DF, ErrInvalidCurve)
		}
		if i > 0 {
			if n.Time == ns[i-1].Time {
				return nil, fmt.Errorf("NewCurve: duplicate node time %g: %w", n.Time, ErrAmbiguousNode)
			}
			if n.Time < ns[i-1].Time {
				return nil, fmt.Errorf("NewCurve: node times not increasing at %d: %w", i, ErrInvalidCurve)
			}
		}
		logDFs[i] = math.Log(n.DF)
	}

	c := &Curve{
		reference: reference,
		dayCount:  dayCount,
		nodes:     ns,
		logDFs:    logDFs,
		interp:    interpolation,
		extrap:    extrapolation,
	}
	if err := c.fit(); err != nil {
		return nil, fmt.Errorf("NewCurve: %w", err)
	}
	return c, nil
}

// NewCurveFromDFs creates a curve from explicitly provided discount factors keyed by date.
func NewCurveFromDFs(reference time.Time, dayCount string, dfs map[time.Time]float64, interpolation Interpolation, extrapolation Extrapolation) (*Curve, error) {
	dates := make([]time.Time, 0, len(dfs))
	for d := range dfs {
		dates = append(dates, d)
	}
	utils.SortDates(dates)

	nodes := make([]Node, 0, len(dates))
	for _, d := range dates {
		nodes = append(nodes, Node{Time: utils.YearFraction(reference, d, dayCount), DF: dfs[d]})
	}
	return NewCurve(reference, dayCount, nodes, interpolation, extrapolation)
}

// NewFlatCurve returns a curve with a constant continuously compounded rate.
func NewFlatCurve(reference time.Time, rate float64, dayCount string) (*Curve, error) {
	return NewCurve(reference, dayCount, []Node{{Time: 1, DF: math.Exp(-rate)}}, LogLinear, ExtrapolateFlatForward)
}

// fit prepares the spline (when any) over nodes after the reference node and the
// forward used for flat-forward extrapolation.
func (c *Curve) fit() error {
	n := len(c.nodes)
	if c.interp != LogLinear && n-1 >= 3 {
		xs := make([]float64, n-1)
		ys := make([]float64, n-1)
		for i := 1; i < n; i++ {
			xs[i-1] = c.nodes[i].Time
			ys[i-1] = c.logDFs[i]
		}
		var sp interp.FittablePredictor
		if c.interp == LogCubic {
			sp = &interp.NaturalCubic{}
		} else {
			sp = &interp.FritschButland{}
		}
		if err := sp.Fit(xs, ys); err != nil {
			return fmt.Errorf("fit %s: %w", c.interp, err)
		}
		c.spline = sp
	}

	if d, ok := c.spline.(interp.DerivativePredictor); ok {
		c.lastFwd = -d.PredictDerivative(c.nodes[n-1].Time)
		return nil
	}
	c.lastFwd = (c.logDFs[n-2] - c.logDFs[n-1]) / (c.nodes[n-1].Time - c.nodes[n-2].Time)
	return nil
}

// interpLogDF returns ln DF(t) for t within [0, last node].
func (c *Curve) interpLogDF(t float64) float64 {
	first := c.nodes[1]
	if t <= first.Time {
		return c.logDFs[1] * t / first.Time
	}
	if c.spline != nil {
		return c.spline.Predict(t)
	}
	i0, i1 := findBracket(c.nodes, t)
	t0, t1 := c.nodes[i0].Time, c.nodes[i1].Time
	w := (t - t0) / (t1 - t0)
	return c.logDFs[i0] + w*(c.logDFs[i1]-c.logDFs[i0])
}

func (c *Curve) logDF(t float64) float64 {
	if t <= 0 {
		// flat zero rate behind the reference date as well
		return c.logDFs[1] * t / c.nodes[1].Time
	}
	last := len(c.nodes) - 1
	tn := c.nodes[last].Time
	if t <= tn {
		return c.interpLogDF(t)
	}
	switch c.extrap {
	case ExtrapolateFlatZero:
		return c.logDFs[last] * t / tn
	default:
		return c.logDFs[last] - c.lastFwd*(t-tn)
	}
}

// DF returns the discount factor at year fraction t.
func (c *Curve) DF(t float64) float64 {
	if t == 0 {
		return 1
	}
	return math.Exp(c.logDF(t))
}

// DFAt returns the discount factor at a date.
func (c *Curve) DFAt(d time.Time) float64 {
	return c.DF(c.Time(d))
}

// ZeroRate returns the continuously compounded zero rate at t (decimal).
func (c *Curve) ZeroRate(t float64) float64 {
	if t <= 0 {
		return c.ForwardRate(0)
	}
	return -c.logDF(t) / t
}

// ZeroRateAt returns continuously-compounded zero rate (in percent) at a date.
func (c *Curve) ZeroRateAt(d time.Time) float64 {
	return utils.RoundTo(c.ZeroRate(c.Time(d))*100, 12)
}

// ForwardRate returns the instantaneous forward rate at t by central difference.
func (c *Curve) ForwardRate(t float64) float64 {
	const dt = 1e-4
	t1 := math.Max(t-dt/2, 0)
	t2 := t1 + dt
	return (c.logDF(t1) - c.logDF(t2)) / dt
}

// Time converts a date to the curve's year-fraction axis.
func (c *Curve) Time(d time.Time) float64 {
	return utils.YearFraction(c.reference, d, c.dayCount)
}

// ReferenceDate returns the date at which DF = 1.
func (c *Curve) ReferenceDate() time.Time {
	return c.reference
}

// DayCount returns the curve's day count convention.
func (c *Curve) DayCount() string {
	return c.dayCount
}

// Interpolation returns the interpolation mode.
func (c *Curve) Interpolation() Interpolation {
	return c.interp
}

// Extrapolation returns the extrapolation mode.
func (c *Curve) Extrapolation() Extrapolation {
	return c.extrap
}

// Nodes returns a copy of the curve pillars, including the reference node.
func (c *Curve) Nodes() []Node {
	out := make([]Node, len(c.nodes))
	copy(out, c.nodes)
	return out
}

// MaxTime returns the time of the last node.
func (c *Curve) MaxTime() float64 {
	return c.nodes[len(c.nodes)-1].Time
}
