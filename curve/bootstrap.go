package curve

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/golang/glog"

	"github.com/meenmo/shortrate/solver"
	"github.com/meenmo/shortrate/utils"
)

// BuildContext carries everything a bootstrap needs besides the quotes.
// It replaces any notion of a process-wide evaluation date.
type BuildContext struct {
	ValuationDate time.Time
	DayCount      string
	Interpolation Interpolation
	Extrapolation Extrapolation
	// Accuracy is the tolerance on each node's discount factor.
	Accuracy float64
	// MaxIterations bounds each node's root search.
	MaxIterations int
	// MaxPasses bounds the outer sweeps needed by non-local interpolations.
	MaxPasses int
}

// DefaultBuildContext returns a log-linear, flat-forward context on ACT/365F.
func DefaultBuildContext(valuation time.Time) BuildContext {
	return BuildContext{
		ValuationDate: valuation,
		DayCount:      utils.Act365F,
		Interpolation: LogLinear,
		Extrapolation: ExtrapolateFlatForward,
		Accuracy:      1e-12,
		MaxIterations: 100,
		MaxPasses:     50,
	}
}

// BootstrapError reports the helper whose node could not be solved.
type BootstrapError struct {
	Instrument string
	Err        error
}

func (e *BootstrapError) Error() string {
	return fmt.Sprintf("bootstrap failed at %s: %v", e.Instrument, e.Err)
}

func (e *BootstrapError) Unwrap() []error {
	return []error{ErrBootstrapFailure, e.Err}
}

type pillar struct {
	r    *resolvedHelper
	date time.Time
	time float64
}

// Bootstrap solves one node per helper so that every helper reprices its quote.
//
// Helpers are sorted by maturity; two helpers on the same pillar date are rejected.
// Log-linear curves are solved in a single sequential pass. Cubic interpolations
// couple nodes, so passes repeat until no DF moves by more than the accuracy.
func Bootstrap(ctx BuildContext, helpers []*RateHelper) (*Curve, error) {
	if ctx.ValuationDate.IsZero() {
		return nil, fmt.Errorf("Bootstrap: valuation date is required: %w", ErrInvalidCurve)
	}
	if len(helpers) == 0 {
		return nil, fmt.Errorf("Bootstrap: no rate helpers: %w", ErrInvalidCurve)
	}
	settings := solver.Settings{Accuracy: ctx.Accuracy, MaxIterations: ctx.MaxIterations}
	if settings.Accuracy <= 0 {
		settings.Accuracy = solver.DefaultSettings.Accuracy
	}
	if settings.MaxIterations <= 0 {
		settings.MaxIterations = solver.DefaultSettings.MaxIterations
	}
	maxPasses := ctx.MaxPasses
	if maxPasses <= 0 {
		maxPasses = 50
	}

	pillars := make([]pillar, 0, len(helpers))
	for _, h := range helpers {
		r, err := h.resolve(ctx.ValuationDate)
		if err != nil {
			return nil, fmt.Errorf("Bootstrap: %w", err)
		}
		pillars = append(pillars, pillar{
			r:    r,
			date: r.maturity,
			time: utils.YearFraction(ctx.ValuationDate, r.maturity, ctx.DayCount),
		})
	}
	sort.SliceStable(pillars, func(i, j int) bool { return pillars[i].date.Before(pillars[j].date) })
	for i := 1; i < len(pillars); i++ {
		if pillars[i].date.Equal(pillars[i-1].date) {
			return nil, fmt.Errorf("Bootstrap: %s and %s both mature on %s: %w",
				pillars[i-1].r.helper.Name(), pillars[i].r.helper.Name(), utils.FormatDate(pillars[i].date), ErrAmbiguousNode)
		}
	}
	if pillars[0].time <= 0 {
		return nil, fmt.Errorf("Bootstrap: %s matures on or before the valuation date: %w", pillars[0].r.helper.Name(), ErrInvalidCurve)
	}

	// initial guess: each node at its own quote, continuously compounded
	nodes := make([]Node, len(pillars))
	prevDF, prevT := 1.0, 0.0
	for i, p := range pillars {
		nodes[i] = Node{Time: p.time, DF: prevDF * math.Exp(-p.r.helper.Quote*(p.time-prevT))}
		prevDF, prevT = nodes[i].DF, p.time
	}

	build := func(ns []Node) (*Curve, error) {
		return NewCurve(ctx.ValuationDate, ctx.DayCount, ns, ctx.Interpolation, ctx.Extrapolation)
	}

	for pass := 0; pass < maxPasses; pass++ {
		previous := make([]Node, len(nodes))
		copy(previous, nodes)

		for i, p := range pillars {
			// the first sweep only sees nodes up to i; later sweeps see the whole curve
			active := nodes[:i+1]
			if pass > 0 {
				active = nodes
			}
			trial := make([]Node, len(active))
			copy(trial, active)

			var evalErr error
			objective := func(df float64) float64 {
				trial[i].DF = df
				c, err := build(trial)
				if err != nil {
					evalErr = err
					return math.NaN()
				}
				return p.r.impliedQuote(c) - p.r.helper.Quote
			}

			guess := nodes[i].DF
			lo, hi, err := solver.Bracket(objective, guess*0.99, guess*1.01, 1e-12, math.Inf(1), 60)
			if err == nil {
				nodes[i].DF, err = solver.Brent(objective, lo, hi, settings)
			}
			if evalErr != nil {
				err = evalErr
			}
			if err != nil {
				return nil, &BootstrapError{Instrument: p.r.helper.Name(), Err: err}
			}
		}

		change := maxAbsDiff(nodes, previous)
		glog.V(1).Infof("curve bootstrap pass %d: %d nodes, max DF change %.3e", pass, len(nodes), change)
		if ctx.Interpolation == LogLinear || (pass > 0 && change <= settings.Accuracy) {
			return build(nodes)
		}
	}
	return nil, &BootstrapError{
		Instrument: pillars[len(pillars)-1].r.helper.Name(),
		Err:        fmt.Errorf("no convergence after %d passes", maxPasses),
	}
}
