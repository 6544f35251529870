// Package calibration fits Hull-White parameters to a set of market
// instruments with a Levenberg-Marquardt least-squares search.
package calibration

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/golang/glog"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/meenmo/shortrate/model"
)

// ErrNoInstruments is returned when Calibrate is called with an empty set.
var ErrNoInstruments = errors.New("no calibration instruments")

const (
	// SigmaFloor keeps the diffusion strictly positive at every trial point.
	SigmaFloor = 1e-8

	jacobianStep = 1e-4 // sqrt(1e-8)
	initialDamp  = 1e-3
	maxDamp      = 1e16
)

type options struct {
	parallelism int
	iv          ImpliedVolSettings
	sigmaFloor  float64
}

// Option customizes a calibration run.
type Option func(*options)

// WithParallelism prices up to n instruments concurrently per evaluation.
func WithParallelism(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.parallelism = n
		}
	}
}

// WithImpliedVolSettings overrides the inversion used by vol residuals.
func WithImpliedVolSettings(s ImpliedVolSettings) Option {
	return func(o *options) { o.iv = s }
}

// WithSigmaFloor overrides SigmaFloor.
func WithSigmaFloor(f float64) Option {
	return func(o *options) {
		if f > 0 {
			o.sigmaFloor = f
		}
	}
}

// InstrumentResult is the fit of one instrument at the final parameters.
type InstrumentResult struct {
	Name        string  `json:"name"`
	ModelPrice  float64 `json:"model_price"`
	MarketPrice float64 `json:"market_price"`
	ModelVol    float64 `json:"model_vol"`
	MarketVol   float64 `json:"market_vol"`
	Residual    float64 `json:"residual"`
	VolError    string  `json:"vol_error,omitempty"`
}

// Result is the read-only outcome of a calibration.
type Result struct {
	RunID               string             `json:"run_id"`
	Params              model.Params       `json:"params"`
	Iterations          int                `json:"iterations"`
	FunctionEvaluations int                `json:"function_evaluations"`
	Objective           float64            `json:"objective"`
	EndCriteria         EndCriteriaType    `json:"end_criteria"`
	Converged           bool               `json:"converged"`
	Instruments         []InstrumentResult `json:"instruments"`
}

type evaluator struct {
	ctx         context.Context
	instruments []Instrument
	base        *model.HullWhite
	opts        options
	evals       int
}

func (e *evaluator) project(x []float64) []float64 {
	return []float64{x[0], math.Max(x[1], e.opts.sigmaFloor)}
}

// residuals prices every instrument on an immutable snapshot of the model at x.
func (e *evaluator) residuals(x []float64) ([]float64, error) {
	e.evals++
	snap, err := e.base.WithParams(model.Params{A: x[0], Sigma: x[1]})
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(e.instruments))
	g, gctx := errgroup.WithContext(e.ctx)
	g.SetLimit(e.opts.parallelism)
	for i := range e.instruments {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r, err := e.instruments[i].Residual(snap, e.opts.iv)
			if err != nil {
				return fmt.Errorf("instrument %s: %w", e.instruments[i].Name, err)
			}
			out[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (e *evaluator) jacobian(x, r []float64) (*mat.Dense, error) {
	J := mat.NewDense(len(r), len(x), nil)
	for j := range x {
		h := jacobianStep * math.Max(math.Abs(x[j]), 1e-4)
		xh := append([]float64(nil), x...)
		xh[j] += h
		rh, err := e.residuals(xh)
		if err != nil {
			return nil, err
		}
		for i := range r {
			J.Set(i, j, (rh[i]-r[i])/h)
		}
	}
	return J, nil
}

// Calibrate fits m's parameters to the instruments and leaves m at the best point found.
//
// Hitting MaxIterations is not an error: the best parameters are returned with
// Converged false. Any pricing failure at a trial point aborts the run.
func Calibrate(ctx context.Context, instruments []Instrument, m *model.HullWhite, crit EndCriteria, opts ...Option) (*Result, error) {
	if len(instruments) == 0 {
		return nil, fmt.Errorf("Calibrate: %w", ErrNoInstruments)
	}
	if m == nil {
		return nil, fmt.Errorf("Calibrate: nil model: %w", model.ErrInvalidParameters)
	}
	if crit.MaxIterations <= 0 {
		return nil, fmt.Errorf("Calibrate: max iterations must be positive, got %d", crit.MaxIterations)
	}
	o := options{parallelism: 1, iv: DefaultImpliedVolSettings, sigmaFloor: SigmaFloor}
	for _, opt := range opts {
		opt(&o)
	}
	e := &evaluator{ctx: ctx, instruments: instruments, base: m, opts: o}

	p0 := m.Params()
	x := e.project([]float64{p0.A, p0.Sigma})
	r, err := e.residuals(x)
	if err != nil {
		return nil, fmt.Errorf("Calibrate: %w", err)
	}
	ssr := floats.Dot(r, r)

	lambda := initialDamp
	stationary := 0
	end := NoCriteria
	iter := 0

	for end == NoCriteria {
		if iter >= crit.MaxIterations {
			end = MaxIterations
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("Calibrate: %w", err)
		}
		iter++

		if ssr <= crit.FunctionEpsilon {
			end = StationaryFunctionAccuracy
			break
		}

		J, err := e.jacobian(x, r)
		if err != nil {
			return nil, fmt.Errorf("Calibrate: %w", err)
		}
		rv := mat.NewVecDense(len(r), r)
		var grad mat.VecDense
		grad.MulVec(J.T(), rv)
		if floats.Norm(grad.RawVector().Data, math.Inf(1)) <= crit.GradientNormEpsilon {
			end = ZeroGradientNorm
			break
		}
		var jtj mat.Dense
		jtj.Mul(J.T(), J)

		accepted := false
		var xNew, rNew []float64
		var ssrNew float64
		var step []float64
		for !accepted && lambda < maxDamp {
			a := mat.DenseCopyOf(&jtj)
			for k := 0; k < len(x); k++ {
				d := jtj.At(k, k)
				if d == 0 {
					d = 1
				}
				a.Set(k, k, d*(1+lambda))
			}
			var delta mat.VecDense
			if err := delta.SolveVec(a, &grad); err != nil {
				lambda *= 10
				continue
			}
			delta.ScaleVec(-1, &delta)

			xNew = e.project([]float64{x[0] + delta.AtVec(0), x[1] + delta.AtVec(1)})
			rNew, err = e.residuals(xNew)
			if err != nil {
				return nil, fmt.Errorf("Calibrate: %w", err)
			}
			ssrNew = floats.Dot(rNew, rNew)
			if ssrNew < ssr {
				accepted = true
				lambda /= 10
				step = []float64{xNew[0] - x[0], xNew[1] - x[1]}
			} else {
				lambda *= 10
			}
		}
		if !accepted {
			end = StationaryPoint
			break
		}

		if math.Abs(ssr-ssrNew) < crit.FunctionEpsilon {
			stationary++
		} else {
			stationary = 0
		}
		rootStop := floats.Norm(step, 2) <= crit.RootEpsilon*(floats.Norm(x, 2)+crit.RootEpsilon)
		x, r, ssr = xNew, rNew, ssrNew
		glog.V(1).Infof("calibration iter %d: a=%.8f sigma=%.8f ssr=%.6e lambda=%.1e", iter, x[0], x[1], ssr, lambda)

		switch {
		case ssr <= crit.FunctionEpsilon:
			end = StationaryFunctionAccuracy
		case rootStop:
			end = StationaryPoint
		case stationary >= crit.MaxStationaryStateIterations:
			end = StationaryFunctionValue
		}
	}

	best := model.Params{A: x[0], Sigma: x[1]}
	if err := m.SetParams(best); err != nil {
		return nil, fmt.Errorf("Calibrate: %w", err)
	}
	if !end.Converged() {
		glog.Warningf("calibration stopped on %s after %d iterations, ssr=%.6e", end, iter, ssr)
	}

	res := &Result{
		RunID:               uuid.New().String(),
		Params:              best,
		Iterations:          iter,
		FunctionEvaluations: e.evals,
		Objective:           ssr,
		EndCriteria:         end,
		Converged:           end.Converged(),
		Instruments:         make([]InstrumentResult, len(instruments)),
	}
	for i, in := range instruments {
		modelValue, err := in.Pricer.ModelValue(m)
		if err != nil {
			return nil, fmt.Errorf("Calibrate: instrument %s: %w", in.Name, err)
		}
		ir := InstrumentResult{
			Name:        in.Name,
			ModelPrice:  modelValue,
			MarketPrice: in.Pricer.MarketValue(),
			MarketVol:   in.MarketVol,
			Residual:    r[i],
		}
		vol, err := in.Pricer.ImpliedVolatility(modelValue, o.iv.Accuracy, o.iv.MaxEvaluations, o.iv.MinVol, o.iv.MaxVol)
		if err != nil {
			ir.VolError = err.Error()
		} else {
			ir.ModelVol = vol
		}
		res.Instruments[i] = ir
	}
	return res, nil
}
