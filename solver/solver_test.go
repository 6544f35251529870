package solver_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meenmo/shortrate/solver"
)

func cubic(x float64) float64 { return x*x*x - 2*x - 5 }

func TestBrent(t *testing.T) {
	t.Parallel()

	root, err := solver.Brent(cubic, 2, 3, solver.Settings{Accuracy: 1e-14, MaxIterations: 100})
	require.NoError(t, err)
	require.InDelta(t, 2.0945514815423265, root, 1e-12)
}

func TestBisection(t *testing.T) {
	t.Parallel()

	root, err := solver.Bisection(math.Cos, 0, 3, solver.Settings{Accuracy: 1e-12, MaxIterations: 200})
	require.NoError(t, err)
	require.InDelta(t, math.Pi/2, root, 1e-11)
}

func TestSafeNewton(t *testing.T) {
	t.Parallel()

	df := func(x float64) float64 { return 3*x*x - 2 }
	root, err := solver.SafeNewton(cubic, df, 2.5, 2, 3, solver.Settings{Accuracy: 1e-14, MaxIterations: 100})
	require.NoError(t, err)
	require.InDelta(t, 2.0945514815423265, root, 1e-12)

	// a poor guess outside the interval still converges through bisection steps
	root, err = solver.SafeNewton(cubic, df, 100, 2, 3, solver.Settings{Accuracy: 1e-14, MaxIterations: 100})
	require.NoError(t, err)
	require.InDelta(t, 2.0945514815423265, root, 1e-12)
}

func TestNoBracket(t *testing.T) {
	t.Parallel()

	f := func(x float64) float64 { return x*x + 1 }
	_, err := solver.Brent(f, -1, 1, solver.DefaultSettings)
	require.True(t, errors.Is(err, solver.ErrNoBracket))

	_, _, err = solver.Bracket(f, -1, 1, math.Inf(-1), math.Inf(1), 10)
	require.ErrorIs(t, err, solver.ErrNoBracket)
}

func TestBracketExpands(t *testing.T) {
	t.Parallel()

	f := func(x float64) float64 { return x - 10 }
	lo, hi, err := solver.Bracket(f, 0, 1, math.Inf(-1), math.Inf(1), 20)
	require.NoError(t, err)
	require.LessOrEqual(t, lo, 10.0)
	require.GreaterOrEqual(t, hi, 10.0)
}
