// Package solver provides the one-dimensional root finders used by curve
// bootstrapping, the critical-rate search and implied volatility inversion.
package solver

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrNoBracket is returned when f does not change sign over the search interval.
	ErrNoBracket = errors.New("root not bracketed")
	// ErrMaxIterations is returned when the accuracy is not reached within the iteration budget.
	ErrMaxIterations = errors.New("maximum iterations reached")
)

const machineEpsilon = 2.220446049250313e-16

// Func is a scalar objective whose root is sought.
type Func func(x float64) float64

// Settings controls a root search.
type Settings struct {
	// Accuracy is the absolute tolerance on x.
	Accuracy float64
	// MaxIterations bounds the number of function evaluations.
	MaxIterations int
}

// DefaultSettings mirrors the bootstrap defaults.
var DefaultSettings = Settings{
	Accuracy:      1e-12,
	MaxIterations: 100,
}

// Bracket expands [lo, hi] geometrically until f changes sign, at most maxTries times.
// lower and upper, when finite, bound the expansion.
func Bracket(f Func, lo, hi, lower, upper float64, maxTries int) (float64, float64, error) {
	if lo >= hi {
		return 0, 0, fmt.Errorf("Bracket: invalid interval [%g, %g]", lo, hi)
	}
	flo, fhi := f(lo), f(hi)
	for i := 0; i < maxTries; i++ {
		if !sameSign(flo, fhi) {
			return lo, hi, nil
		}
		width := hi - lo
		if math.Abs(flo) < math.Abs(fhi) {
			lo = math.Max(lo-1.6*width, lower)
			flo = f(lo)
		} else {
			hi = math.Min(hi+1.6*width, upper)
			fhi = f(hi)
		}
	}
	if !sameSign(flo, fhi) {
		return lo, hi, nil
	}
	return 0, 0, fmt.Errorf("Bracket: f(%g)=%g, f(%g)=%g: %w", lo, flo, hi, fhi, ErrNoBracket)
}

// Brent finds a root of f inside [lo, hi] using Brent's method.
func Brent(f Func, lo, hi float64, s Settings) (float64, error) {
	a, b := lo, hi
	fa, fb := f(a), f(b)
	if fa == 0 {
		return a, nil
	}
	if fb == 0 {
		return b, nil
	}
	if sameSign(fa, fb) {
		return 0, fmt.Errorf("Brent: f(%g)=%g, f(%g)=%g: %w", a, fa, b, fb, ErrNoBracket)
	}

	c, fc := b, fb
	var d, e float64
	for iter := 0; iter < s.MaxIterations; iter++ {
		if sameSign(fb, fc) {
			c, fc = a, fa
			d = b - a
			e = d
		}
		if math.Abs(fc) < math.Abs(fb) {
			a, b, c = b, c, b
			fa, fb, fc = fb, fc, fb
		}
		tol := 2*machineEpsilon*math.Abs(b) + 0.5*s.Accuracy
		xm := 0.5 * (c - b)
		if math.Abs(xm) <= tol || fb == 0 {
			return b, nil
		}
		if math.Abs(e) >= tol && math.Abs(fa) > math.Abs(fb) {
			// inverse quadratic interpolation, secant when a == c
			sr := fb / fa
			var p, q float64
			if a == c {
				p = 2 * xm * sr
				q = 1 - sr
			} else {
				qr := fa / fc
				r := fb / fc
				p = sr * (2*xm*qr*(qr-r) - (b-a)*(r-1))
				q = (qr - 1) * (r - 1) * (sr - 1)
			}
			if p > 0 {
				q = -q
			}
			p = math.Abs(p)
			min1 := 3*xm*q - math.Abs(tol*q)
			min2 := math.Abs(e * q)
			if 2*p < math.Min(min1, min2) {
				e = d
				d = p / q
			} else {
				d = xm
				e = d
			}
		} else {
			d = xm
			e = d
		}
		a, fa = b, fb
		if math.Abs(d) > tol {
			b += d
		} else {
			b += math.Copysign(tol, xm)
		}
		fb = f(b)
	}
	return b, fmt.Errorf("Brent: last x=%g: %w", b, ErrMaxIterations)
}

// Bisection halves [lo, hi] until it is narrower than the accuracy.
func Bisection(f Func, lo, hi float64, s Settings) (float64, error) {
	flo, fhi := f(lo), f(hi)
	if flo == 0 {
		return lo, nil
	}
	if fhi == 0 {
		return hi, nil
	}
	if sameSign(flo, fhi) {
		return 0, fmt.Errorf("Bisection: f(%g)=%g, f(%g)=%g: %w", lo, flo, hi, fhi, ErrNoBracket)
	}
	for iter := 0; iter < s.MaxIterations; iter++ {
		mid := 0.5 * (lo + hi)
		fmid := f(mid)
		if fmid == 0 || 0.5*(hi-lo) < s.Accuracy {
			return mid, nil
		}
		if sameSign(fmid, flo) {
			lo, flo = mid, fmid
		} else {
			hi = mid
		}
	}
	return 0.5 * (lo + hi), fmt.Errorf("Bisection: %w", ErrMaxIterations)
}

// SafeNewton runs Newton-Raphson from guess, falling back to bisection whenever
// the Newton step leaves [lo, hi] or shrinks too slowly. f and df must share x.
func SafeNewton(f, df Func, guess, lo, hi float64, s Settings) (float64, error) {
	flo, fhi := f(lo), f(hi)
	if flo == 0 {
		return lo, nil
	}
	if fhi == 0 {
		return hi, nil
	}
	if sameSign(flo, fhi) {
		return 0, fmt.Errorf("SafeNewton: f(%g)=%g, f(%g)=%g: %w", lo, flo, hi, fhi, ErrNoBracket)
	}
	// orient so that f(xl) < 0
	xl, xh := lo, hi
	if flo > 0 {
		xl, xh = hi, lo
	}

	x := guess
	if x <= math.Min(lo, hi) || x >= math.Max(lo, hi) {
		x = 0.5 * (lo + hi)
	}
	dxOld := math.Abs(hi - lo)
	dx := dxOld
	fx, dfx := f(x), df(x)

	for iter := 0; iter < s.MaxIterations; iter++ {
		outside := ((x-xh)*dfx-fx)*((x-xl)*dfx-fx) > 0
		slow := math.Abs(2*fx) > math.Abs(dxOld*dfx)
		if outside || slow || dfx == 0 {
			dxOld = dx
			dx = 0.5 * (xh - xl)
			x = xl + dx
		} else {
			dxOld = dx
			dx = fx / dfx
			x -= dx
		}
		if math.Abs(dx) < s.Accuracy {
			return x, nil
		}
		fx, dfx = f(x), df(x)
		if fx < 0 {
			xl = x
		} else {
			xh = x
		}
	}
	return x, fmt.Errorf("SafeNewton: last x=%g: %w", x, ErrMaxIterations)
}

func sameSign(a, b float64) bool {
	return (a > 0 && b > 0) || (a < 0 && b < 0)
}
