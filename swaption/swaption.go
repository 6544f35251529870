// Package swaption prices European swaptions under Hull-White (Jamshidian
// decomposition) and Black-76, and builds the helpers a calibration fits to.
package swaption

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/meenmo/shortrate/curve"
	"github.com/meenmo/shortrate/swap"
	"github.com/meenmo/shortrate/utils"
)

var (
	// ErrCriticalRateNotFound is returned when no short rate equates the coupon bond to its strike.
	ErrCriticalRateNotFound = errors.New("critical short rate not found")
	// ErrInvalidSwaption is returned for inconsistent exercise and swap dates.
	ErrInvalidSwaption = errors.New("invalid swaption")
)

// Swaption is a European option to enter the underlying swap on the exercise date.
type Swaption struct {
	underlying *swap.VanillaSwap
	exercise   time.Time
}

// NewSwaption binds an exercise date to a swap starting on or after it.
func NewSwaption(underlying *swap.VanillaSwap, exercise time.Time) (*Swaption, error) {
	if underlying == nil {
		return nil, fmt.Errorf("NewSwaption: nil swap: %w", ErrInvalidSwaption)
	}
	if exercise.After(underlying.Spec().EffectiveDate) {
		return nil, fmt.Errorf("NewSwaption: exercise %s after swap start %s: %w",
			utils.FormatDate(exercise), utils.FormatDate(underlying.Spec().EffectiveDate), ErrInvalidSwaption)
	}
	return &Swaption{underlying: underlying, exercise: exercise}, nil
}

// Underlying returns the swap entered on exercise.
func (s *Swaption) Underlying() *swap.VanillaSwap {
	return s.underlying
}

// ExerciseDate returns the exercise date.
func (s *Swaption) ExerciseDate() time.Time {
	return s.exercise
}

// Type is the direction of the underlying swap.
func (s *Swaption) Type() swap.Type {
	return s.underlying.Type()
}

// bondCashflows returns the exercise time, the swap start time (never before
// exercise), the fixed payment times after exercise and their amounts, with the
// nominal added to the last one.
func (s *Swaption) bondCashflows(c *curve.Curve) (exerciseTime, valueTime float64, times, amounts []float64) {
	exerciseTime = c.Time(s.exercise)
	valueTime = math.Max(exerciseTime, c.Time(s.underlying.Spec().EffectiveDate))
	for _, cp := range s.underlying.FixedCoupons() {
		t := c.Time(cp.PayDate)
		if t <= exerciseTime {
			continue
		}
		times = append(times, t)
		amounts = append(amounts, cp.Amount)
	}
	if len(amounts) > 0 {
		amounts[len(amounts)-1] += s.underlying.Nominal()
	}
	return exerciseTime, valueTime, times, amounts
}
