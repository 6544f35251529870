package swap

import (
	"errors"
	"time"
)

var (
	// ErrNilCurve is returned when a required curve argument is nil.
	ErrNilCurve = errors.New("nil curve")
	// ErrInvalidSwap is returned for inconsistent swap terms.
	ErrInvalidSwap = errors.New("invalid swap")
)

// DiscountCurve provides discount factors by date. *curve.Curve satisfies it.
type DiscountCurve interface {
	DFAt(t time.Time) float64
}

// Type describes whether the swap pays or receives the fixed leg.
type Type int

const (
	// Payer pays fixed and receives floating.
	Payer Type = 1
	// Receiver receives fixed and pays floating.
	Receiver Type = -1
)

func (t Type) String() string {
	if t == Receiver {
		return "Receiver"
	}
	return "Payer"
}

// SchedulePeriod is a cashflow period for a single leg.
//
// Dates are business-day adjusted per the provided leg convention.
type SchedulePeriod struct {
	StartDate   time.Time
	EndDate     time.Time
	PayDate     time.Time
	AccrualDays int
	FixingDate  time.Time
}

// Coupon is a fixed-leg cashflow.
type Coupon struct {
	PayDate time.Time
	Accrual float64
	Amount  float64
}

// PV contains present values for each leg and the net sum from the swap holder's side.
type PV struct {
	FixedLegPV    float64
	FloatingLegPV float64
	TotalPV       float64
}
