package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimeUnit is the unit of a Period.
type TimeUnit int

const (
	UnitDays TimeUnit = iota
	UnitWeeks
	UnitMonths
	UnitYears
)

func (u TimeUnit) String() string {
	switch u {
	case UnitDays:
		return "D"
	case UnitWeeks:
		return "W"
	case UnitMonths:
		return "M"
	case UnitYears:
		return "Y"
	default:
		return "?"
	}
}

// Period is a tenor such as 2D, 3M or 10Y.
type Period struct {
	Length int
	Unit   TimeUnit
}

// NewPeriod builds a Period.
func NewPeriod(length int, unit TimeUnit) Period {
	return Period{Length: length, Unit: unit}
}

// ParsePeriod converts tenor strings like "1W", "3M", "10Y" to a Period.
func ParsePeriod(tenor string) (Period, error) {
	s := strings.TrimSpace(strings.ToUpper(tenor))
	if len(s) < 2 {
		return Period{}, fmt.Errorf("ParsePeriod: invalid tenor %q", tenor)
	}
	n, err := strconv.Atoi(s[:len(s)-1])
	if err != nil {
		return Period{}, fmt.Errorf("ParsePeriod: invalid tenor %q: %w", tenor, err)
	}
	switch s[len(s)-1] {
	case 'D':
		return Period{n, UnitDays}, nil
	case 'W':
		return Period{n, UnitWeeks}, nil
	case 'M':
		return Period{n, UnitMonths}, nil
	case 'Y':
		return Period{n, UnitYears}, nil
	default:
		return Period{}, fmt.Errorf("ParsePeriod: unknown unit in %q", tenor)
	}
}

// MustParsePeriod is ParsePeriod for literals known to be valid.
func MustParsePeriod(tenor string) Period {
	p, err := ParsePeriod(tenor)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Period) String() string {
	return strconv.Itoa(p.Length) + p.Unit.String()
}

// Months returns the period length in months; day and week periods return 0.
func (p Period) Months() int {
	switch p.Unit {
	case UnitMonths:
		return p.Length
	case UnitYears:
		return 12 * p.Length
	default:
		return 0
	}
}

// Years returns an approximate year fraction for ordering and display.
func (p Period) Years() float64 {
	switch p.Unit {
	case UnitDays:
		return float64(p.Length) / 365.0
	case UnitWeeks:
		return float64(p.Length) * 7.0 / 365.0
	case UnitMonths:
		return float64(p.Length) / 12.0
	default:
		return float64(p.Length)
	}
}

// AddTo shifts t by the period without any business-day adjustment.
func (p Period) AddTo(t time.Time) time.Time {
	switch p.Unit {
	case UnitDays:
		return t.AddDate(0, 0, p.Length)
	case UnitWeeks:
		return t.AddDate(0, 0, 7*p.Length)
	default:
		return AddMonth(t, p.Months())
	}
}

// MarshalText encodes the period as its tenor string.
func (p Period) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText parses a tenor string.
func (p *Period) UnmarshalText(text []byte) error {
	v, err := ParsePeriod(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}
