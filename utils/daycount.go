package utils

import (
	"time"
)

// Day count conventions understood by YearFraction.
const (
	Act360  = "ACT/360"
	Act365F = "ACT/365F"
	E30360  = "30E/360"
	US30360 = "30/360"
)

// YearFraction computes year fraction between two dates using the specified day count convention.
// Supported conventions: ACT/360, ACT/365F, 30E/360 (Eurobond basis), 30/360 (US bond basis).
// Unknown conventions fall back to ACT/365F.
func YearFraction(start, end time.Time, convention string) float64 {
	switch convention {
	case Act360:
		return Days(start, end) / 360.0
	case Act365F:
		return Days(start, end) / 365.0
	case E30360:
		d1 := start.Day()
		if d1 > 30 {
			d1 = 30
		}
		d2 := end.Day()
		if d2 > 30 {
			d2 = 30
		}
		return thirty360(start, end, d1, d2)
	case US30360:
		d1 := start.Day()
		if d1 == 31 {
			d1 = 30
		}
		d2 := end.Day()
		if d2 == 31 && d1 >= 30 {
			d2 = 30
		}
		return thirty360(start, end, d1, d2)
	default:
		return Days(start, end) / 365.0
	}
}

func thirty360(start, end time.Time, d1, d2 int) float64 {
	y1, m1 := start.Year(), int(start.Month())
	y2, m2 := end.Year(), int(end.Month())
	return float64(360*(y2-y1)+30*(m2-m1)+(d2-d1)) / 360.0
}

// KnownDayCount reports whether convention is handled explicitly by YearFraction.
func KnownDayCount(convention string) bool {
	switch convention {
	case Act360, Act365F, E30360, US30360:
		return true
	default:
		return false
	}
}
