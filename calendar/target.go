package calendar

import "time"

// isTargetHoliday covers the TARGET2 closing days: New Year, Good Friday,
// Easter Monday, Labour Day, Christmas and St. Stephen's Day, plus the
// one-off Dec 31 closures of 1998, 1999 and 2001.
func isTargetHoliday(t time.Time) bool {
	y, m, d := t.Date()
	dayOfYear := t.YearDay()
	easter := easterMonday(y)

	switch {
	case m == time.January && d == 1:
		return true
	case dayOfYear == easter-3 && y >= 2000:
		return true
	case dayOfYear == easter && y >= 2000:
		return true
	case m == time.May && d == 1 && y >= 2000:
		return true
	case m == time.December && d == 25:
		return true
	case m == time.December && d == 26 && y >= 2000:
		return true
	case m == time.December && d == 31 && (y == 1998 || y == 1999 || y == 2001):
		return true
	}
	return false
}

// easterMonday returns the day of year of Easter Monday (Gregorian computus).
func easterMonday(year int) int {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	mm := (a + 11*h + 22*l) / 451
	month := (h + l - 7*mm + 114) / 31
	day := (h+l-7*mm+114)%31 + 1
	easterSunday := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return easterSunday.YearDay() + 1
}
