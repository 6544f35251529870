package calendar_test

import (
	"testing"
	"time"

	"github.com/meenmo/shortrate/calendar"
	"github.com/meenmo/shortrate/utils"
)

func TestTargetHolidays(t *testing.T) {
	t.Parallel()

	holidays := []time.Time{
		utils.Date(2002, time.January, 1),
		utils.Date(2002, time.March, 29), // Good Friday
		utils.Date(2002, time.April, 1),  // Easter Monday
		utils.Date(2002, time.May, 1),
		utils.Date(2002, time.December, 25),
		utils.Date(2002, time.December, 26),
		utils.Date(2001, time.December, 31),
	}
	for _, h := range holidays {
		if calendar.IsBusinessDay(calendar.TARGET, h) {
			t.Fatalf("%s should be a TARGET holiday", utils.FormatDate(h))
		}
	}
	if !calendar.IsBusinessDay(calendar.TARGET, utils.Date(2002, time.February, 15)) {
		t.Fatalf("2002-02-15 should be a business day")
	}
	if !calendar.IsBusinessDay(calendar.NullCalendar, utils.Date(2002, time.December, 25)) {
		t.Fatalf("null calendar has no holidays")
	}
}

func TestAdvance(t *testing.T) {
	t.Parallel()

	today := utils.Date(2002, time.February, 15) // Friday
	spot := calendar.Advance(calendar.TARGET, today, utils.NewPeriod(2, utils.UnitDays), calendar.Following, false)
	if want := utils.Date(2002, time.February, 19); !spot.Equal(want) {
		t.Fatalf("spot mismatch: got %s want %s", utils.FormatDate(spot), utils.FormatDate(want))
	}

	// 2003-02-19 is a Wednesday.
	oneYear := calendar.Advance(calendar.TARGET, spot, utils.NewPeriod(1, utils.UnitYears), calendar.ModifiedFollowing, false)
	if want := utils.Date(2003, time.February, 19); !oneYear.Equal(want) {
		t.Fatalf("1Y mismatch: got %s want %s", utils.FormatDate(oneYear), utils.FormatDate(want))
	}

	// 2002-08-31 is a Saturday; modified following must stay in August.
	mf := calendar.AdjustWith(calendar.TARGET, utils.Date(2002, time.August, 31), calendar.ModifiedFollowing)
	if want := utils.Date(2002, time.August, 30); !mf.Equal(want) {
		t.Fatalf("modified following mismatch: got %s", utils.FormatDate(mf))
	}
	unadj := calendar.AdjustWith(calendar.TARGET, utils.Date(2002, time.August, 31), calendar.Unadjusted)
	if !unadj.Equal(utils.Date(2002, time.August, 31)) {
		t.Fatalf("unadjusted date moved: got %s", utils.FormatDate(unadj))
	}
}

func TestAdvanceEndOfMonth(t *testing.T) {
	t.Parallel()

	start := utils.Date(2002, time.February, 28) // Thursday, last business day
	got := calendar.Advance(calendar.TARGET, start, utils.NewPeriod(1, utils.UnitMonths), calendar.ModifiedFollowing, true)
	if want := utils.Date(2002, time.March, 28); !got.Equal(want) {
		// March 29 2002 is Good Friday, so the last TARGET business day is the 28th.
		t.Fatalf("EOM advance mismatch: got %s want %s", utils.FormatDate(got), utils.FormatDate(want))
	}
}
