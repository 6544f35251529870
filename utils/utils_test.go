package utils_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/meenmo/shortrate/utils"
)

func TestParsePeriod(t *testing.T) {
	t.Parallel()

	for tenor, want := range map[string]utils.Period{
		"2D":   utils.NewPeriod(2, utils.UnitDays),
		"1w":   utils.NewPeriod(1, utils.UnitWeeks),
		"18M":  utils.NewPeriod(18, utils.UnitMonths),
		" 30Y": utils.NewPeriod(30, utils.UnitYears),
	} {
		got, err := utils.ParsePeriod(tenor)
		require.NoError(t, err, tenor)
		require.Equal(t, want, got)
	}
	for _, bad := range []string{"", "Y", "5Q", "xM"} {
		_, err := utils.ParsePeriod(bad)
		require.Error(t, err, bad)
	}

	var p utils.Period
	require.NoError(t, p.UnmarshalText([]byte("6M")))
	text, err := p.MarshalText()
	require.NoError(t, err)
	require.Equal(t, "6M", string(text))
	require.Equal(t, 6, p.Months())
	require.Error(t, p.UnmarshalText([]byte("6")))
}

func TestAddToClampsMonthEnd(t *testing.T) {
	t.Parallel()

	got := utils.MustParsePeriod("1M").AddTo(utils.Date(2002, time.January, 31))
	require.Equal(t, utils.Date(2002, time.February, 28), got)
}

func TestYearFraction(t *testing.T) {
	t.Parallel()

	start := utils.Date(2003, time.February, 28)
	end := utils.Date(2003, time.August, 31)
	require.InDelta(t, 184.0/360.0, utils.YearFraction(start, end, utils.Act360), 1e-15)
	require.InDelta(t, 184.0/365.0, utils.YearFraction(start, end, utils.Act365F), 1e-15)
	// 30E/360 caps both day-of-month values at 30.
	require.InDelta(t, 182.0/360.0, utils.YearFraction(start, end, utils.E30360), 1e-15)
	require.True(t, utils.KnownDayCount(utils.US30360))
	require.False(t, utils.KnownDayCount("ACT/ACT"))
}
