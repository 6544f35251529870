package config

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/shortrate/utils"
)

func TestDayCountRuleRegistered(t *testing.T) {
	t.Parallel()

	var v *validator.Validate
	require.NotPanics(t, func() { v = newValidator() })

	type leg struct {
		DayCount string `validate:"daycount"`
	}
	require.NoError(t, v.Struct(leg{DayCount: utils.E30360}))

	err := v.Struct(leg{DayCount: "ACT/ACT"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "daycount")
}
