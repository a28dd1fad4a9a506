package kernel_test

import (
	"fmt"
	"testing"
	"time"

	"souvlaki/internal/core/domain/model/kernel"
	"souvlaki/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDeliveryEstimate_Valid(t *testing.T) {
	tests := []struct {
		input string
		lower int
		upper int
	}{
		{"25-30", 25, 30},
		{"0-0", 0, 0},
		{"0-15", 0, 15},
		{"45-45", 45, 45},
		{"007-010", 7, 10},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			estimate, err := kernel.ParseDeliveryEstimate(tc.input)

			require.NoError(t, err)
			require.NoError(t, estimate.Validate())
			assert.Equal(t, tc.lower, estimate.Lower())
			assert.Equal(t, tc.upper, estimate.Upper())
			assert.Equal(t, time.Duration(tc.lower)*time.Minute, estimate.Delay())
		})
	}
}

func TestParseDeliveryEstimate_AllWellFormedRangesParseLowerBound(t *testing.T) {
	for a := 0; a <= 60; a += 7 {
		for b := a; b <= 90; b += 11 {
			estimate, err := kernel.ParseDeliveryEstimate(fmt.Sprintf("%d-%d", a, b))

			require.NoError(t, err)
			assert.Equal(t, a, estimate.Lower())
			assert.Equal(t, fmt.Sprintf("%d-%d", a, b), estimate.String())
		}
	}
}

func TestParseDeliveryEstimate_Malformed(t *testing.T) {
	inputs := []string{
		"",
		"25",
		"25-",
		"-30",
		"25 - 30",
		"25-30 ",
		" 25-30",
		"a-b",
		"25-30-35",
		"-5-10",
		"2.5-3",
		"25–30",
		"99999999999999999999-99999999999999999999",
	}

	for _, input := range inputs {
		t.Run(fmt.Sprintf("%q", input), func(t *testing.T) {
			_, err := kernel.ParseDeliveryEstimate(input)

			require.Error(t, err)
			require.ErrorIs(t, err, errs.ErrValueIsInvalid)
		})
	}
}

func TestParseDeliveryEstimate_UpperBelowLower(t *testing.T) {
	_, err := kernel.ParseDeliveryEstimate("30-25")

	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
}

func TestParseDeliveryEstimate_BoundsAboveMaximum(t *testing.T) {
	inputs := []string{
		"200000000-200000001",
		"10081-10090",
		"30-10081",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			_, err := kernel.ParseDeliveryEstimate(input)

			require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
		})
	}
}

func TestNewDeliveryEstimate_MaximumIsAccepted(t *testing.T) {
	estimate, err := kernel.NewDeliveryEstimate(kernel.MaxDeliveryMinutes, kernel.MaxDeliveryMinutes)

	require.NoError(t, err)
	assert.Equal(t, time.Duration(kernel.MaxDeliveryMinutes)*time.Minute, estimate.Delay())
	assert.Positive(t, estimate.Delay())
}

func TestDeliveryEstimate_ZeroValueIsInvalid(t *testing.T) {
	var estimate kernel.DeliveryEstimate

	require.ErrorIs(t, estimate.Validate(), errs.ErrValueIsRequired)
}

func TestDeliveryEstimate_Adjust(t *testing.T) {
	current, _ := kernel.NewDeliveryEstimate(25, 30)

	t.Run("shifts both bounds when nothing changed concurrently", func(t *testing.T) {
		adjusted, err := current.Adjust(10, current)

		require.NoError(t, err)
		assert.Equal(t, "35-40", adjusted.String())
	})

	t.Run("negative delta shortens the range", func(t *testing.T) {
		adjusted, err := current.Adjust(-5, current)

		require.NoError(t, err)
		assert.Equal(t, "20-25", adjusted.String())
	})

	t.Run("keeps a concurrent edit made by another view", func(t *testing.T) {
		stored, _ := kernel.NewDeliveryEstimate(30, 40)

		adjusted, err := current.Adjust(5, stored)

		require.NoError(t, err)
		assert.Equal(t, "35-45", adjusted.String())
	})

	t.Run("rejects a negative lower bound", func(t *testing.T) {
		_, err := current.Adjust(-26, current)

		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})

	t.Run("rejects bounds past the maximum", func(t *testing.T) {
		_, err := current.Adjust(kernel.MaxDeliveryMinutes, current)

		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})

	t.Run("rejects unconstructed inputs", func(t *testing.T) {
		_, err := current.Adjust(5, kernel.DeliveryEstimate{})

		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})
}

func TestDeliveryEstimate_AdjustIsAssociative(t *testing.T) {
	deltas := []int{-10, -3, 0, 4, 15}
	start, _ := kernel.NewDeliveryEstimate(20, 35)

	for _, d1 := range deltas {
		for _, d2 := range deltas {
			step, err := start.Adjust(d1, start)
			require.NoError(t, err)
			twice, err := step.Adjust(d2, step)
			require.NoError(t, err)

			once, err := start.Adjust(d1+d2, start)
			require.NoError(t, err)

			assert.True(t, once.Equal(twice), "d1=%d d2=%d: %s != %s", d1, d2, once, twice)
		}
	}
}
