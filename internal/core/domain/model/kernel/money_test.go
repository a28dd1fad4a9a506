package kernel_test

import (
	"testing"

	"souvlaki/internal/core/domain/model/kernel"
	"souvlaki/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("rounds to cents", func(t *testing.T) {
		m, err := kernel.NewMoney(decimal.RequireFromString("12.345"))

		require.NoError(t, err)
		assert.Equal(t, "12.35", m.String())
		assert.Equal(t, int64(1235), m.Cents())
	})

	t.Run("rejects negative amounts", func(t *testing.T) {
		_, err := kernel.NewMoney(decimal.NewFromInt(-1))

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("zero value is invalid", func(t *testing.T) {
		var m kernel.Money

		require.ErrorIs(t, m.Validate(), errs.ErrValueIsRequired)
	})
}

func TestMoney_Arithmetic(t *testing.T) {
	price, err := kernel.MoneyFromCents(450)
	require.NoError(t, err)

	total := kernel.ZeroMoney().Add(price.Times(3))

	assert.Equal(t, "13.50", total.String())
	assert.True(t, total.GreaterThan(price))
	assert.False(t, total.IsZero())
	assert.True(t, total.Equal(price.Times(3)))
	require.NoError(t, total.Validate())
}
