package queries_test

import (
	"testing"

	"souvlaki/internal/core/application/usecases/queries"
	"souvlaki/internal/core/domain/model/kernel"
	"souvlaki/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGetOrderQuery(t *testing.T) {
	query, err := queries.NewGetOrderQuery(42)
	require.NoError(t, err)
	assert.Equal(t, kernel.ID(42), query.OrderID())
	require.NoError(t, query.Validate())

	_, err = queries.NewGetOrderQuery(0)
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)

	require.ErrorIs(t, queries.GetOrderQuery{}.Validate(), queries.ErrGetOrderQueryIsNotConstructed)
}
