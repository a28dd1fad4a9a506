package order_test

import (
	"fmt"
	"testing"

	"souvlaki/internal/core/domain/model/order"
	"souvlaki/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allStatuses() []order.Status {
	return []order.Status{
		order.Requested,
		order.Pending,
		order.Completed,
		order.Cancelled,
		order.Rejected,
	}
}

func TestStatus_Constants(t *testing.T) {
	assert.Equal(t, 0, int(order.Unknown))
	assert.Equal(t, 1, int(order.Requested))
	assert.Equal(t, 2, int(order.Pending))
	assert.Equal(t, 3, int(order.Completed))
	assert.Equal(t, 4, int(order.Cancelled))
	assert.Equal(t, 5, int(order.Rejected))
}

func TestStatus_Validate(t *testing.T) {
	for _, status := range allStatuses() {
		t.Run(status.String(), func(t *testing.T) {
			require.NoError(t, status.Validate())
		})
	}

	for _, status := range []order.Status{order.Unknown, order.Status(-1), order.Status(6), order.Status(100)} {
		t.Run(fmt.Sprintf("rejects %d", int(status)), func(t *testing.T) {
			err := status.Validate()

			require.Error(t, err)
			assert.IsType(t, &errs.ValueIsInvalidError{}, err)
			assert.Contains(t, err.Error(), fmt.Sprintf("%d is not a valid status", int(status)))
		})
	}
}

func TestStatus_StringAndParse(t *testing.T) {
	for _, status := range allStatuses() {
		parsed, err := order.ParseStatus(status.String())

		require.NoError(t, err)
		assert.Equal(t, status, parsed)
	}

	assert.Equal(t, "unknown", order.Status(42).String())

	_, err := order.ParseStatus("unknown")
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	_, err = order.ParseStatus("Pending")
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
}

func TestStatus_IsTerminal(t *testing.T) {
	assert.False(t, order.Requested.IsTerminal())
	assert.False(t, order.Pending.IsTerminal())
	assert.True(t, order.Completed.IsTerminal())
	assert.True(t, order.Cancelled.IsTerminal())
	assert.True(t, order.Rejected.IsTerminal())
}

func TestStatus_Transitions(t *testing.T) {
	type transition func(order.Status) (order.Status, error)

	tests := []struct {
		name    string
		apply   transition
		allowed map[order.Status]order.Status
	}{
		{
			name:    "accept",
			apply:   order.Status.Accept,
			allowed: map[order.Status]order.Status{order.Requested: order.Pending},
		},
		{
			name:  "cancel",
			apply: order.Status.Cancel,
			allowed: map[order.Status]order.Status{
				order.Requested: order.Cancelled,
				order.Pending:   order.Cancelled,
			},
		},
		{
			name:  "reject",
			apply: order.Status.Reject,
			allowed: map[order.Status]order.Status{
				order.Requested: order.Rejected,
				order.Pending:   order.Rejected,
			},
		},
		{
			name:  "complete",
			apply: order.Status.Complete,
			allowed: map[order.Status]order.Status{
				order.Requested: order.Completed,
				order.Pending:   order.Completed,
				order.Completed: order.Completed,
			},
		},
	}

	for _, tc := range tests {
		for _, from := range append(allStatuses(), order.Unknown) {
			t.Run(fmt.Sprintf("%s from %s", tc.name, from), func(t *testing.T) {
				next, err := tc.apply(from)

				if want, ok := tc.allowed[from]; ok {
					require.NoError(t, err)
					assert.Equal(t, want, next)
					return
				}
				require.Error(t, err)
				assert.Equal(t, order.Unknown, next)
			})
		}
	}
}
