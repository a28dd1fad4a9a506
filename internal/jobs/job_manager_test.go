package jobs_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"souvlaki/internal/core/application/usecases/commands"
	"souvlaki/internal/jobs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOverdueOrdersCompleter struct{ mock.Mock }

func (m *MockOverdueOrdersCompleter) Handle(ctx context.Context, command commands.CompleteOverdueOrdersCommand) (int, error) {
	args := m.Called(ctx, command)
	return args.Int(0), args.Error(1)
}

type MockTimerRearmer struct{ mock.Mock }

func (m *MockTimerRearmer) Handle(ctx context.Context, command commands.RearmDeliveryTimersCommand) error {
	args := m.Called(ctx, command)
	return args.Error(0)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDeliverySweepJob_Run(t *testing.T) {
	t.Run("completes overdue orders", func(t *testing.T) {
		handler := &MockOverdueOrdersCompleter{}
		handler.On("Handle", mock.Anything, mock.AnythingOfType("commands.CompleteOverdueOrdersCommand")).Return(2, nil).Once()

		jobs.NewDeliverySweepJob(handler, "", discardLogger()).Run()

		handler.AssertExpectations(t)
	})

	t.Run("failure is logged only", func(t *testing.T) {
		handler := &MockOverdueOrdersCompleter{}
		handler.On("Handle", mock.Anything, mock.Anything).Return(0, errors.New("db down")).Once()

		assert.NotPanics(t, jobs.NewDeliverySweepJob(handler, "", discardLogger()).Run)
		handler.AssertExpectations(t)
	})
}

func TestDeliverySweepJob_InvalidSchedule(t *testing.T) {
	job := jobs.NewDeliverySweepJob(&MockOverdueOrdersCompleter{}, "every now and then", discardLogger())

	err := job.Start()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid sweep schedule")
}

func TestDeliverySweepJob_RunsOnSchedule(t *testing.T) {
	handler := &MockOverdueOrdersCompleter{}
	called := make(chan struct{}, 8)
	handler.On("Handle", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { called <- struct{}{} }).
		Return(0, nil)

	job := jobs.NewDeliverySweepJob(handler, "* * * * * *", discardLogger())
	require.NoError(t, job.Start())
	defer job.Stop()

	select {
	case <-called:
	case <-time.After(3 * time.Second):
		t.Fatal("sweep did not run")
	}
}

func TestJobManager_StartAll(t *testing.T) {
	t.Run("re-arms timers before starting the sweep", func(t *testing.T) {
		rearmer := &MockTimerRearmer{}
		rearmer.On("Handle", mock.Anything, mock.AnythingOfType("commands.RearmDeliveryTimersCommand")).Return(nil).Once()

		manager := jobs.NewJobManager(&MockOverdueOrdersCompleter{}, rearmer, "0 0 3 * * *", discardLogger())

		require.NoError(t, manager.StartAll(context.Background()))
		manager.StopAll()
		rearmer.AssertExpectations(t)
	})

	t.Run("re-arm failure does not prevent startup", func(t *testing.T) {
		rearmer := &MockTimerRearmer{}
		rearmer.On("Handle", mock.Anything, mock.Anything).Return(errors.New("db down")).Once()

		manager := jobs.NewJobManager(&MockOverdueOrdersCompleter{}, rearmer, "0 0 3 * * *", discardLogger())

		require.NoError(t, manager.StartAll(context.Background()))
		manager.StopAll()
	})

	t.Run("invalid schedule is reported", func(t *testing.T) {
		rearmer := &MockTimerRearmer{}
		rearmer.On("Handle", mock.Anything, mock.Anything).Return(nil).Once()

		manager := jobs.NewJobManager(&MockOverdueOrdersCompleter{}, rearmer, "nope", discardLogger())

		require.Error(t, manager.StartAll(context.Background()))
	})
}
