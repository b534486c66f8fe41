package queue

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRun_SequentialFIFO(t *testing.T) {
	var seen []int
	runner := NewRunner(func(_ context.Context, task int) error {
		seen = append(seen, task)
		return nil
	})

	outcomes := runner.Run(context.Background(), []int{3, 1, 2})

	require.Equal(t, []int{3, 1, 2}, seen)
	require.Len(t, outcomes, 3)
	require.Zero(t, FailedCount(outcomes))
}

func TestRun_ContinuesPastFailures(t *testing.T) {
	boom := errors.New("producto agotado")
	attempted := 0
	runner := NewRunner(func(_ context.Context, task int) error {
		attempted++
		if task == 2 {
			return boom
		}
		return nil
	})

	outcomes := runner.Run(context.Background(), []int{1, 2, 3, 4})

	require.Equal(t, 4, attempted)
	require.Equal(t, 1, FailedCount(outcomes))
	require.ErrorIs(t, outcomes[1].Err, boom)
	require.NoError(t, outcomes[3].Err)
}

func TestRun_ProgressCallbackPerTask(t *testing.T) {
	var progressed []int
	runner := NewRunner(
		func(_ context.Context, task int) error { return nil },
		WithProgress(func(task int, err error) {
			require.NoError(t, err)
			progressed = append(progressed, task)
		}),
	)

	runner.Run(context.Background(), []int{5, 6})

	require.Equal(t, []int{5, 6}, progressed)
}

func TestRun_CancelledContextSkipsRemaining(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	runner := NewRunner(func(_ context.Context, task int) error {
		if task == 1 {
			cancel()
		}
		return nil
	})

	outcomes := runner.Run(ctx, []int{1, 2, 3})

	require.NoError(t, outcomes[0].Err)
	require.ErrorIs(t, outcomes[1].Err, context.Canceled)
	require.ErrorIs(t, outcomes[2].Err, context.Canceled)
}
