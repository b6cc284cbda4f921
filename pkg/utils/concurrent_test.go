package utils

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGatherWithDeadlineAllFinish(t *testing.T) {
	results, errs := GatherWithDeadline(context.Background(),
		func(context.Context) (string, error) { return "a", nil },
		func(context.Context) (string, error) { return "", errors.New("down") },
	)

	assert.Equal(t, []string{"a", ""}, results)
	assert.NoError(t, errs[0])
	assert.EqualError(t, errs[1], "down")
}

func TestGatherWithDeadlineReturnsPartialResults(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	release := make(chan struct{})
	defer close(release)

	start := time.Now()
	results, errs := GatherWithDeadline(ctx,
		func(context.Context) (int, error) { return 7, nil },
		func(context.Context) (int, error) {
			// ignores cancellation on purpose
			<-release
			return 9, nil
		},
	)

	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, 7, results[0])
	assert.NoError(t, errs[0])
	assert.Equal(t, 0, results[1])
	assert.ErrorIs(t, errs[1], context.DeadlineExceeded)
}

func TestGatherWithDeadlineRecoversPanics(t *testing.T) {
	_, errs := GatherWithDeadline(context.Background(), func(context.Context) (int, error) {
		panic("channel exploded")
	})

	var panicErr *PanicError
	require.ErrorAs(t, errs[0], &panicErr)
	assert.Equal(t, "channel exploded", panicErr.Value)
}

func TestRecoverAsError(t *testing.T) {
	fn := func() (err error) {
		defer RecoverAsError(&err)
		panic("test panic")
	}

	var panicErr *PanicError
	require.ErrorAs(t, fn(), &panicErr)
	assert.Equal(t, "panic: test panic", panicErr.Error())

	ok := func() (err error) {
		defer RecoverAsError(&err)
		return nil
	}
	assert.NoError(t, ok())
}

func TestGetSemaphoreLimit(t *testing.T) {
	t.Setenv("SEMAPHORE_LIMIT", "3")
	assert.Equal(t, 3, GetSemaphoreLimit())

	t.Setenv("SEMAPHORE_LIMIT", "nope")
	assert.Equal(t, DefaultSemaphoreLimit, GetSemaphoreLimit())
}
