package utils

import (
	"context"
	"os"
	"strconv"
)

// DefaultSemaphoreLimit is used when SEMAPHORE_LIMIT is unset or invalid.
const DefaultSemaphoreLimit = 16

// GetSemaphoreLimit returns the default bound on concurrent backend calls.
func GetSemaphoreLimit() int {
	if v, err := strconv.Atoi(os.Getenv("SEMAPHORE_LIMIT")); err == nil && v > 0 {
		return v
	}
	return DefaultSemaphoreLimit
}

// GatherWithDeadline starts every function at once and collects results until
// all have returned or ctx is done, whichever comes first. Slots whose function
// had not returned by then hold the zero value and ctx.Err().
//
// Functions receive ctx and should return promptly once it is cancelled; a
// function that ignores cancellation keeps running in the background but its
// result is discarded.
func GatherWithDeadline[T any](ctx context.Context, functions ...func(context.Context) (T, error)) ([]T, []error) {
	if len(functions) == 0 {
		return nil, nil
	}

	type slot struct {
		index int
		value T
		err   error
	}

	done := make(chan slot, len(functions))
	for i, fn := range functions {
		go func(index int, function func(context.Context) (T, error)) {
			var s slot
			s.index = index
			defer func() { done <- s }()
			defer RecoverWithCallback(func(err error) {
				s.err = err
			})
			s.value, s.err = function(ctx)
		}(i, fn)
	}

	results := make([]T, len(functions))
	errors := make([]error, len(functions))
	finished := make([]bool, len(functions))

	for remaining := len(functions); remaining > 0; remaining-- {
		select {
		case s := <-done:
			results[s.index], errors[s.index] = s.value, s.err
			finished[s.index] = true
		case <-ctx.Done():
			for i := range finished {
				if !finished[i] {
					errors[i] = ctx.Err()
				}
			}
			return results, errors
		}
	}

	return results, errors
}
