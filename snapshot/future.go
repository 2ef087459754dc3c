package snapshot

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Future is the result of snapshot production, completed either immediately or later from another goroutine.
//
// Only the first completion counts; later calls are ignored.
type Future[T any] struct {
	done  chan struct{}
	once  sync.Once
	value T
	err   error
}

// Resolved returns a Future that is already completed with value.
func Resolved[T any](value T) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	f.complete(value, nil)

	return f
}

// Rejected returns a Future that is already completed with err.
func Rejected[T any](err error) *Future[T] {
	var zero T
	f := &Future[T]{done: make(chan struct{})}
	f.complete(zero, err)

	return f
}

// Async starts work on its own goroutine and returns a Future completed by the first call to complete.
// The work may hand complete to a callback-driven API (e.g., a render pass) and return early.
// A panic in work rejects the Future with ErrProductionPanicked.
func Async[T any](work func(complete func(T, error))) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}

	go func() {
		defer func() {
			if recovered := recover(); recovered != nil {
				var zero T
				f.complete(zero, fmt.Errorf("%w: %v", ErrProductionPanicked, recovered))
			}
		}()

		work(f.complete)
	}()

	return f
}

func (f *Future[T]) complete(value T, err error) {
	f.once.Do(func() {
		f.value = value
		f.err = err
		close(f.done)
	})
}

// Done returns a channel that is closed once the Future is completed.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await suspends until the Future completes or ctx is done.
// When ctx ends first, the returned error wraps ErrProductionTimeout and the context error.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	default:
	}

	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, errors.Join(ErrProductionTimeout, ctx.Err())
	}
}

// Then chains a transformation that itself may complete later.
// Waiting for the source happens on the goroutine started by Async, never on the caller.
func Then[T, U any](source *Future[T], next func(T) *Future[U]) *Future[U] {
	return Async(func(complete func(U, error)) {
		<-source.done
		if source.err != nil {
			var zero U
			complete(zero, source.err)
			return
		}

		chained := next(source.value)
		if chained == nil {
			var zero U
			complete(zero, ErrNilFuture)
			return
		}

		<-chained.done
		complete(chained.value, chained.err)
	})
}
