// Package result holds the outcome type returned by every request handler.
package result

import "fmt"

// Result is either a success carrying a value or a failure carrying a
// human-readable reason. The zero value is a failure with an empty reason.
type Result[T any] struct {
	value  T
	reason string
	ok     bool
}

// Success wraps a value.
func Success[T any](value T) Result[T] {
	return Result[T]{value: value, ok: true}
}

// Failure wraps a reason.
func Failure[T any](reason string) Result[T] {
	return Result[T]{reason: reason}
}

func (r Result[T]) IsSuccess() bool { return r.ok }

func (r Result[T]) IsFailure() bool { return !r.ok }

// Value returns the success payload. Calling it on a failure is a
// programming error and panics.
func (r Result[T]) Value() T {
	if !r.ok {
		panic(fmt.Sprintf("result: Value called on failure %q", r.reason))
	}
	return r.value
}

// Reason returns the failure reason, or "" for a success.
func (r Result[T]) Reason() string {
	return r.reason
}

// Get returns the value and whether the result is a success.
func (r Result[T]) Get() (T, bool) {
	return r.value, r.ok
}

func (r Result[T]) String() string {
	if r.ok {
		return fmt.Sprintf("Success(%v)", r.value)
	}
	return fmt.Sprintf("Failure(%s)", r.reason)
}
