package retry

import "github.com/Pavankona715/seo-audit-platform/pkg/failure"

// Result holds the outcome of a Retry call: the value (if successful),
// the error (if failed), and the number of attempts made.
type Result[T any] struct {
	value    T
	err      failure.ClassifiedError
	attempts int
}

// NewSuccessResult creates a Result representing a successful attempt.
func NewSuccessResult[T any](value T, attempts int) Result[T] {
	return Result[T]{
		value:    value,
		attempts: attempts,
	}
}

// Value returns the result value.
func (r Result[T]) Value() T {
	return r.value
}

// Err returns the result error, or nil if successful.
func (r Result[T]) Err() failure.ClassifiedError {
	return r.err
}

// Attempts returns the number of attempts made.
func (r Result[T]) Attempts() int {
	return r.attempts
}

// IsSuccess reports whether the retry succeeded.
func (r Result[T]) IsSuccess() bool {
	return r.err == nil
}

// IsFailure reports whether the retry failed.
func (r Result[T]) IsFailure() bool {
	return r.err != nil
}
