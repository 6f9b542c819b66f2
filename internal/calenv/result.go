package calenv

// Result is what a source adapter hands to the aggregator: either a
// value or the reason it could not be obtained.
type Result[T any] struct {
	Value T
	Err   error
}

func Ok[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

func Fail[T any](err error) Result[T] {
	return Result[T]{Err: err}
}

func (r Result[T]) Failed() bool {
	return r.Err != nil
}

// Resolve returns the value, or fallback if the result failed. The
// boolean reports whether the value was used.
func (r Result[T]) Resolve(fallback T) (T, bool) {
	if r.Err != nil {
		return fallback, false
	}
	return r.Value, true
}
