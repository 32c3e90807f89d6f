package stream

import "context"

// Filter keeps only values that satisfy pred. Order is preserved.
func Filter[T any](s *Stream[T], pred func(T) bool) *Stream[T] {
	return &Stream[T]{
		create: func(ctx context.Context) Iterator[T] {
			return &filterIter[T]{source: s.create(ctx), pred: pred}
		},
	}
}

// Limit yields at most n values. A negative n yields everything.
// Once n values have been produced the source is not pulled again.
func Limit[T any](s *Stream[T], n int) *Stream[T] {
	if n < 0 {
		return s
	}
	return &Stream[T]{
		create: func(ctx context.Context) Iterator[T] {
			return &limitIter[T]{source: s.create(ctx), remaining: n}
		},
	}
}

// Map transforms each value with fn.
func Map[I, O any](s *Stream[I], fn func(context.Context, I) (O, error)) *Stream[O] {
	return &Stream[O]{
		create: func(ctx context.Context) Iterator[O] {
			return &mapIter[I, O]{source: s.create(ctx), fn: fn}
		},
	}
}

// FlatMap transforms each value into zero or more values.
func FlatMap[I, O any](s *Stream[I], fn func(context.Context, I) ([]O, error)) *Stream[O] {
	return &Stream[O]{
		create: func(ctx context.Context) Iterator[O] {
			return &flatMapIter[I, O]{source: s.create(ctx), fn: fn}
		},
	}
}

// FilterMap transforms each value and drops those for which fn reports false.
func FilterMap[I, O any](s *Stream[I], fn func(context.Context, I) (O, bool, error)) *Stream[O] {
	return &Stream[O]{
		create: func(ctx context.Context) Iterator[O] {
			return &filterMapIter[I, O]{source: s.create(ctx), fn: fn}
		},
	}
}

// Tap calls fn for each value as a side effect and passes the value through.
func Tap[T any](s *Stream[T], fn func(context.Context, T) error) *Stream[T] {
	return &Stream[T]{
		create: func(ctx context.Context) Iterator[T] {
			return &tapIter[T]{source: s.create(ctx), fn: fn}
		},
	}
}

// --- Iterator implementations ---

type filterIter[T any] struct {
	source Iterator[T]
	pred   func(T) bool
}

func (it *filterIter[T]) Next(ctx context.Context) (T, bool, error) {
	for {
		val, ok, err := it.source.Next(ctx)
		if err != nil || !ok {
			var zero T
			return zero, false, err
		}
		if it.pred(val) {
			return val, true, nil
		}
	}
}

func (it *filterIter[T]) Close() error { return it.source.Close() }

type limitIter[T any] struct {
	source    Iterator[T]
	remaining int
}

func (it *limitIter[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	if it.remaining <= 0 {
		return zero, false, nil
	}
	val, ok, err := it.source.Next(ctx)
	if err != nil || !ok {
		it.remaining = 0
		return zero, false, err
	}
	it.remaining--
	return val, true, nil
}

func (it *limitIter[T]) Close() error { return it.source.Close() }

type mapIter[I, O any] struct {
	source Iterator[I]
	fn     func(context.Context, I) (O, error)
}

func (it *mapIter[I, O]) Next(ctx context.Context) (O, bool, error) {
	var zero O
	val, ok, err := it.source.Next(ctx)
	if err != nil || !ok {
		return zero, false, err
	}
	out, err := it.fn(ctx, val)
	if err != nil {
		return zero, false, err
	}
	return out, true, nil
}

func (it *mapIter[I, O]) Close() error { return it.source.Close() }

type flatMapIter[I, O any] struct {
	source  Iterator[I]
	fn      func(context.Context, I) ([]O, error)
	pending []O
}

func (it *flatMapIter[I, O]) Next(ctx context.Context) (O, bool, error) {
	var zero O
	for len(it.pending) == 0 {
		in, ok, err := it.source.Next(ctx)
		if err != nil || !ok {
			return zero, false, err
		}
		out, err := it.fn(ctx, in)
		if err != nil {
			return zero, false, err
		}
		it.pending = out
	}
	val := it.pending[0]
	it.pending = it.pending[1:]
	return val, true, nil
}

func (it *flatMapIter[I, O]) Close() error {
	it.pending = nil
	return it.source.Close()
}

type filterMapIter[I, O any] struct {
	source Iterator[I]
	fn     func(context.Context, I) (O, bool, error)
}

func (it *filterMapIter[I, O]) Next(ctx context.Context) (O, bool, error) {
	var zero O
	for {
		in, ok, err := it.source.Next(ctx)
		if err != nil || !ok {
			return zero, false, err
		}
		out, keep, err := it.fn(ctx, in)
		if err != nil {
			return zero, false, err
		}
		if keep {
			return out, true, nil
		}
	}
}

func (it *filterMapIter[I, O]) Close() error { return it.source.Close() }

type tapIter[T any] struct {
	source Iterator[T]
	fn     func(context.Context, T) error
}

func (it *tapIter[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	val, ok, err := it.source.Next(ctx)
	if err != nil || !ok {
		return zero, false, err
	}
	if err := it.fn(ctx, val); err != nil {
		return zero, false, err
	}
	return val, true, nil
}

func (it *tapIter[T]) Close() error { return it.source.Close() }
