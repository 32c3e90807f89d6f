package stream

import "context"

// Iterator provides pull-based sequential access to values.
type Iterator[T any] interface {
	// Next returns the next value. Returns (zero, false, nil) when exhausted.
	Next(ctx context.Context) (T, bool, error)
	// Close releases any resources held by the iterator.
	Close() error
}

// Stream is a lazy, restartable sequence of values.
type Stream[T any] struct {
	create func(ctx context.Context) Iterator[T]
}

// --- Constructors ---

// FromFunc creates a stream from a factory. The factory runs once per traversal.
func FromFunc[T any](fn func(ctx context.Context) Iterator[T]) *Stream[T] {
	return &Stream[T]{create: fn}
}

// FromSlice creates a stream over items.
func FromSlice[T any](items []T) *Stream[T] {
	return &Stream[T]{
		create: func(_ context.Context) Iterator[T] {
			return &sliceIter[T]{items: items}
		},
	}
}

// FromNext creates a stream from a next function built fresh for each traversal.
// The function returned by factory reports (zero, false, nil) when done.
func FromNext[T any](factory func() func(ctx context.Context) (T, bool, error)) *Stream[T] {
	return &Stream[T]{
		create: func(_ context.Context) Iterator[T] {
			return &funcIter[T]{next: factory()}
		},
	}
}

// --- Terminals ---

// Iter returns a fresh Iterator over the stream. The caller must Close it.
func (s *Stream[T]) Iter(ctx context.Context) Iterator[T] {
	return s.create(ctx)
}

// ForEach pulls every value and calls fn for each. It stops at the first error.
func ForEach[T any](ctx context.Context, s *Stream[T], fn func(context.Context, T) error) error {
	iter := s.create(ctx)
	defer iter.Close()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		val, ok, err := iter.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := fn(ctx, val); err != nil {
			return err
		}
	}
}

// Collect runs the stream and returns all values. On error it returns the
// values produced before the error along with it.
func Collect[T any](ctx context.Context, s *Stream[T]) ([]T, error) {
	var out []T
	err := ForEach(ctx, s, func(_ context.Context, v T) error {
		out = append(out, v)
		return nil
	})
	return out, err
}

// --- Internal iterators ---

type sliceIter[T any] struct {
	items []T
	index int
}

func (it *sliceIter[T]) Next(_ context.Context) (T, bool, error) {
	if it.index >= len(it.items) {
		var zero T
		return zero, false, nil
	}
	val := it.items[it.index]
	it.index++
	return val, true, nil
}

func (it *sliceIter[T]) Close() error { return nil }

type funcIter[T any] struct {
	next func(ctx context.Context) (T, bool, error)
	done bool
}

func (it *funcIter[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	if it.done {
		return zero, false, nil
	}
	val, ok, err := it.next(ctx)
	if err != nil || !ok {
		it.done = true
		return zero, false, err
	}
	return val, true, nil
}

func (it *funcIter[T]) Close() error {
	it.done = true
	return nil
}
