// Package stream provides lazy, pull-based sequences and the generic
// operators used to compose the feed pipeline.
//
// A Stream does no work until it is iterated with Collect, ForEach or Iter.
// Each stage pulls one value at a time from the stage before it, so nothing
// is buffered beyond the value in flight. Errors travel with the values:
// the first error returned by any stage ends the iteration.
//
//	events := stream.FromSlice(page)
//	sports := stream.Filter(events, func(e model.Event) bool { return e.Category == "Sports" })
//	first := stream.Limit(sports, 10)
//	out, err := stream.Collect(ctx, first)
//
// Every call to Iter creates a fresh chain of iterators, so a Stream can be
// traversed more than once and each traversal starts from the beginning.
package stream
