package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rickgao/kalshi-livegames/internal/api"
	"github.com/rickgao/kalshi-livegames/internal/model"
	"github.com/rickgao/kalshi-livegames/internal/stream"
)

// ErrCursorLoop is returned when the API hands back the cursor it was given.
var ErrCursorLoop = errors.New("pagination cursor did not advance")

// EventLister fetches one page of events.
type EventLister interface {
	GetEvents(ctx context.Context, opts api.GetEventsOptions) (*api.EventsResponse, error)
}

// EventGetter fetches a single event by ticker.
type EventGetter interface {
	GetEvent(ctx context.Context, eventTicker string, withNestedMarkets bool) (*model.Event, error)
}

// Events returns a lazy stream over every event the API lists for opts.
// Each traversal starts from the first page; opts.Cursor is ignored.
// Pages are fetched only when the previous page has been consumed.
func Events(lister EventLister, opts api.GetEventsOptions, logger *slog.Logger) *stream.Stream[model.Event] {
	if logger == nil {
		logger = slog.Default()
	}
	return stream.FromFunc(func(_ context.Context) stream.Iterator[model.Event] {
		opts := opts
		opts.Cursor = ""
		return &eventsIter{lister: lister, opts: opts, logger: logger}
	})
}

type eventsIter struct {
	lister EventLister
	opts   api.GetEventsOptions
	logger *slog.Logger

	page  []model.Event
	pages int
	done  bool
	err   error
}

func (it *eventsIter) Next(ctx context.Context) (model.Event, bool, error) {
	for len(it.page) == 0 {
		if it.done {
			return model.Event{}, false, it.takeErr()
		}
		if err := it.fetch(ctx); err != nil {
			it.done = true
			return model.Event{}, false, err
		}
	}

	ev := it.page[0]
	it.page = it.page[1:]
	return ev, true, nil
}

// fetch loads the next page and advances the cursor.
func (it *eventsIter) fetch(ctx context.Context) error {
	resp, err := it.lister.GetEvents(ctx, it.opts)
	if err != nil {
		return fmt.Errorf("fetch events page %d: %w", it.pages+1, err)
	}
	it.pages++
	it.page = resp.Events

	it.logger.Debug("fetched events page",
		"page", it.pages,
		"events", len(resp.Events),
		"has_next", resp.Cursor != "",
	)

	switch {
	case resp.Cursor == "":
		it.done = true
	case resp.Cursor == it.opts.Cursor:
		// Yield what this page holds, then fail.
		it.done = true
		it.err = fmt.Errorf("fetch events page %d: %w (cursor %q)", it.pages, ErrCursorLoop, resp.Cursor)
	default:
		it.opts.Cursor = resp.Cursor
	}
	return nil
}

func (it *eventsIter) takeErr() error {
	err := it.err
	it.err = nil
	return err
}

func (it *eventsIter) Close() error {
	it.page = nil
	it.done = true
	return nil
}
