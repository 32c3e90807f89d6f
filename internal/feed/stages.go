package feed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rickgao/kalshi-livegames/internal/model"
	"github.com/rickgao/kalshi-livegames/internal/stream"
)

// Enrich replaces each event with the full record from the detail endpoint.
// Events without a ticker are dropped without a request. Detail lookups are
// not cached; the same ticker seen twice is fetched twice.
func Enrich(s *stream.Stream[model.Event], getter EventGetter, withNestedMarkets bool, logger *slog.Logger) *stream.Stream[model.Event] {
	if logger == nil {
		logger = slog.Default()
	}
	return stream.FilterMap(s, func(ctx context.Context, ev model.Event) (model.Event, bool, error) {
		if ev.EventTicker == "" {
			logger.Debug("skipping event without ticker", "title", ev.Title)
			return model.Event{}, false, nil
		}

		full, err := getter.GetEvent(ctx, ev.EventTicker, withNestedMarkets)
		if err != nil {
			return model.Event{}, false, fmt.Errorf("enrich event: %w", err)
		}
		return *full, true, nil
	})
}

// ExtractMarkets flattens each event into its markets. An event with no
// markets contributes nothing.
func ExtractMarkets(s *stream.Stream[model.Event]) *stream.Stream[model.Market] {
	return stream.FlatMap(s, func(_ context.Context, ev model.Event) ([]model.Market, error) {
		return MarketsOf(ev), nil
	})
}

// MarketsOf returns copies of ev's markets carrying the parent category.
// A market without an event ticker also inherits the parent's.
func MarketsOf(ev model.Event) []model.Market {
	if len(ev.Markets) == 0 {
		return nil
	}
	out := make([]model.Market, 0, len(ev.Markets))
	for _, m := range ev.Markets {
		c := m.Clone()
		c.Category = ev.Category
		if c.EventTicker == "" {
			c.EventTicker = ev.EventTicker
		}
		out = append(out, c)
	}
	return out
}

// Project reduces each record to the keys in fm. Missing source keys become null.
func Project[T model.Fielder](s *stream.Stream[T], fm model.FieldMap) *stream.Stream[model.Summary] {
	return stream.Map(s, func(_ context.Context, r T) (model.Summary, error) {
		return model.NewSummary(r, fm), nil
	})
}
