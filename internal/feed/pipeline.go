package feed

import (
	"context"
	"log/slog"
	"time"

	"github.com/rickgao/kalshi-livegames/internal/api"
	"github.com/rickgao/kalshi-livegames/internal/config"
	"github.com/rickgao/kalshi-livegames/internal/model"
	"github.com/rickgao/kalshi-livegames/internal/stream"
)

// Client is the subset of the API client the pipeline needs.
type Client interface {
	EventLister
	EventGetter
}

// Record kinds produced by a pipeline.
const (
	KindEvents  = "events"
	KindMarkets = "markets"
)

// Stats counts records passing through a pipeline's stages. Counts
// accumulate across traversals.
type Stats struct {
	Events   int
	Enriched int
	Markets  int
	Live     int
	Emitted  int
}

// Result is an assembled pipeline.
type Result struct {
	// Records yields model.Summary values when Keys is non-empty, otherwise
	// full model.Market or model.Event records depending on Kind.
	Records *stream.Stream[any]
	Keys    []string
	Kind    string
	Stats   *Stats
}

// Summarized reports whether Records yields summaries.
func (r *Result) Summarized() bool {
	return len(r.Keys) > 0
}

// BuildOption configures Build.
type BuildOption func(*buildOptions)

type buildOptions struct {
	now    func() time.Time
	logger *slog.Logger
}

// WithClock sets the time source used by the live filter and only_unclosed.
func WithClock(now func() time.Time) BuildOption {
	return func(o *buildOptions) {
		if now != nil {
			o.now = now
		}
	}
}

// WithLogger sets the logger for pipeline stages.
func WithLogger(logger *slog.Logger) BuildOption {
	return func(o *buildOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Build assembles the pipeline described by cfg. Stages run in a fixed
// order: source, category filter, ticker filter, enrich, extract markets,
// live filter, limit, project. Nothing is fetched until Records is iterated.
func Build(cfg *config.Config, client Client, opts ...BuildOption) *Result {
	o := buildOptions{now: time.Now, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	p := cfg.Pipeline
	stats := &Stats{}

	listOpts := EventsOptions(cfg, o.now())
	events := Events(client, listOpts, o.logger)
	events = stream.Tap(events, count[model.Event](&stats.Events))

	if p.Category != "" {
		events = stream.Filter(events, CategoryIs(p.Category, p.CategoryFold))
	}
	if p.Ticker != "" {
		events = stream.Filter(events, TickerIs(p.Ticker))
	}
	if p.Enrich {
		events = Enrich(events, client, p.NestedMarkets || p.ExtractMarkets, o.logger)
		events = stream.Tap(events, count[model.Event](&stats.Enriched))
	}

	res := &Result{Stats: stats, Keys: p.SummaryFields.Keys()}

	if !p.ExtractMarkets {
		events = limit(events, p.MaxResults)
		events = stream.Tap(events, count[model.Event](&stats.Emitted))
		res.Kind = KindEvents
		res.Records = finish(events, p.SummaryFields)
		return res
	}

	markets := ExtractMarkets(events)
	markets = stream.Tap(markets, count[model.Market](&stats.Markets))
	if p.LiveOnly {
		markets = stream.Filter(markets, LiveAt(o.now, LiveWindow{
			MaxHoursUntilExpiration: cfg.Live.MaxHoursUntilExpiration,
			MinHoursSinceOpen:       cfg.Live.MinHoursSinceOpen,
		}))
		markets = stream.Tap(markets, count[model.Market](&stats.Live))
	}
	markets = limit(markets, p.MaxResults)
	markets = stream.Tap(markets, count[model.Market](&stats.Emitted))

	res.Kind = KindMarkets
	res.Records = finish(markets, p.SummaryFields)
	return res
}

// EventsOptions derives the listing query from cfg. Markets are requested
// nested in the listing when they are extracted without enrichment.
func EventsOptions(cfg *config.Config, now time.Time) api.GetEventsOptions {
	opts := api.GetEventsOptions{
		Limit:             cfg.Events.PageLimit,
		Status:            cfg.Events.Status,
		SeriesTicker:      cfg.Events.SeriesTicker,
		WithNestedMarkets: cfg.Events.WithNestedMarkets || (cfg.Pipeline.ExtractMarkets && !cfg.Pipeline.Enrich),
		MinCloseTS:        cfg.Events.MinCloseTS,
	}
	if cfg.Events.OnlyUnclosed && opts.MinCloseTS == 0 {
		opts.MinCloseTS = now.Unix()
	}
	return opts
}

func limit[T any](s *stream.Stream[T], max *int) *stream.Stream[T] {
	if max == nil {
		return s
	}
	return stream.Limit(s, *max)
}

// finish projects records when fm is set and erases the element type.
func finish[T model.Fielder](s *stream.Stream[T], fm model.FieldMap) *stream.Stream[any] {
	if len(fm) > 0 {
		return toAny(Project(s, fm))
	}
	return toAny(s)
}

func toAny[T any](s *stream.Stream[T]) *stream.Stream[any] {
	return stream.Map(s, func(_ context.Context, v T) (any, error) {
		return v, nil
	})
}

func count[T any](n *int) func(context.Context, T) error {
	return func(context.Context, T) error {
		*n++
		return nil
	}
}
