package feed

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/rickgao/kalshi-livegames/internal/api"
	"github.com/rickgao/kalshi-livegames/internal/config"
	"github.com/rickgao/kalshi-livegames/internal/model"
	"github.com/rickgao/kalshi-livegames/internal/stream"
)

var testNow = time.Date(2025, 11, 2, 20, 0, 0, 0, time.UTC)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeClient serves pages keyed by the request cursor and details by ticker.
type fakeClient struct {
	pages   map[string]*api.EventsResponse
	details map[string]model.Event

	listErr   error
	detailErr error

	listCalls   []api.GetEventsOptions
	detailCalls []string
}

func (f *fakeClient) GetEvents(_ context.Context, opts api.GetEventsOptions) (*api.EventsResponse, error) {
	f.listCalls = append(f.listCalls, opts)
	if f.listErr != nil {
		return nil, f.listErr
	}
	resp, ok := f.pages[opts.Cursor]
	if !ok {
		return &api.EventsResponse{}, nil
	}
	return resp, nil
}

func (f *fakeClient) GetEvent(_ context.Context, ticker string, _ bool) (*model.Event, error) {
	f.detailCalls = append(f.detailCalls, ticker)
	if f.detailErr != nil {
		return nil, f.detailErr
	}
	ev, ok := f.details[ticker]
	if !ok {
		return nil, errors.New("not found")
	}
	return &ev, nil
}

func tickers(events []model.Event) string {
	out := make([]string, len(events))
	for i, ev := range events {
		out[i] = ev.EventTicker
	}
	return strings.Join(out, ",")
}

func ts(d time.Duration) string {
	return testNow.Add(d).Format(model.LayoutSeconds)
}

func liveMarket(ticker string) model.Market {
	return model.Market{
		Ticker:                 ticker,
		Status:                 model.StatusActive,
		OpenTime:               ts(-1 * time.Hour),
		ExpectedExpirationTime: ts(2 * time.Hour),
	}
}

func TestEvents_Pagination(t *testing.T) {
	client := &fakeClient{pages: map[string]*api.EventsResponse{
		"":    {Events: []model.Event{{EventTicker: "A"}, {EventTicker: "B"}}, Cursor: "abc"},
		"abc": {Events: []model.Event{{EventTicker: "C"}}},
	}}

	got, err := stream.Collect(context.Background(), Events(client, api.GetEventsOptions{}, quietLogger()))
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if tickers(got) != "A,B,C" {
		t.Errorf("events = %s, want A,B,C", tickers(got))
	}
	if len(client.listCalls) != 2 {
		t.Fatalf("list calls = %d, want 2", len(client.listCalls))
	}
	if client.listCalls[0].Cursor != "" {
		t.Errorf("first cursor = %q, want empty", client.listCalls[0].Cursor)
	}
	if client.listCalls[1].Cursor != "abc" {
		t.Errorf("second cursor = %q, want abc", client.listCalls[1].Cursor)
	}
}

func TestEvents_Lazy(t *testing.T) {
	client := &fakeClient{pages: map[string]*api.EventsResponse{
		"":    {Events: []model.Event{{EventTicker: "A"}, {EventTicker: "B"}}, Cursor: "abc"},
		"abc": {Events: []model.Event{{EventTicker: "C"}}},
	}}
	s := Events(client, api.GetEventsOptions{}, quietLogger())

	if len(client.listCalls) != 0 {
		t.Fatalf("list calls before iteration = %d, want 0", len(client.listCalls))
	}

	got, err := stream.Collect(context.Background(), stream.Limit(s, 2))
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if tickers(got) != "A,B" {
		t.Errorf("events = %s, want A,B", tickers(got))
	}
	if len(client.listCalls) != 1 {
		t.Errorf("list calls = %d, want 1", len(client.listCalls))
	}
}

func TestEvents_EmptyPageWithCursorContinues(t *testing.T) {
	client := &fakeClient{pages: map[string]*api.EventsResponse{
		"":   {Cursor: "p2"},
		"p2": {Events: []model.Event{{EventTicker: "A"}}},
	}}

	got, err := stream.Collect(context.Background(), Events(client, api.GetEventsOptions{}, quietLogger()))
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if tickers(got) != "A" {
		t.Errorf("events = %s, want A", tickers(got))
	}
}

func TestEvents_Restartable(t *testing.T) {
	client := &fakeClient{pages: map[string]*api.EventsResponse{
		"":    {Events: []model.Event{{EventTicker: "A"}}, Cursor: "abc"},
		"abc": {Events: []model.Event{{EventTicker: "B"}}},
	}}
	s := Events(client, api.GetEventsOptions{Cursor: "stale"}, quietLogger())

	for i := 0; i < 2; i++ {
		got, err := stream.Collect(context.Background(), s)
		if err != nil {
			t.Fatalf("pass %d: Collect() error = %v", i, err)
		}
		if tickers(got) != "A,B" {
			t.Errorf("pass %d: events = %s, want A,B", i, tickers(got))
		}
	}
	if len(client.listCalls) != 4 {
		t.Errorf("list calls = %d, want 4", len(client.listCalls))
	}
	if client.listCalls[2].Cursor != "" {
		t.Errorf("second traversal started at cursor %q", client.listCalls[2].Cursor)
	}
}

func TestEvents_CursorLoop(t *testing.T) {
	client := &fakeClient{pages: map[string]*api.EventsResponse{
		"":    {Events: []model.Event{{EventTicker: "A"}}, Cursor: "abc"},
		"abc": {Events: []model.Event{{EventTicker: "B"}}, Cursor: "abc"},
	}}

	got, err := stream.Collect(context.Background(), Events(client, api.GetEventsOptions{}, quietLogger()))
	if !errors.Is(err, ErrCursorLoop) {
		t.Fatalf("Collect() error = %v, want ErrCursorLoop", err)
	}
	if tickers(got) != "A,B" {
		t.Errorf("events before error = %s, want A,B", tickers(got))
	}
	if len(client.listCalls) != 2 {
		t.Errorf("list calls = %d, want 2", len(client.listCalls))
	}
}

func TestEvents_FetchError(t *testing.T) {
	cause := &api.TransportError{Method: "GET", URL: "http://x/events", Err: &api.APIError{StatusCode: 503}}
	client := &fakeClient{listErr: cause}

	_, err := stream.Collect(context.Background(), Events(client, api.GetEventsOptions{}, quietLogger()))
	if err == nil {
		t.Fatal("expected error")
	}
	if !api.IsTransportError(err) {
		t.Errorf("error %v should unwrap to a TransportError", err)
	}
	if !strings.Contains(err.Error(), "fetch events page 1") {
		t.Errorf("error = %q, want page context", err.Error())
	}
}

func TestEnrich(t *testing.T) {
	client := &fakeClient{details: map[string]model.Event{
		"A": {EventTicker: "A", Title: "full A"},
		"B": {EventTicker: "B", Title: "full B"},
	}}
	in := stream.FromSlice([]model.Event{
		{EventTicker: "A", Title: "short"},
		{EventTicker: "", Title: "no ticker"},
		{EventTicker: "B", Title: "short"},
		{EventTicker: "A", Title: "again"},
	})

	got, err := stream.Collect(context.Background(), Enrich(in, client, true, quietLogger()))
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if tickers(got) != "A,B,A" {
		t.Errorf("events = %s, want A,B,A", tickers(got))
	}
	for _, ev := range got {
		if !strings.HasPrefix(ev.Title, "full") {
			t.Errorf("event %s not replaced by detail: %q", ev.EventTicker, ev.Title)
		}
	}
	// Empty ticker skipped, repeated ticker fetched again.
	if strings.Join(client.detailCalls, ",") != "A,B,A" {
		t.Errorf("detail calls = %v, want [A B A]", client.detailCalls)
	}
}

func TestEnrich_EmptyTickerNoRequest(t *testing.T) {
	client := &fakeClient{}
	in := stream.FromSlice([]model.Event{{Title: "no ticker"}})

	got, err := stream.Collect(context.Background(), Enrich(in, client, false, quietLogger()))
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d events, want 0", len(got))
	}
	if len(client.detailCalls) != 0 {
		t.Errorf("detail calls = %d, want 0", len(client.detailCalls))
	}
}

func TestEnrich_ErrorAborts(t *testing.T) {
	client := &fakeClient{detailErr: errors.New("boom")}
	in := stream.FromSlice([]model.Event{{EventTicker: "A"}, {EventTicker: "B"}})

	_, err := stream.Collect(context.Background(), Enrich(in, client, false, quietLogger()))
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("Collect() error = %v, want boom", err)
	}
	if len(client.detailCalls) != 1 {
		t.Errorf("detail calls = %d, want 1", len(client.detailCalls))
	}
}

func TestExtractMarkets(t *testing.T) {
	parent := model.Event{
		EventTicker: "EV",
		Category:    "Sports",
		Markets: []model.Market{
			{Ticker: "M1"},
			{Ticker: "M2", EventTicker: "OTHER"},
		},
	}
	in := stream.FromSlice([]model.Event{{EventTicker: "EMPTY", Category: "Sports"}, parent})

	got, err := stream.Collect(context.Background(), ExtractMarkets(in))
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d markets, want 2", len(got))
	}
	for _, m := range got {
		if m.Category != "Sports" {
			t.Errorf("market %s category = %q, want Sports", m.Ticker, m.Category)
		}
	}
	if got[0].EventTicker != "EV" {
		t.Errorf("M1 event_ticker = %q, want EV", got[0].EventTicker)
	}
	if got[1].EventTicker != "OTHER" {
		t.Errorf("M2 event_ticker = %q, want OTHER", got[1].EventTicker)
	}
	if parent.Markets[0].Category != "" {
		t.Error("parent's markets were mutated")
	}
}

func TestProject(t *testing.T) {
	m := model.Market{Ticker: "M1", Extra: map[string]any{"x": 1.0}}
	fm := model.FieldMap{{Key: "a", Source: "x"}, {Key: "b", Source: "y"}, {Key: "t", Source: "ticker"}}

	got, err := stream.Collect(context.Background(), Project(stream.FromSlice([]model.Market{m}), fm))
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d summaries, want 1", len(got))
	}
	data, err := json.Marshal(got[0])
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != `{"a":1,"b":null,"t":"M1"}` {
		t.Errorf("summary = %s", data)
	}
}

func TestIsLive(t *testing.T) {
	w := DefaultLiveWindow()

	tests := []struct {
		name   string
		modify func(*model.Market)
		want   bool
	}{
		{"in window", func(*model.Market) {}, true},
		{"open status", func(m *model.Market) { m.Status = model.StatusOpen }, true},
		{"just opened", func(m *model.Market) { m.OpenTime = ts(-6 * time.Minute) }, false},
		{"opened exactly at minimum", func(m *model.Market) { m.OpenTime = ts(-30 * time.Minute) }, true},
		{"already expired", func(m *model.Market) { m.ExpectedExpirationTime = ts(-1 * time.Minute) }, false},
		{"expires too late", func(m *model.Market) { m.ExpectedExpirationTime = ts(5 * time.Hour) }, false},
		{"expires at max", func(m *model.Market) { m.ExpectedExpirationTime = ts(4 * time.Hour) }, true},
		{"closed", func(m *model.Market) { m.Status = "closed" }, false},
		{"settled", func(m *model.Market) { m.Result = "yes" }, false},
		{"unparseable expiration", func(m *model.Market) { m.ExpectedExpirationTime = "soon" }, false},
		{"missing open time", func(m *model.Market) { m.OpenTime = "" }, false},
		{
			name: "falls back to latest expiration",
			modify: func(m *model.Market) {
				m.ExpectedExpirationTime = ""
				m.LatestExpirationTime = ts(time.Hour)
				m.ExpirationTime = ts(48 * time.Hour)
			},
			want: true,
		},
		{
			name: "falls back to expiration time",
			modify: func(m *model.Market) {
				m.ExpectedExpirationTime = ""
				m.ExpirationTime = ts(48 * time.Hour)
			},
			want: false,
		},
		{
			name:   "fractional seconds",
			modify: func(m *model.Market) { m.OpenTime = testNow.Add(-time.Hour).Format("2006-01-02T15:04:05.000000Z") },
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := liveMarket("M")
			tt.modify(&m)
			if got := IsLive(m, testNow, w); got != tt.want {
				t.Errorf("IsLive() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCategoryIs(t *testing.T) {
	ev := model.Event{Category: "Sports"}

	if !CategoryIs("Sports", false)(ev) {
		t.Error("exact match should pass")
	}
	if CategoryIs("sports", false)(ev) {
		t.Error("case differs without folding")
	}
	if !CategoryIs("SPORTS", true)(ev) {
		t.Error("folded match should pass")
	}
	if CategoryIs("Sports", true)(model.Event{}) {
		t.Error("missing category should not match")
	}
	if !MarketCategoryIs("sports", true)(model.Market{Category: "Sports"}) {
		t.Error("market folded match should pass")
	}
	if !TickerIs("A")(model.Event{EventTicker: "A"}) || TickerIs("A")(model.Event{EventTicker: "B"}) {
		t.Error("TickerIs mismatch")
	}
}

func TestEventsOptions(t *testing.T) {
	tests := []struct {
		name       string
		modify     func(*config.Config)
		wantNested bool
		wantMinTS  int64
	}{
		{"default extracts from listing", func(*config.Config) {}, true, 0},
		{"enrich fetches markets per event", func(c *config.Config) { c.Pipeline.Enrich = true }, false, 0},
		{"explicit nested", func(c *config.Config) {
			c.Pipeline.ExtractMarkets = false
			c.Events.WithNestedMarkets = true
		}, true, 0},
		{"only unclosed", func(c *config.Config) { c.Events.OnlyUnclosed = true }, true, testNow.Unix()},
		{"explicit min close wins", func(c *config.Config) {
			c.Events.OnlyUnclosed = true
			c.Events.MinCloseTS = 42
		}, true, 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.modify(cfg)
			opts := EventsOptions(cfg, testNow)
			if opts.WithNestedMarkets != tt.wantNested {
				t.Errorf("WithNestedMarkets = %v, want %v", opts.WithNestedMarkets, tt.wantNested)
			}
			if opts.MinCloseTS != tt.wantMinTS {
				t.Errorf("MinCloseTS = %d, want %d", opts.MinCloseTS, tt.wantMinTS)
			}
			if opts.Status != "open" || opts.Limit != 200 {
				t.Errorf("Status/Limit = %q/%d, want open/200", opts.Status, opts.Limit)
			}
		})
	}
}

func TestBuild_DefaultLiveSports(t *testing.T) {
	stale := liveMarket("STALE")
	stale.ExpectedExpirationTime = ts(10 * time.Hour)

	client := &fakeClient{pages: map[string]*api.EventsResponse{
		"": {
			Events: []model.Event{
				{EventTicker: "G1", Category: "Sports", Markets: []model.Market{liveMarket("G1-A"), stale}},
				{EventTicker: "P1", Category: "Politics", Markets: []model.Market{liveMarket("P1-A")}},
			},
			Cursor: "next",
		},
		"next": {
			Events: []model.Event{
				{EventTicker: "G2", Category: "Sports", Markets: []model.Market{liveMarket("G2-A")}},
			},
		},
	}}

	res := Build(config.Default(), client, WithClock(func() time.Time { return testNow }), WithLogger(quietLogger()))
	if res.Kind != KindMarkets || !res.Summarized() {
		t.Fatalf("Kind = %q, Summarized = %v", res.Kind, res.Summarized())
	}

	got, err := stream.Collect(context.Background(), res.Records)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	var ids []string
	for _, r := range got {
		s, ok := r.(model.Summary)
		if !ok {
			t.Fatalf("record type %T, want model.Summary", r)
		}
		v, _ := s.Get("ticker")
		ids = append(ids, v.(string))
		if c, _ := s.Get("category"); c != "Sports" {
			t.Errorf("%v category = %v, want Sports", v, c)
		}
	}
	if strings.Join(ids, ",") != "G1-A,G2-A" {
		t.Errorf("tickers = %v, want [G1-A G2-A]", ids)
	}
	if !client.listCalls[0].WithNestedMarkets {
		t.Error("listing should request nested markets")
	}
	if res.Stats.Events != 3 || res.Stats.Markets != 3 || res.Stats.Live != 2 || res.Stats.Emitted != 2 {
		t.Errorf("stats = %+v", *res.Stats)
	}
}

func TestBuild_LimitStopsPaging(t *testing.T) {
	client := &fakeClient{pages: map[string]*api.EventsResponse{
		"":   {Events: []model.Event{{EventTicker: "A", Category: "Sports"}, {EventTicker: "B", Category: "Sports"}}, Cursor: "p2"},
		"p2": {Events: []model.Event{{EventTicker: "C", Category: "Sports"}}},
	}}
	cfg := config.Default()
	one := 1
	cfg.Pipeline.ExtractMarkets = false
	cfg.Pipeline.LiveOnly = false
	cfg.Pipeline.MaxResults = &one
	cfg.Pipeline.SummaryFields = nil

	res := Build(cfg, client, WithLogger(quietLogger()))
	got, err := stream.Collect(context.Background(), res.Records)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d records, want 1", len(got))
	}
	if ev, ok := got[0].(model.Event); !ok || ev.EventTicker != "A" {
		t.Errorf("record = %#v, want event A", got[0])
	}
	if res.Kind != KindEvents || res.Summarized() {
		t.Errorf("Kind = %q, Summarized = %v", res.Kind, res.Summarized())
	}
	if len(client.listCalls) != 1 {
		t.Errorf("list calls = %d, want 1", len(client.listCalls))
	}
}

func TestBuild_EnrichAndTickerFilter(t *testing.T) {
	client := &fakeClient{
		pages: map[string]*api.EventsResponse{
			"": {Events: []model.Event{
				{EventTicker: "A", Category: "Sports"},
				{EventTicker: "B", Category: "Sports"},
			}},
		},
		details: map[string]model.Event{
			"B": {EventTicker: "B", Category: "Sports", Markets: []model.Market{{Ticker: "B-1"}, {Ticker: "B-2"}}},
		},
	}
	cfg := config.Default()
	cfg.Pipeline.Ticker = "B"
	cfg.Pipeline.Enrich = true
	cfg.Pipeline.LiveOnly = false
	cfg.Pipeline.SummaryFields = model.FieldMap{{Key: "m", Source: "ticker"}, {Key: "e", Source: "event_ticker"}}

	res := Build(cfg, client, WithLogger(quietLogger()))
	got, err := stream.Collect(context.Background(), res.Records)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}
	if strings.Join(client.detailCalls, ",") != "B" {
		t.Errorf("detail calls = %v, want [B]", client.detailCalls)
	}
	if e, _ := got[1].(model.Summary).Get("e"); e != "B" {
		t.Errorf("event_ticker = %v, want B", e)
	}
	if client.listCalls[0].WithNestedMarkets {
		t.Error("listing should not ask for nested markets when enriching")
	}
}
