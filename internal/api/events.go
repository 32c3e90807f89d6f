package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rickgao/kalshi-livegames/internal/model"
)

// ErrEmptyTicker is returned by GetEvent when called without a ticker.
var ErrEmptyTicker = errors.New("event ticker is required")

// GetEvents fetches one page of events. The query always carries limit and
// status; cursor is sent only when non-empty.
func (c *Client) GetEvents(ctx context.Context, opts GetEventsOptions) (*EventsResponse, error) {
	opts = opts.withDefaults()

	query := url.Values{}
	query.Set("limit", strconv.Itoa(opts.Limit))
	query.Set("status", opts.Status)

	if opts.Cursor != "" {
		query.Set("cursor", opts.Cursor)
	}
	if opts.SeriesTicker != "" {
		query.Set("series_ticker", opts.SeriesTicker)
	}
	if opts.WithNestedMarkets {
		query.Set("with_nested_markets", "true")
	}
	if opts.MinCloseTS > 0 {
		query.Set("min_close_ts", strconv.FormatInt(opts.MinCloseTS, 10))
	}

	var resp EventsResponse
	if err := c.get(ctx, "/events", query, &resp); err != nil {
		return nil, fmt.Errorf("get events: %w", err)
	}

	return &resp, nil
}

// GetEvent fetches a single event by ticker, optionally with its markets nested.
func (c *Client) GetEvent(ctx context.Context, eventTicker string, withNestedMarkets bool) (*model.Event, error) {
	if eventTicker == "" {
		return nil, ErrEmptyTicker
	}

	var query url.Values
	if withNestedMarkets {
		query = url.Values{"with_nested_markets": {"true"}}
	}

	body, err := c.doRequest(ctx, http.MethodGet, "/events/"+url.PathEscape(eventTicker), query)
	if err != nil {
		return nil, fmt.Errorf("get event %s: %w", eventTicker, err)
	}

	event, err := decodeEvent(body)
	if err != nil {
		return nil, fmt.Errorf("get event %s: %w", eventTicker, err)
	}
	return event, nil
}

// decodeEvent accepts either {"event": {...}, "markets": [...]} or a bare event.
func decodeEvent(body []byte) (*model.Event, error) {
	var env eventEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	raw := env.Event
	if len(raw) == 0 || string(raw) == "null" {
		raw = body
	}

	var event model.Event
	if err := json.Unmarshal(raw, &event); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	if len(event.Markets) == 0 && len(env.Markets) > 0 {
		event.Markets = env.Markets
	}
	return &event, nil
}
