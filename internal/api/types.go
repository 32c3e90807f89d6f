package api

import (
	"encoding/json"

	"github.com/rickgao/kalshi-livegames/internal/model"
)

// Page size and status applied when a request leaves them unset.
const (
	DefaultPageLimit = 200
	MaxPageLimit     = 200
	DefaultStatus    = "open"
)

// EventsResponse from GET /events
type EventsResponse struct {
	Events []model.Event `json:"events"`
	Cursor string        `json:"cursor"`
}

// eventEnvelope from GET /events/{event_ticker}. With nested markets the
// markets live inside the event; without, they sit next to it.
type eventEnvelope struct {
	Event   json.RawMessage `json:"event"`
	Markets []model.Market  `json:"markets"`
}

// GetEventsOptions configures a GetEvents request.
type GetEventsOptions struct {
	Limit             int    // Page size, 1-200 (default 200)
	Cursor            string // Continuation token from the previous page
	Status            string // open, closed, settled (default open)
	SeriesTicker      string
	WithNestedMarkets bool
	MinCloseTS        int64 // Unix seconds; 0 means unset
}

func (o GetEventsOptions) withDefaults() GetEventsOptions {
	if o.Limit <= 0 {
		o.Limit = DefaultPageLimit
	}
	if o.Limit > MaxPageLimit {
		o.Limit = MaxPageLimit
	}
	if o.Status == "" {
		o.Status = DefaultStatus
	}
	return o
}
