package model

// Event represents a grouping of markets (e.g. one game) from the events feed.
type Event struct {
	EventTicker       string `json:"event_ticker"` // Primary key (e.g. "KXNBAGAME-25NOV02LALBOS")
	SeriesTicker      string `json:"series_ticker"`
	Title             string `json:"title"`
	SubTitle          string `json:"sub_title,omitempty"`
	Category          string `json:"category"`
	MutuallyExclusive bool   `json:"mutually_exclusive,omitempty"`

	// Not always sent by the API; kept when present.
	Status         string `json:"status,omitempty"`
	OpenTime       string `json:"open_time,omitempty"`
	ExpirationTime string `json:"expiration_time,omitempty"`
	Result         string `json:"result,omitempty"`

	// Markets is populated when the request asked for nested markets.
	Markets []Market `json:"markets,omitempty"`

	// Extra holds API fields not modeled above.
	Extra map[string]any `json:"-"`
}

var eventKeys = keySet(
	"event_ticker", "series_ticker", "title", "sub_title", "category",
	"mutually_exclusive", "status", "open_time", "expiration_time", "result",
	"markets",
)

type eventFields Event

// UnmarshalJSON decodes an event, keeping unknown keys in Extra.
func (e *Event) UnmarshalJSON(data []byte) error {
	var f eventFields
	extra, err := decodeWithExtra(data, &f, eventKeys)
	if err != nil {
		return err
	}
	*e = Event(f)
	e.Extra = extra
	return nil
}

// MarshalJSON encodes an event including its Extra keys.
func (e Event) MarshalJSON() ([]byte, error) {
	return encodeWithExtra(eventFields(e), e.Extra)
}

// Clone returns a deep copy of the event and its markets.
func (e Event) Clone() Event {
	c := e
	if e.Markets != nil {
		c.Markets = make([]Market, len(e.Markets))
		for i, m := range e.Markets {
			c.Markets[i] = m.Clone()
		}
	}
	c.Extra = cloneExtra(e.Extra)
	return c
}

// Field looks up a value by its JSON key. Modeled keys always resolve,
// unknown keys resolve only when present in Extra.
func (e Event) Field(key string) (any, bool) {
	switch key {
	case "event_ticker":
		return e.EventTicker, true
	case "series_ticker":
		return e.SeriesTicker, true
	case "title":
		return e.Title, true
	case "sub_title":
		return e.SubTitle, true
	case "category":
		return e.Category, true
	case "mutually_exclusive":
		return e.MutuallyExclusive, true
	case "status":
		return e.Status, true
	case "open_time":
		return e.OpenTime, true
	case "expiration_time":
		return e.ExpirationTime, true
	case "result":
		return e.Result, true
	case "markets":
		return len(e.Markets), true
	}
	return lookupExtra(e.Extra, key)
}
