package model

import "github.com/shopspring/decimal"

// Market statuses that count as tradeable.
const (
	StatusOpen   = "open"
	StatusActive = "active"
)

// Market represents an individual tradeable contract, usually nested in an Event.
type Market struct {
	Ticker      string `json:"ticker"`       // e.g. "KXNBAGAME-25NOV02LALBOS-LAL"
	EventTicker string `json:"event_ticker"` // Parent event
	MarketType  string `json:"market_type,omitempty"`
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle,omitempty"`
	YesSubTitle string `json:"yes_sub_title,omitempty"`
	NoSubTitle  string `json:"no_sub_title,omitempty"`
	Status      string `json:"status"`
	Result      string `json:"result"` // Empty until settled

	// Timing (RFC 3339 strings as sent by the API)
	OpenTime               string `json:"open_time,omitempty"`
	CloseTime              string `json:"close_time,omitempty"`
	ExpirationTime         string `json:"expiration_time,omitempty"`
	ExpectedExpirationTime string `json:"expected_expiration_time,omitempty"`
	LatestExpirationTime   string `json:"latest_expiration_time,omitempty"`

	// Prices
	LastPrice        int              `json:"last_price"` // cents
	LastPriceDollars *decimal.Decimal `json:"last_price_dollars,omitempty"`
	YesBid           int              `json:"yes_bid,omitempty"`
	YesAsk           int              `json:"yes_ask,omitempty"`

	Volume       int64 `json:"volume,omitempty"`
	OpenInterest int64 `json:"open_interest,omitempty"`

	// Category is not sent on markets; it is copied from the parent event
	// when markets are flattened out of it.
	Category string `json:"category,omitempty"`

	// Extra holds API fields not modeled above.
	Extra map[string]any `json:"-"`
}

var marketKeys = keySet(
	"ticker", "event_ticker", "market_type", "title", "subtitle",
	"yes_sub_title", "no_sub_title", "status", "result",
	"open_time", "close_time", "expiration_time",
	"expected_expiration_time", "latest_expiration_time",
	"last_price", "last_price_dollars", "yes_bid", "yes_ask",
	"volume", "open_interest", "category",
)

type marketFields Market

// UnmarshalJSON decodes a market, keeping unknown keys in Extra.
func (m *Market) UnmarshalJSON(data []byte) error {
	var f marketFields
	extra, err := decodeWithExtra(data, &f, marketKeys)
	if err != nil {
		return err
	}
	*m = Market(f)
	m.Extra = extra
	return nil
}

// MarshalJSON encodes a market including its Extra keys.
func (m Market) MarshalJSON() ([]byte, error) {
	return encodeWithExtra(marketFields(m), m.Extra)
}

// Clone returns a copy that shares no mutable state with m.
func (m Market) Clone() Market {
	c := m
	if m.LastPriceDollars != nil {
		d := *m.LastPriceDollars
		c.LastPriceDollars = &d
	}
	c.Extra = cloneExtra(m.Extra)
	return c
}

// ExpirationCandidate returns the first non-empty of expected, latest and
// plain expiration time.
func (m Market) ExpirationCandidate() string {
	switch {
	case m.ExpectedExpirationTime != "":
		return m.ExpectedExpirationTime
	case m.LatestExpirationTime != "":
		return m.LatestExpirationTime
	default:
		return m.ExpirationTime
	}
}

// Price returns the last traded price in dollars, preferring the
// sub-penny string field over the cents field.
func (m Market) Price() decimal.Decimal {
	if m.LastPriceDollars != nil {
		return *m.LastPriceDollars
	}
	return decimal.New(int64(m.LastPrice), -2)
}

// Field looks up a value by its JSON key. Modeled keys always resolve,
// unknown keys resolve only when present in Extra.
func (m Market) Field(key string) (any, bool) {
	switch key {
	case "ticker":
		return m.Ticker, true
	case "event_ticker":
		return m.EventTicker, true
	case "market_type":
		return m.MarketType, true
	case "title":
		return m.Title, true
	case "subtitle":
		return m.Subtitle, true
	case "yes_sub_title":
		return m.YesSubTitle, true
	case "no_sub_title":
		return m.NoSubTitle, true
	case "status":
		return m.Status, true
	case "result":
		return m.Result, true
	case "open_time":
		return m.OpenTime, true
	case "close_time":
		return m.CloseTime, true
	case "expiration_time":
		return m.ExpirationTime, true
	case "expected_expiration_time":
		return m.ExpectedExpirationTime, true
	case "latest_expiration_time":
		return m.LatestExpirationTime, true
	case "last_price":
		return m.LastPrice, true
	case "last_price_dollars":
		if m.LastPriceDollars == nil {
			return nil, false
		}
		return *m.LastPriceDollars, true
	case "yes_bid":
		return m.YesBid, true
	case "yes_ask":
		return m.YesAsk, true
	case "volume":
		return m.Volume, true
	case "open_interest":
		return m.OpenInterest, true
	case "category":
		return m.Category, true
	}
	return lookupExtra(m.Extra, key)
}
