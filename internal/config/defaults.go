package config

import (
	"time"

	"github.com/rickgao/kalshi-livegames/internal/model"
)

// Default values for optional configuration fields.
const (
	DefaultRestURL                 = "https://api.elections.kalshi.com/trade-api/v2"
	DefaultAPITimeout              = 30 * time.Second
	DefaultStatus                  = "open"
	DefaultPageLimit               = 200
	MaxPageLimit                   = 200
	DefaultCategory                = "Sports"
	DefaultMaxHoursUntilExpiration = 4
	DefaultMinHoursSinceOpen       = 0.5
	DefaultFormat                  = FormatJSON
	DefaultLogLevel                = "info"
	DefaultLogFormat               = "text"
)

// Output formats.
const (
	FormatJSON     = "json"
	FormatEnvelope = "envelope"
	FormatTable    = "table"
)

// DefaultMarketSummary is the summary printed for each live market.
func DefaultMarketSummary() model.FieldMap {
	return model.FieldMap{
		{Key: "ticker", Source: "ticker"},
		{Key: "event_ticker", Source: "event_ticker"},
		{Key: "title", Source: "title"},
		{Key: "yes_sub_title", Source: "yes_sub_title"},
		{Key: "category", Source: "category"},
		{Key: "status", Source: "status"},
		{Key: "open_time", Source: "open_time"},
		{Key: "expected_expiration_time", Source: "expected_expiration_time"},
		{Key: "last_price", Source: "last_price"},
		{Key: "volume", Source: "volume"},
	}
}

// Default returns the configuration used when no file is given: open Sports
// events with nested markets, flattened to markets and kept only while live.
func Default() *Config {
	return &Config{
		API: APIConfig{
			RestURL: DefaultRestURL,
			Timeout: DefaultAPITimeout,
		},
		Events: EventsConfig{
			Status:    DefaultStatus,
			PageLimit: DefaultPageLimit,
		},
		Pipeline: PipelineConfig{
			Category:       DefaultCategory,
			ExtractMarkets: true,
			LiveOnly:       true,
			SummaryFields:  DefaultMarketSummary(),
		},
		Live: LiveConfig{
			MaxHoursUntilExpiration: DefaultMaxHoursUntilExpiration,
			MinHoursSinceOpen:       DefaultMinHoursSinceOpen,
		},
		Output: OutputConfig{
			Format: DefaultFormat,
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// applyDefaults fills fields left empty, e.g. by an unset ${VAR}.
func (c *Config) applyDefaults() {
	// API defaults
	if c.API.RestURL == "" {
		c.API.RestURL = DefaultRestURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}

	// Events defaults
	if c.Events.Status == "" {
		c.Events.Status = DefaultStatus
	}
	if c.Events.PageLimit == 0 {
		c.Events.PageLimit = DefaultPageLimit
	}

	// Output defaults
	if c.Output.Format == "" {
		c.Output.Format = DefaultFormat
	}

	// Logging defaults
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}
}
