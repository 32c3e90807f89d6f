package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rickgao/kalshi-livegames/internal/model"
)

// Config is the root configuration for a feed run.
type Config struct {
	API      APIConfig      `yaml:"api"`
	Events   EventsConfig   `yaml:"events"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Live     LiveConfig     `yaml:"live"`
	Output   OutputConfig   `yaml:"output"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// APIConfig holds Kalshi API settings.
type APIConfig struct {
	RestURL string        `yaml:"rest_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// EventsConfig shapes the paginated /events listing.
type EventsConfig struct {
	Status            string `yaml:"status"`
	PageLimit         int    `yaml:"page_limit"`
	WithNestedMarkets bool   `yaml:"with_nested_markets"`
	MinCloseTS        int64  `yaml:"min_close_ts"` // unix seconds
	OnlyUnclosed      bool   `yaml:"only_unclosed"`
	SeriesTicker      string `yaml:"series_ticker"`
}

// PipelineConfig selects and orders the stages applied to the event stream.
type PipelineConfig struct {
	Category       string         `yaml:"category"` // empty keeps every category
	CategoryFold   bool           `yaml:"category_fold"`
	Ticker         string         `yaml:"ticker"`
	Enrich         bool           `yaml:"enrich"`
	NestedMarkets  bool           `yaml:"nested_markets"` // ask the detail endpoint for markets
	ExtractMarkets bool           `yaml:"extract_markets"`
	LiveOnly       bool           `yaml:"live_only"`
	MaxResults     *int           `yaml:"max_results"` // nil means unbounded
	SummaryFields  model.FieldMap `yaml:"summary_fields"`
}

// LiveConfig is the live-game time window, in hours.
type LiveConfig struct {
	MaxHoursUntilExpiration float64 `yaml:"max_hours_until_expiration"`
	MinHoursSinceOpen       float64 `yaml:"min_hours_since_open"`
}

// OutputConfig controls how records are printed.
type OutputConfig struct {
	Format      string `yaml:"format"`       // json, envelope or table
	EnvelopeKey string `yaml:"envelope_key"` // defaults to "events" or "markets"
}

// LoggingConfig controls the stderr logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
}

// SlogLevel parses Level. Unknown values fall back to info.
func (l LoggingConfig) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(l.Level))); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// EnvelopeKeyFor returns the configured envelope key, or one derived from
// whether the pipeline emits markets or events.
func (c *Config) EnvelopeKeyFor() string {
	if c.Output.EnvelopeKey != "" {
		return c.Output.EnvelopeKey
	}
	if c.Pipeline.ExtractMarkets {
		return "markets"
	}
	return "events"
}

// String summarizes the pipeline shape for logging.
func (p PipelineConfig) String() string {
	var b strings.Builder
	b.WriteString("source")
	if p.Category != "" {
		fmt.Fprintf(&b, " > category(%s)", p.Category)
	}
	if p.Ticker != "" {
		fmt.Fprintf(&b, " > ticker(%s)", p.Ticker)
	}
	if p.Enrich {
		b.WriteString(" > enrich")
	}
	if p.ExtractMarkets {
		b.WriteString(" > extract_markets")
	}
	if p.LiveOnly {
		b.WriteString(" > live")
	}
	if p.MaxResults != nil {
		fmt.Fprintf(&b, " > limit(%d)", *p.MaxResults)
	}
	if len(p.SummaryFields) > 0 {
		fmt.Fprintf(&b, " > project(%d)", len(p.SummaryFields))
	}
	return b.String()
}
