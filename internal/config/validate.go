package config

import (
	"errors"
	"fmt"
	"slices"
)

var validStatuses = []string{"unopened", "open", "closed", "settled"}

// Validate checks that all values are usable and the pipeline is coherent.
func (c *Config) Validate() error {
	if c.API.RestURL == "" {
		return errors.New("api.rest_url is required")
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("api.timeout must be >= 0, got %v", c.API.Timeout)
	}

	if !slices.Contains(validStatuses, c.Events.Status) {
		return fmt.Errorf("events.status must be one of %v, got %q", validStatuses, c.Events.Status)
	}
	if c.Events.PageLimit < 1 || c.Events.PageLimit > MaxPageLimit {
		return fmt.Errorf("events.page_limit must be between 1 and %d, got %d", MaxPageLimit, c.Events.PageLimit)
	}
	if c.Events.MinCloseTS < 0 {
		return errors.New("events.min_close_ts must be >= 0")
	}

	if c.Pipeline.LiveOnly && !c.Pipeline.ExtractMarkets {
		return errors.New("pipeline.live_only requires pipeline.extract_markets")
	}
	if c.Pipeline.MaxResults != nil && *c.Pipeline.MaxResults < 0 {
		return fmt.Errorf("pipeline.max_results must be >= 0, got %d", *c.Pipeline.MaxResults)
	}
	for i, f := range c.Pipeline.SummaryFields {
		if f.Key == "" || f.Source == "" {
			return fmt.Errorf("pipeline.summary_fields[%d] needs both key and source", i)
		}
	}

	if c.Live.MaxHoursUntilExpiration < 0 {
		return errors.New("live.max_hours_until_expiration must be >= 0")
	}
	if c.Live.MinHoursSinceOpen < 0 {
		return errors.New("live.min_hours_since_open must be >= 0")
	}

	switch c.Output.Format {
	case FormatJSON, FormatEnvelope:
	case FormatTable:
		if len(c.Pipeline.SummaryFields) == 0 {
			return errors.New("output.format table requires pipeline.summary_fields")
		}
	default:
		return fmt.Errorf("output.format must be json, envelope or table, got %q", c.Output.Format)
	}

	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}

	return nil
}
