// Package model defines the record types that flow through the feed pipeline.
//
// Event and Market mirror the Kalshi trade-api v2 JSON objects. Fields the API
// returns that are not modeled here are kept in Extra, so a record printed back
// out carries everything the API sent.
//
// Conventions:
//   - Timestamps: kept as the API's RFC 3339 strings, parsed on demand with ParseTime
//   - Prices: last_price in cents, last_price_dollars as a decimal
//   - Records are values; anything that changes a field works on a Clone
package model
