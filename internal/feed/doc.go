// Package feed turns the Kalshi events listing into a lazy record stream.
//
// Events is the paginated source. Enrich, ExtractMarkets and Project are the
// domain stages, and IsLive decides whether a market is a game in progress.
// Build wires them together from configuration.
package feed
