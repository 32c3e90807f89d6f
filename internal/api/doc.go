// Package api provides the Kalshi REST client used by the feed.
//
// REST endpoints:
//   - Production: https://api.elections.kalshi.com/trade-api/v2
//   - Demo: https://demo-api.kalshi.co/trade-api/v2
//
// Only the public, unauthenticated events endpoints are used:
//   - GET /events           one page of events (cursor pagination)
//   - GET /events/{ticker}  one event, optionally with nested markets
//
// Requests are made once. Network failures and non-2xx responses surface as
// *TransportError and are never retried.
package api
