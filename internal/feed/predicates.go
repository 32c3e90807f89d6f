package feed

import (
	"time"

	"golang.org/x/text/cases"

	"github.com/rickgao/kalshi-livegames/internal/model"
)

// Default live-game window.
const (
	DefaultMaxHoursUntilExpiration = 4
	DefaultMinHoursSinceOpen       = 0.5
)

// LiveWindow bounds when a market counts as a game in progress.
type LiveWindow struct {
	MaxHoursUntilExpiration float64
	MinHoursSinceOpen       float64
}

// DefaultLiveWindow returns the default window: open for at least half an
// hour and expiring within four.
func DefaultLiveWindow() LiveWindow {
	return LiveWindow{
		MaxHoursUntilExpiration: DefaultMaxHoursUntilExpiration,
		MinHoursSinceOpen:       DefaultMinHoursSinceOpen,
	}
}

// IsLive reports whether m looks like a game in progress at now: tradeable,
// unresolved, opened at least MinHoursSinceOpen ago and expiring within
// MaxHoursUntilExpiration. Missing or unparseable times make it false.
func IsLive(m model.Market, now time.Time, w LiveWindow) bool {
	if m.Status != model.StatusOpen && m.Status != model.StatusActive {
		return false
	}
	if m.Result != "" {
		return false
	}

	openAt, ok := model.ParseTime(m.OpenTime)
	if !ok {
		return false
	}
	expiresAt, ok := model.ParseTime(m.ExpirationCandidate())
	if !ok {
		return false
	}

	sinceOpen := now.Sub(openAt)
	untilExp := expiresAt.Sub(now)

	return sinceOpen >= hours(w.MinHoursSinceOpen) &&
		untilExp >= 0 &&
		untilExp <= hours(w.MaxHoursUntilExpiration)
}

// LiveAt returns IsLive bound to a clock and window.
func LiveAt(now func() time.Time, w LiveWindow) func(model.Market) bool {
	return func(m model.Market) bool {
		return IsLive(m, now(), w)
	}
}

// CategoryIs matches events in category. With fold set the comparison
// ignores case.
func CategoryIs(category string, fold bool) func(model.Event) bool {
	match := categoryMatcher(category, fold)
	return func(ev model.Event) bool {
		return match(ev.Category)
	}
}

// MarketCategoryIs matches flattened markets in category.
func MarketCategoryIs(category string, fold bool) func(model.Market) bool {
	match := categoryMatcher(category, fold)
	return func(m model.Market) bool {
		return match(m.Category)
	}
}

// TickerIs matches the event with the given ticker.
func TickerIs(ticker string) func(model.Event) bool {
	return func(ev model.Event) bool {
		return ev.EventTicker == ticker
	}
}

func categoryMatcher(category string, fold bool) func(string) bool {
	if !fold {
		return func(c string) bool { return c == category }
	}
	caser := cases.Fold()
	want := caser.String(category)
	return func(c string) bool { return caser.String(c) == want }
}

func hours(h float64) time.Duration {
	return time.Duration(h * float64(time.Hour))
}
