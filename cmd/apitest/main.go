package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/rickgao/kalshi-livegames/internal/api"
	"github.com/rickgao/kalshi-livegames/internal/config"
	"github.com/rickgao/kalshi-livegames/internal/feed"
	"github.com/rickgao/kalshi-livegames/internal/model"
)

func main() {
	baseURL := flag.String("url", config.DefaultRestURL, "Kalshi REST base URL")
	flag.Parse()

	// Public endpoints, no auth required
	client := api.NewClient(*baseURL, api.WithTimeout(30*time.Second))

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	// Test 1: Get Events (first page)
	fmt.Println("=== Testing GetEvents ===")
	events, err := client.GetEvents(ctx, api.GetEventsOptions{Limit: 5, WithNestedMarkets: true})
	if err != nil {
		log.Fatalf("GetEvents failed: %v", err)
	}
	fmt.Printf("Fetched %d events (cursor: %q)\n", len(events.Events), events.Cursor)
	for i, e := range events.Events {
		fmt.Printf("  %d. %s - %s [%s] (%d markets)\n", i+1, e.EventTicker, e.Title, e.Category, len(e.Markets))
	}

	if len(events.Events) == 0 {
		fmt.Println("\nNo open events; skipping detail checks")
		return
	}

	// Test 2: Get single event
	ticker := events.Events[0].EventTicker
	fmt.Printf("\n=== Testing GetEvent (%s) ===\n", ticker)
	event, err := client.GetEvent(ctx, ticker, true)
	if err != nil {
		log.Fatalf("GetEvent failed: %v", err)
	}
	fmt.Printf("Title: %s\n", event.Title)
	fmt.Printf("Series: %s\n", event.SeriesTicker)
	fmt.Printf("Markets: %d\n", len(event.Markets))

	// Test 3: Flatten and check the live window
	fmt.Printf("\n=== Testing IsLive (%s) ===\n", ticker)
	now := time.Now().UTC()
	for _, m := range feed.MarketsOf(*event) {
		exp, _ := model.ParseTime(m.ExpirationCandidate())
		fmt.Printf("  %s status=%s price=%s expires=%s live=%v\n",
			m.Ticker, m.Status, m.Price().StringFixed(2), exp.Format(time.RFC3339), feed.IsLive(m, now, feed.DefaultLiveWindow()))
	}

	fmt.Println("\n=== All API tests passed! ===")
}
