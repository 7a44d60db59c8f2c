// Command apiprobe performs a one-shot smoke check of each disclosure
// endpoint with a real API key. It goes through the dispatcher so probe
// traffic honors the same rate ceilings as a sync run.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"disclosure-sync/internal/config"
	"disclosure-sync/internal/dispatch"
	"disclosure-sync/internal/domain"
	"disclosure-sync/internal/fmp"
	"disclosure-sync/internal/normalize"
)

func main() {
	baseURL := flag.String("base-url", config.DefaultBaseURL, "Provider API base URL")
	apiKey := flag.String("api-key", os.Getenv("FMP_API_KEY"), "Provider API key")
	limit := flag.Int("limit", 5, "Records to fetch per endpoint")
	flag.Parse()

	if *apiKey == "" {
		log.Fatal("API key is required (set FMP_API_KEY or --api-key)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	dispatcher := dispatch.New(dispatch.Options{})
	dispatcher.Start(ctx)

	client := fmp.NewClient(*baseURL, *apiKey, dispatcher)

	// Test 1: Senate feed
	fmt.Println("=== Testing SenateLatest ===")
	senate, err := client.SenateLatest(ctx, 1, *limit)
	if err != nil {
		log.Fatalf("SenateLatest failed: %v", err)
	}
	fmt.Printf("Fetched %d senate disclosures\n", len(senate))
	printCongressional(senate, domain.KindSenate)

	// Test 2: House feed
	fmt.Println("\n=== Testing HouseLatest ===")
	house, err := client.HouseLatest(ctx, 1, *limit)
	if err != nil {
		log.Fatalf("HouseLatest failed: %v", err)
	}
	fmt.Printf("Fetched %d house disclosures\n", len(house))
	printCongressional(house, domain.KindHouse)

	// Test 3: Insider feed
	fmt.Println("\n=== Testing InsiderTrading ===")
	insiders, err := client.InsiderTrading(ctx, 1, *limit)
	if err != nil {
		log.Fatalf("InsiderTrading failed: %v", err)
	}
	fmt.Printf("Fetched %d insider filings\n", len(insiders))
	for i, raw := range insiders {
		c, err := normalize.Insider(raw)
		if err != nil {
			fmt.Printf("  %d. SKIP (%v)\n", i+1, err)
			continue
		}
		fmt.Printf("  %d. %s %s %s on %s (%s)\n", i+1,
			c.Trader.DisplayName, c.Trade.TransactionType, c.Trade.Symbol,
			c.Trade.TransactionDate.Format("2006-01-02"), c.Trade.AmountRange)
	}

	fmt.Println("\n=== All endpoints reachable ===")
}

func printCongressional(raws []fmp.CongressionalTrade, kind domain.TraderKind) {
	for i, raw := range raws {
		c, err := normalize.Congressional(raw, kind)
		if err != nil {
			fmt.Printf("  %d. SKIP (%v)\n", i+1, err)
			continue
		}
		fmt.Printf("  %d. %s %s %s on %s (%s)\n", i+1,
			c.Trader.DisplayName, c.Trade.TransactionType, c.Trade.Symbol,
			c.Trade.TransactionDate.Format("2006-01-02"), c.Trade.AmountRange)
	}
}
