package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"position-tally/core/config"
	"position-tally/feature/providers"
)

// Prints the raw and canonical row counts of one provider export and saves both
// to debug_reconcile.json for inspection.
func main() {
	provider := flag.String("provider", "", "provider label")
	day := flag.String("date", "", "position date YYYY-MM-DD")
	flag.Parse()

	if *provider == "" || *day == "" {
		log.Fatal("usage: debug_reconcile -provider ib -date 2024-12-31")
	}
	date, err := time.Parse(time.DateOnly, *day)
	if err != nil {
		log.Fatal(err)
	}

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatal(err)
	}

	registry := providers.NewRegistry(cfg, providers.Deps{})
	adapter, err := registry.Adapter(*provider)
	if err != nil {
		log.Fatal(err)
	}
	ctx := context.Background()

	fmt.Println("=== STEP 1: Extract ===")
	raw, err := adapter.Extract(ctx, date, cfg.Provider[*provider].Accounts)
	if err != nil {
		log.Fatal(err)
	}
	accounts := make(map[string]int)
	for _, r := range raw {
		accounts[r["account_id"]]++
	}
	fmt.Printf("Raw position rows: %d\n", len(raw))
	for acc, n := range accounts {
		fmt.Printf("  account %s: %d rows\n", acc, n)
	}

	fmt.Println("\n=== STEP 2: Transform ===")
	table, err := adapter.Transform(ctx, raw)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Canonical rows: %d\n", table.Len())

	missingYellow := 0
	for _, p := range table.Rows() {
		if p.BBGYellow == nil {
			missingYellow++
			fmt.Printf("  no yellow key: account=%s description=%v\n", p.AccountID, deref(p.Description))
		}
	}
	fmt.Printf("Rows without yellow key: %d\n", missingYellow)

	output := map[string]any{
		"provider":  *provider,
		"adapter":   adapter.Name(),
		"date":      *day,
		"raw":       raw,
		"positions": table.Rows(),
	}
	data, _ := json.MarshalIndent(output, "", "  ")
	os.WriteFile("debug_reconcile.json", data, 0644)

	fmt.Println("\nDebug complete. Check debug_reconcile.json for details.")
}

func deref(s *string) string {
	if s == nil {
		return "<null>"
	}
	return *s
}
