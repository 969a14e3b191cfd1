package main

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
)

// Writes a sample shipping rate table for local development. The API server
// picks it up through SHIPPING_RATES_FILE when S3 is disabled.
func main() {
	dataDir := "data/shipping"

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	doc := map[string]any{
		"tiers": []map[string]string{
			{"threshold": "0", "fee": "7.99"},
			{"threshold": "58", "fee": "5.99"},
			{"threshold": "128", "fee": "3.99"},
			{"threshold": "150", "fee": "0"},
		},
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode rate table: %v", err)
	}

	path := filepath.Join(dataDir, "shipping_rates.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		log.Fatalf("Failed to write %s: %v", path, err)
	}

	log.Printf("Wrote sample rate table to %s", path)
}
