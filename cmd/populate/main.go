package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"signal-trading-bot/internal/policy"
)

// defaultSubjects is the starting whitelist of trade-partner subjects.
// Each gets a placeholder entry; the operator fills in the instrument
// and action before the bot will act on that subject.
var defaultSubjects = []string{
	"China",
	"Canada",
	"Mexico",
	"European Union",
	"Japan",
	"South Korea",
	"India",
	"Brazil",
	"United Kingdom",
	"Vietnam",
	"Taiwan",
	"Australia",
}

func main() {
	_ = godotenv.Load()

	path := flag.String("mapping", "ticker_mapping.json", "path to the subject mapping file")
	flag.Parse()

	entries := map[string]policy.Entry{}

	if b, err := os.ReadFile(*path); err == nil {
		if err := json.Unmarshal(b, &entries); err != nil {
			log.Fatalf("existing mapping %s is not valid JSON: %v", *path, err)
		}
		log.Printf("loaded existing mapping with %d entries", len(entries))
	} else if !os.IsNotExist(err) {
		log.Fatalf("read %s: %v", *path, err)
	}

	added := 0
	for _, subject := range defaultSubjects {
		if _, ok := entries[subject]; ok {
			continue
		}
		entries[subject] = policy.Entry{Ticker: policy.Placeholder, Action: policy.Placeholder}
		added++
	}

	out, err := json.MarshalIndent(entries, "", "    ")
	if err != nil {
		log.Fatal(err)
	}
	if err := os.WriteFile(*path, out, 0o644); err != nil {
		log.Fatalf("write %s: %v", *path, err)
	}

	fmt.Printf("Wrote %s: %d entries (%d new placeholders)\n", *path, len(entries), added)
	fmt.Println("Replace every \"TBD\" with a ticker and a BUY or SELL action to activate the subject.")
}
