package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"civic-insight/cmd/mockgen/engine"
)

func main() {
	scenario := flag.String("scenario", "steady", "Scenario to generate: steady, surge, chronic")
	outDir := flag.String("out", "./.cache", "Output directory for mock files")
	count := flag.Int("count", 2000, "Number of grievances to generate")
	days := flag.Int("days", 120, "Span of the generated history in days")
	flag.Parse()

	cfg := engine.GeneratorConfig{
		Scenario: *scenario,
		Count:    *count,
		Days:     *days,
		Now:      time.Now(),
	}

	fmt.Printf("Generating scenario '%s' (Count: %d, Days: %d) to %s...\n", cfg.Scenario, cfg.Count, cfg.Days, *outDir)

	records := engine.Generate(cfg)

	source := fmt.Sprintf("MOCK_%s", cfg.Scenario)
	if err := engine.Save(*outDir, source, records); err != nil {
		fmt.Printf("Failed to save mock data: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Done.")
}
