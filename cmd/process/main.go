// Package main converts a raw gauge-network JSON export into the
// processed wide rainfall CSV (timestamp + one "lat,lon" column per cell).
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"rainfall-feature-lab/internal/ingest"
	"rainfall-feature-lab/internal/reporting"
)

func main() {
	input := flag.String("input", "data/raw/sg_rainfall_raw.json", "Path to raw gauge-network JSON export")
	output := flag.String("output", "data/processed/sg_rainfall_processed.csv", "Path to write the processed wide CSV")
	tz := flag.String("tz", "Asia/Singapore", "Timezone for the rendered time index")
	flag.Parse()

	loc, err := time.LoadLocation(*tz)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid timezone %q: %v\n", *tz, err)
		os.Exit(1)
	}

	doc, err := ingest.LoadRawFile(*input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading raw export: %v\n", err)
		os.Exit(1)
	}

	table, err := ingest.ToWideTable(doc, loc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building wide table: %v\n", err)
		os.Exit(1)
	}

	if err := reporting.WriteFile(*output, reporting.RenderWideCSV(table)); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing CSV: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Processed CSV saved to: %s\n", *output)
	fmt.Printf("Shape: %d rows x %d cells\n", len(table.Times), len(table.Columns))
}
