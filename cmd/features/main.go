// Package main engineers per-cell temporal rainfall features from the
// processed wide CSV and writes the feature CSV.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"rainfall-feature-lab/internal/features"
	"rainfall-feature-lab/internal/ingest"
	"rainfall-feature-lab/internal/reporting"
)

func main() {
	input := flag.String("input", "data/processed/sg_rainfall_processed.csv", "Path to processed rainfall CSV")
	output := flag.String("output", "data/processed/rainfall_temporal_features.csv", "Path to write the feature CSV")

	lagHours := flag.String("lag-hours", "1,2,3,4,5,6,12,24", "Comma-separated lag hours")
	sumWindows := flag.String("sum-windows", "3,6,12,24", "Comma-separated rolling-sum windows (hours)")
	maxWindows := flag.String("max-windows", "3,6", "Comma-separated rolling-max windows (hours)")
	apiHalfLives := flag.String("api-halflives", "6,24,168", "Comma-separated antecedent-index half-lives (hours)")
	dryThreshold := flag.Float64("dry-threshold", 0.2, "Threshold (mm) for a dry hour")
	wetThreshold := flag.Float64("wet-threshold", 0.2, "Threshold (mm) for the rain-now indicator")
	missingIsDry := flag.Bool("missing-is-dry", true, "Count missing preceding hours as dry in the dry-spell streak")
	fwdSumHorizons := flag.String("forward-sum-horizons", "1,3,6,12", "Comma-separated forward-sum horizons (hours)")
	fwdMaxHorizons := flag.String("forward-max-horizons", "3,6,12", "Comma-separated forward-max horizons (hours)")
	ttpHorizons := flag.String("ttp-horizons", "6,12", "Comma-separated time-to-peak horizons (hours)")
	frontShareH := flag.Int("frontshare-horizon", 12, "Front-share horizon (hours, 0 disables)")
	flag.Parse()

	cfg := features.Config{
		DryThreshold:      *dryThreshold,
		WetThreshold:      *wetThreshold,
		MissingIsDry:      *missingIsDry,
		FrontShareHorizon: *frontShareH,
	}
	var err error
	if cfg.LagHours, err = parseHours("lag-hours", *lagHours); err != nil {
		fatal(err)
	}
	if cfg.SumWindows, err = parseHours("sum-windows", *sumWindows); err != nil {
		fatal(err)
	}
	if cfg.MaxWindows, err = parseHours("max-windows", *maxWindows); err != nil {
		fatal(err)
	}
	if cfg.APIHalfLives, err = parseHours("api-halflives", *apiHalfLives); err != nil {
		fatal(err)
	}
	if cfg.ForwardSumHorizons, err = parseHours("forward-sum-horizons", *fwdSumHorizons); err != nil {
		fatal(err)
	}
	if cfg.ForwardMaxHorizons, err = parseHours("forward-max-horizons", *fwdMaxHorizons); err != nil {
		fatal(err)
	}
	if cfg.TimeToPeakHorizons, err = parseHours("ttp-horizons", *ttpHorizons); err != nil {
		fatal(err)
	}

	table, err := ingest.ReadWideCSVFile(*input)
	if err != nil {
		fatal(fmt.Errorf("loading input: %w", err))
	}

	featureTable, err := features.BuildAllCellFeatures(table, cfg)
	if err != nil {
		fatal(fmt.Errorf("building features: %w", err))
	}

	if err := reporting.WriteFile(*output, reporting.RenderFeatureCSV(featureTable)); err != nil {
		fatal(err)
	}

	fmt.Printf("Saved features to: %s\n", *output)
	fmt.Printf("Shape: %d rows x %d features\n", len(featureTable.Times), len(featureTable.Names))
}

// parseHours parses a comma-separated list of positive integers.
func parseHours(name, s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var hours []int
	for _, part := range strings.Split(s, ",") {
		h, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || h <= 0 {
			return nil, fmt.Errorf("invalid -%s entry %q", name, part)
		}
		hours = append(hours, h)
	}
	return hours, nil
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
