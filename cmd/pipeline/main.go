// Package main provides the E2E pipeline entry point.
// Executes: load raw export → reading store → feature build → persistence → CSV.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"rainfall-feature-lab/internal/features"
	"rainfall-feature-lab/internal/ingest"
	"rainfall-feature-lab/internal/orchestrator"
	"rainfall-feature-lab/internal/storage"
	chstore "rainfall-feature-lab/internal/storage/clickhouse"
	"rainfall-feature-lab/internal/storage/memory"
	pgstore "rainfall-feature-lab/internal/storage/postgres"
)

func main() {
	input := flag.String("input", "data/raw/sg_rainfall_raw.json", "Path to raw gauge-network JSON export")
	outputDir := flag.String("output-dir", "data/processed", "Output directory for generated files")
	tz := flag.String("tz", "Asia/Singapore", "Timezone for the time index")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL DSN for readings (empty: in-memory)")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse DSN for feature rows (empty: in-memory)")
	verbose := flag.Bool("verbose", false, "Verbose output")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Printf("\nReceived signal %v, cancelling pipeline...\n", sig)
		cancel()
	}()

	loc, err := time.LoadLocation(*tz)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid timezone %q: %v\n", *tz, err)
		os.Exit(1)
	}

	// Storage backends
	readingStore, featureStore, cleanup, err := buildStores(ctx, *postgresDSN, *clickhouseDSN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Storage setup error: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	// Load the raw export into the reading store
	doc, err := ingest.LoadRawFile(*input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading raw export: %v\n", err)
		os.Exit(1)
	}
	readings, err := ingest.Readings(doc, loc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error flattening readings: %v\n", err)
		os.Exit(1)
	}
	if err := readingStore.InsertBulk(ctx, readings); err != nil {
		fmt.Fprintf(os.Stderr, "Error storing readings: %v\n", err)
		os.Exit(1)
	}

	// Run the feature pipeline
	fmt.Println("=== Feature Pipeline ===")
	orch := orchestrator.New(orchestrator.Options{
		ReadingStore: readingStore,
		FeatureStore: featureStore,
		Config:       features.DefaultConfig(),
		OutputPath:   filepath.Join(*outputDir, "rainfall_temporal_features.csv"),
		Verbose:      *verbose,
	})

	result, err := orch.Run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Pipeline error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Pipeline completed:\n")
	fmt.Printf("  Readings:       %d\n", result.ReadingsLoaded)
	fmt.Printf("  Cells:          %d\n", result.CellsProcessed)
	fmt.Printf("  Feature series: %d\n", result.FeatureSeries)
	if result.AlreadyPersisted {
		fmt.Printf("  Rows persisted: 0 (already stored)\n")
	} else {
		fmt.Printf("  Rows persisted: %d\n", result.RowsPersisted)
	}
	fmt.Printf("  - %s\n", filepath.Join(*outputDir, "rainfall_temporal_features.csv"))
}

// buildStores selects storage backends from the DSN flags, defaulting to
// in-memory implementations.
func buildStores(ctx context.Context, postgresDSN, clickhouseDSN string) (storage.ReadingStore, storage.FeatureStore, func(), error) {
	var cleanups []func()
	cleanup := func() {
		for _, fn := range cleanups {
			fn()
		}
	}

	var readingStore storage.ReadingStore = memory.NewReadingStore()
	if postgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, postgresDSN)
		if err != nil {
			return nil, nil, nil, err
		}
		cleanups = append(cleanups, pool.Close)
		readingStore = pgstore.NewReadingStore(pool)
	}

	var featureStore storage.FeatureStore = memory.NewFeatureStore()
	if clickhouseDSN != "" {
		conn, err := chstore.NewConn(ctx, clickhouseDSN)
		if err != nil {
			cleanup()
			return nil, nil, nil, err
		}
		cleanups = append(cleanups, func() { conn.Close() })
		featureStore = chstore.NewFeatureStore(conn)
	}

	return readingStore, featureStore, cleanup, nil
}
