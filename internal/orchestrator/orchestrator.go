// Package orchestrator coordinates the end-to-end feature pipeline:
// readings → wide table → per-cell features → persistence → CSV.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"rainfall-feature-lab/internal/domain"
	"rainfall-feature-lab/internal/features"
	"rainfall-feature-lab/internal/grid"
	"rainfall-feature-lab/internal/observability"
	"rainfall-feature-lab/internal/reporting"
	"rainfall-feature-lab/internal/storage"
)

// Orchestrator runs the phased feature pipeline over the stores.
type Orchestrator struct {
	readingStore storage.ReadingStore
	featureStore storage.FeatureStore
	config       features.Config

	outputPath string // feature CSV destination, empty disables rendering
	metrics    *observability.Metrics
	verbose    bool
}

// Options for creating Orchestrator.
type Options struct {
	// Required stores
	ReadingStore storage.ReadingStore
	FeatureStore storage.FeatureStore

	// Feature configuration
	Config features.Config

	// OutputPath is the feature CSV destination; empty disables rendering.
	OutputPath string

	// Metrics is optional; nil disables instrumentation.
	Metrics *observability.Metrics

	Verbose bool
}

// New creates a new Orchestrator.
func New(opts Options) *Orchestrator {
	return &Orchestrator{
		readingStore: opts.ReadingStore,
		featureStore: opts.FeatureStore,
		config:       opts.Config,
		outputPath:   opts.OutputPath,
		metrics:      opts.Metrics,
		verbose:      opts.Verbose,
	}
}

// RunResult contains results from orchestrator execution.
type RunResult struct {
	ReadingsLoaded   int
	CellsProcessed   int
	FeatureSeries    int
	RowsPersisted    int
	FeatureCSV       string // rendered feature table, also written to OutputPath
	AlreadyPersisted bool   // feature store already held these rows
}

// Run executes the pipeline.
// Phases:
//  1. Load readings
//  2. Assemble the wide rainfall table
//  3. Build per-cell temporal features
//  4. Persist feature rows (skipped when already stored)
//  5. Render the feature CSV
func (o *Orchestrator) Run(ctx context.Context) (*RunResult, error) {
	result := &RunResult{}

	// Phase 1: Load readings
	o.log("Phase 1: Loading readings...")
	readings, err := o.timedPhase("load", func() ([]*domain.Reading, error) {
		start := time.Now()
		rs, err := o.readingStore.GetAll(ctx)
		o.observeQuery("readings", "get_all", start, err)
		return rs, err
	})
	if err != nil {
		return nil, fmt.Errorf("phase 1 (load readings) failed: %w", err)
	}
	result.ReadingsLoaded = len(readings)
	o.log("  Loaded %d readings", len(readings))

	if len(readings) == 0 {
		return result, nil
	}

	// Phase 2: Assemble the wide table
	o.log("Phase 2: Assembling wide table...")
	table, err := grid.FromReadings(readings)
	if err != nil {
		return nil, fmt.Errorf("phase 2 (assemble wide table) failed: %w", err)
	}
	result.CellsProcessed = len(table.Columns)
	o.log("  %d hours x %d cells", len(table.Times), len(table.Columns))

	// Phase 3: Build features
	o.log("Phase 3: Building features...")
	featureTable, err := features.BuildAllCellFeatures(table, o.config)
	if err != nil {
		return nil, fmt.Errorf("phase 3 (build features) failed: %w", err)
	}
	result.FeatureSeries = len(featureTable.Names)
	o.log("  Built %d feature series", len(featureTable.Names))
	if o.metrics != nil {
		o.metrics.CellsProcessed.Add(float64(result.CellsProcessed))
		o.metrics.FeatureSeriesBuilt.Add(float64(result.FeatureSeries))
	}

	// Phase 4: Persist feature rows
	o.log("Phase 4: Persisting feature rows...")
	rows := featureTable.Rows()
	insertStart := time.Now()
	err = o.featureStore.InsertBulk(ctx, rows)
	o.observeQuery("features", "insert_bulk", insertStart, err)
	if err != nil {
		// Already-persisted rows are not a failure; reruns stay idempotent.
		if !errors.Is(err, storage.ErrDuplicateKey) {
			return nil, fmt.Errorf("phase 4 (persist features) failed: %w", err)
		}
		result.AlreadyPersisted = true
		o.log("  Feature rows already persisted, skipping")
	} else {
		result.RowsPersisted = len(rows)
		if o.metrics != nil {
			o.metrics.FeatureRowsPersisted.Add(float64(len(rows)))
		}
		o.log("  Persisted %d rows", len(rows))
	}

	// Phase 5: Render CSV
	result.FeatureCSV = reporting.RenderFeatureCSV(featureTable)
	if o.outputPath != "" {
		if err := reporting.WriteFile(o.outputPath, result.FeatureCSV); err != nil {
			return nil, fmt.Errorf("phase 5 (render csv) failed: %w", err)
		}
		o.log("Phase 5: Wrote %s", o.outputPath)
	}

	return result, nil
}

// timedPhase records phase duration and status when metrics are enabled.
func (o *Orchestrator) timedPhase(phase string, fn func() ([]*domain.Reading, error)) ([]*domain.Reading, error) {
	start := time.Now()
	out, err := fn()
	if o.metrics != nil {
		o.metrics.PipelineDuration.WithLabelValues(phase).Observe(time.Since(start).Seconds())
		status := "ok"
		if err != nil {
			status = "error"
		}
		o.metrics.PipelineRunsTotal.WithLabelValues(phase, status).Inc()
	}
	return out, err
}

// observeQuery records store-call duration and errors when metrics are
// enabled. Duplicate-key results are expected on reruns and not counted
// as errors.
func (o *Orchestrator) observeQuery(store, op string, start time.Time, err error) {
	if o.metrics == nil {
		return
	}
	o.metrics.DBQueryDuration.WithLabelValues(store, op).Observe(time.Since(start).Seconds())
	if err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
		o.metrics.DBQueryErrors.WithLabelValues(store, op).Inc()
	}
}

func (o *Orchestrator) log(format string, args ...interface{}) {
	if o.verbose {
		log.Printf("[orchestrator] "+format, args...)
	}
}
