// Package main streams live gauge readings into the reading store.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rainfall-feature-lab/internal/domain"
	"rainfall-feature-lab/internal/ingest"
	"rainfall-feature-lab/internal/observability"
	"rainfall-feature-lab/internal/storage"
	"rainfall-feature-lab/internal/storage/memory"
	pgstore "rainfall-feature-lab/internal/storage/postgres"
)

func main() {
	wsEndpoint := flag.String("ws-endpoint", "", "Gauge feed WebSocket endpoint")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL")
	flushSize := flag.Int("flush-size", 64, "Readings buffered before a bulk insert")
	flushInterval := flag.Duration("flush-interval", 30*time.Second, "Maximum time readings stay buffered")
	metricsAddr := flag.String("metrics-addr", ":9090", "Prometheus metrics HTTP address (empty to disable)")
	flag.Parse()

	logger := log.New(os.Stdout, "[ingest] ", log.LstdFlags|log.Lshortfile)

	if *wsEndpoint == "" {
		logger.Fatal("missing required -ws-endpoint")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("received signal %v, shutting down", sig)
		cancel()
	}()

	metrics := observability.NewMetrics("")
	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", observability.Handler())
			mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("ok"))
			})
			logger.Printf("metrics listening on %s", *metricsAddr)
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				logger.Printf("metrics server error: %v", err)
			}
		}()
	}

	store, cleanup, err := buildReadingStore(ctx, *useMemory, *postgresDSN)
	if err != nil {
		logger.Fatalf("storage setup: %v", err)
	}
	defer cleanup()

	sourceCfg := ingest.DefaultWSSourceConfig()
	sourceCfg.OnReconnect = metrics.StreamReconnects.Inc
	source, err := ingest.NewWSSource(ctx, *wsEndpoint, &sourceCfg)
	if err != nil {
		logger.Fatalf("gauge stream: %v", err)
	}
	defer source.Close()

	logger.Printf("streaming from %s", *wsEndpoint)
	if err := run(ctx, logger, metrics, source.Readings(), store, *flushSize, *flushInterval); err != nil {
		logger.Fatalf("ingestion: %v", err)
	}
	logger.Println("ingestion stopped")
}

// shutdownFlushTimeout bounds the final flush after the run context is
// canceled.
const shutdownFlushTimeout = 5 * time.Second

// run buffers stream readings and flushes them in bulk, on size or timer.
func run(
	ctx context.Context,
	logger *log.Logger,
	metrics *observability.Metrics,
	readings <-chan *domain.Reading,
	store storage.ReadingStore,
	flushSize int,
	flushInterval time.Duration,
) error {
	buffer := make([]*domain.Reading, 0, flushSize)
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	flush := func(ctx context.Context) {
		if len(buffer) == 0 {
			return
		}
		if err := store.InsertBulk(ctx, buffer); err != nil {
			if errors.Is(err, storage.ErrDuplicateKey) {
				logger.Printf("dropping batch of %d readings: duplicate hours", len(buffer))
				metrics.IngestErrors.WithLabelValues("duplicate").Inc()
			} else {
				logger.Printf("flush failed: %v", err)
				metrics.IngestErrors.WithLabelValues("store").Inc()
			}
		} else {
			metrics.ReadingsStored.Add(float64(len(buffer)))
		}
		buffer = buffer[:0]
		metrics.ReadingBufferSize.Set(0)
	}

	for {
		select {
		case <-ctx.Done():
			// The run context is already canceled here; a flush on it
			// would fail and drop the buffered readings. Give the final
			// flush its own deadline instead.
			flushCtx, cancel := context.WithTimeout(context.Background(), shutdownFlushTimeout)
			flush(flushCtx)
			cancel()
			return nil
		case <-ticker.C:
			flush(ctx)
		case reading, ok := <-readings:
			if !ok {
				flush(ctx)
				return fmt.Errorf("gauge stream closed")
			}
			metrics.ReadingsIngested.Inc()
			buffer = append(buffer, reading)
			metrics.ReadingBufferSize.Set(float64(len(buffer)))
			if len(buffer) >= flushSize {
				flush(ctx)
			}
		}
	}
}

// buildReadingStore selects the reading store backend.
func buildReadingStore(ctx context.Context, useMemory bool, dsn string) (storage.ReadingStore, func(), error) {
	if useMemory {
		return memory.NewReadingStore(), func() {}, nil
	}
	if dsn == "" {
		return nil, nil, fmt.Errorf("missing -postgres-dsn (or pass -use-memory)")
	}
	pool, err := pgstore.NewPool(ctx, dsn)
	if err != nil {
		return nil, nil, err
	}
	return pgstore.NewReadingStore(pool), pool.Close, nil
}
