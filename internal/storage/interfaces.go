package storage

import (
	"context"
	"time"

	"rainfall-feature-lab/internal/domain"
)

// ReadingStore provides access to raw gauge readings storage.
type ReadingStore interface {
	// Insert adds one reading. Returns ErrDuplicateKey if (cell, timestamp) exists.
	Insert(ctx context.Context, r *domain.Reading) error

	// InsertBulk adds multiple readings atomically. Fails entire batch on any duplicate.
	InsertBulk(ctx context.Context, readings []*domain.Reading) error

	// GetAll retrieves every reading, ordered by numeric (lat, lon, timestamp) ASC.
	GetAll(ctx context.Context) ([]*domain.Reading, error)

	// GetByCell retrieves all readings for a cell label, ordered by timestamp ASC.
	GetByCell(ctx context.Context, cell string) ([]*domain.Reading, error)

	// GetByTimeRange retrieves readings within [start, end] (inclusive),
	// ordered by numeric (lat, lon, timestamp) ASC.
	GetByTimeRange(ctx context.Context, start, end time.Time) ([]*domain.Reading, error)
}

// FeatureStore provides access to engineered feature rows storage.
type FeatureStore interface {
	// InsertBulk adds multiple rows. Fails entire batch on duplicate (name, timestamp).
	InsertBulk(ctx context.Context, rows []*domain.FeatureRow) error

	// GetByName retrieves all rows for a feature name, ordered by timestamp ASC.
	GetByName(ctx context.Context, name string) ([]*domain.FeatureRow, error)

	// GetByTimeRange retrieves rows for a feature name within [start, end]
	// (inclusive), ordered by timestamp ASC.
	GetByTimeRange(ctx context.Context, name string, start, end time.Time) ([]*domain.FeatureRow, error)
}
