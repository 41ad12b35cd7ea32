package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"rainfall-feature-lab/internal/domain"
	"rainfall-feature-lab/internal/storage"
)

// FeatureStore implements storage.FeatureStore using ClickHouse. Rows are
// stored long-format: one (feature_name, timestamp_ms, value) row per
// feature value, with Nullable(Float64) carrying missing entries.
type FeatureStore struct {
	conn *Conn
}

// NewFeatureStore creates a new FeatureStore.
func NewFeatureStore(conn *Conn) *FeatureStore {
	return &FeatureStore{conn: conn}
}

// Compile-time interface check.
var _ storage.FeatureStore = (*FeatureStore)(nil)

// InsertBulk adds multiple rows. Fails entire batch on duplicate
// (name, timestamp). ClickHouse MergeTree does not enforce uniqueness at
// insert time, so duplicates are checked explicitly before the batch.
func (s *FeatureStore) InsertBulk(ctx context.Context, rows []*domain.FeatureRow) error {
	if len(rows) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	type key struct {
		name        string
		timestampMs int64
	}
	seen := make(map[key]struct{}, len(rows))
	names := make(map[string]struct{})
	for _, r := range rows {
		if r == nil || r.Name == "" {
			return storage.ErrInvalidInput
		}
		k := key{r.Name, r.Timestamp.UnixMilli()}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
		names[r.Name] = struct{}{}
	}

	// Check for duplicates against existing DB rows, one probe per name
	for name := range names {
		exists, err := s.exists(ctx, name)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO rainfall_features (feature_name, timestamp_ms, value)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, r := range rows {
		if err := batch.Append(r.Name, uint64(r.Timestamp.UnixMilli()), r.Value); err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByName retrieves all rows for a feature name, ordered by timestamp ASC.
func (s *FeatureStore) GetByName(ctx context.Context, name string) ([]*domain.FeatureRow, error) {
	query := `
		SELECT feature_name, timestamp_ms, value
		FROM rainfall_features
		WHERE feature_name = ?
		ORDER BY timestamp_ms ASC
	`

	rows, err := s.conn.Query(ctx, query, name)
	if err != nil {
		return nil, fmt.Errorf("query by feature name: %w", err)
	}
	defer rows.Close()

	return scanFeatureRows(rows)
}

// GetByTimeRange retrieves rows for a feature name within [start, end] (inclusive).
func (s *FeatureStore) GetByTimeRange(ctx context.Context, name string, start, end time.Time) ([]*domain.FeatureRow, error) {
	query := `
		SELECT feature_name, timestamp_ms, value
		FROM rainfall_features
		WHERE feature_name = ? AND timestamp_ms >= ? AND timestamp_ms <= ?
		ORDER BY timestamp_ms ASC
	`

	rows, err := s.conn.Query(ctx, query, name, uint64(start.UnixMilli()), uint64(end.UnixMilli()))
	if err != nil {
		return nil, fmt.Errorf("query by time range: %w", err)
	}
	defer rows.Close()

	return scanFeatureRows(rows)
}

// exists checks if any row for the feature name exists.
func (s *FeatureStore) exists(ctx context.Context, name string) (bool, error) {
	query := `SELECT count(*) FROM rainfall_features WHERE feature_name = ?`

	var count uint64
	if err := s.conn.QueryRow(ctx, query, name).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// scanFeatureRows scans multiple rows.
func scanFeatureRows(rows driver.Rows) ([]*domain.FeatureRow, error) {
	var result []*domain.FeatureRow

	for rows.Next() {
		var r domain.FeatureRow
		var timestampMs uint64

		if err := rows.Scan(&r.Name, &timestampMs, &r.Value); err != nil {
			return nil, fmt.Errorf("scan feature row: %w", err)
		}

		r.Timestamp = time.UnixMilli(int64(timestampMs)).UTC()
		result = append(result, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feature rows: %w", err)
	}

	return result, nil
}
