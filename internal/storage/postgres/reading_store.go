package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"rainfall-feature-lab/internal/domain"
	"rainfall-feature-lab/internal/storage"
)

// pgErrUniqueViolation is the PostgreSQL unique_violation code, raised
// when a (lat, lon, ts) primary-key conflict occurs.
const pgErrUniqueViolation = "23505"

// isDuplicateKeyError reports whether err is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation
}

// ReadingStore implements storage.ReadingStore using PostgreSQL.
type ReadingStore struct {
	pool *Pool
}

// NewReadingStore creates a new ReadingStore.
func NewReadingStore(pool *Pool) *ReadingStore {
	return &ReadingStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ReadingStore = (*ReadingStore)(nil)

const readingColumns = "lat, lon, ts, precip_mm"

// Insert adds one reading. Returns ErrDuplicateKey if (cell, timestamp) exists.
func (s *ReadingStore) Insert(ctx context.Context, r *domain.Reading) error {
	if r == nil {
		return storage.ErrInvalidInput
	}

	query := `INSERT INTO readings (` + readingColumns + `) VALUES ($1, $2, $3, $4)`
	_, err := s.pool.Exec(ctx, query, r.Lat, r.Lon, r.Timestamp.UTC(), r.PrecipMm)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert reading: %w", err)
	}
	return nil
}

// InsertBulk adds multiple readings in one transaction. Fails entire batch
// on any duplicate.
func (s *ReadingStore) InsertBulk(ctx context.Context, readings []*domain.Reading) error {
	if len(readings) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `INSERT INTO readings (` + readingColumns + `) VALUES ($1, $2, $3, $4)`
	for _, r := range readings {
		if r == nil {
			return storage.ErrInvalidInput
		}
		if _, err := tx.Exec(ctx, query, r.Lat, r.Lon, r.Timestamp.UTC(), r.PrecipMm); err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert reading: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// GetAll retrieves every reading, ordered by (lat, lon, timestamp) ASC.
func (s *ReadingStore) GetAll(ctx context.Context) ([]*domain.Reading, error) {
	query := `
		SELECT ` + readingColumns + `
		FROM readings
		ORDER BY lat, lon, ts ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query readings: %w", err)
	}
	defer rows.Close()

	return scanReadings(rows)
}

// GetByCell retrieves all readings for a "lat,lon" cell label, ordered by
// timestamp ASC.
func (s *ReadingStore) GetByCell(ctx context.Context, cell string) ([]*domain.Reading, error) {
	query := `
		SELECT ` + readingColumns + `
		FROM readings
		WHERE to_char(lat, 'FM990.0000') || ',' || to_char(lon, 'FM990.0000') = $1
		ORDER BY ts ASC
	`

	rows, err := s.pool.Query(ctx, query, cell)
	if err != nil {
		return nil, fmt.Errorf("query readings by cell: %w", err)
	}
	defer rows.Close()

	return scanReadings(rows)
}

// GetByTimeRange retrieves readings within [start, end] (inclusive).
func (s *ReadingStore) GetByTimeRange(ctx context.Context, start, end time.Time) ([]*domain.Reading, error) {
	query := `
		SELECT ` + readingColumns + `
		FROM readings
		WHERE ts >= $1 AND ts <= $2
		ORDER BY lat, lon, ts ASC
	`

	rows, err := s.pool.Query(ctx, query, start.UTC(), end.UTC())
	if err != nil {
		return nil, fmt.Errorf("query readings by time range: %w", err)
	}
	defer rows.Close()

	return scanReadings(rows)
}

// rowScanner abstracts pgx.Rows for scanning.
type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanReadings(rows rowScanner) ([]*domain.Reading, error) {
	var readings []*domain.Reading

	for rows.Next() {
		var r domain.Reading
		var ts time.Time
		if err := rows.Scan(&r.Lat, &r.Lon, &ts, &r.PrecipMm); err != nil {
			return nil, fmt.Errorf("scan reading row: %w", err)
		}
		r.Timestamp = ts.UTC()
		readings = append(readings, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reading rows: %w", err)
	}

	return readings, nil
}
