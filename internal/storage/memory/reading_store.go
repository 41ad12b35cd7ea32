// Package memory provides in-memory store implementations for tests and
// the self-contained pipeline command.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"rainfall-feature-lab/internal/domain"
	"rainfall-feature-lab/internal/grid"
	"rainfall-feature-lab/internal/storage"
)

// ReadingStore is an in-memory implementation of storage.ReadingStore.
type ReadingStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Reading // keyed by (cell, timestamp)
}

// NewReadingStore creates a new in-memory reading store.
func NewReadingStore() *ReadingStore {
	return &ReadingStore{data: make(map[string]*domain.Reading)}
}

func readingKey(cell string, ts time.Time) string {
	return fmt.Sprintf("%s|%d", cell, ts.Unix())
}

// Insert adds one reading. Returns ErrDuplicateKey if (cell, timestamp) exists.
func (s *ReadingStore) Insert(_ context.Context, r *domain.Reading) error {
	if r == nil {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := readingKey(grid.ColLabel(r.Lat, r.Lon), r.Timestamp)
	if _, exists := s.data[key]; exists {
		return storage.ErrDuplicateKey
	}
	readingCopy := *r
	s.data[key] = &readingCopy
	return nil
}

// InsertBulk adds multiple readings. Fails entire batch on any duplicate.
func (s *ReadingStore) InsertBulk(_ context.Context, readings []*domain.Reading) error {
	if len(readings) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(readings))
	for _, r := range readings {
		if r == nil {
			return storage.ErrInvalidInput
		}
		key := readingKey(grid.ColLabel(r.Lat, r.Lon), r.Timestamp)
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, r := range readings {
		key := readingKey(grid.ColLabel(r.Lat, r.Lon), r.Timestamp)
		readingCopy := *r
		s.data[key] = &readingCopy
	}
	return nil
}

// GetAll retrieves every reading, ordered by (lat, lon, timestamp) ASC.
func (s *ReadingStore) GetAll(_ context.Context) ([]*domain.Reading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Reading, 0, len(s.data))
	for _, r := range s.data {
		readingCopy := *r
		result = append(result, &readingCopy)
	}
	sortReadings(result)
	return result, nil
}

// GetByCell retrieves all readings for a cell label, ordered by timestamp ASC.
func (s *ReadingStore) GetByCell(_ context.Context, cell string) ([]*domain.Reading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Reading
	for _, r := range s.data {
		if grid.ColLabel(r.Lat, r.Lon) == cell {
			readingCopy := *r
			result = append(result, &readingCopy)
		}
	}
	sortReadings(result)
	return result, nil
}

// GetByTimeRange retrieves readings within [start, end] (inclusive).
func (s *ReadingStore) GetByTimeRange(_ context.Context, start, end time.Time) ([]*domain.Reading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Reading
	for _, r := range s.data {
		if !r.Timestamp.Before(start) && !r.Timestamp.After(end) {
			readingCopy := *r
			result = append(result, &readingCopy)
		}
	}
	sortReadings(result)
	return result, nil
}

// sortReadings orders by numeric (lat, lon, timestamp) ascending, the
// same ordering the SQL stores produce. Sorting cell labels as text
// would diverge for mixed-magnitude coordinates ("10.0000" < "9.0000").
func sortReadings(readings []*domain.Reading) {
	sort.Slice(readings, func(i, j int) bool {
		if readings[i].Lat != readings[j].Lat {
			return readings[i].Lat < readings[j].Lat
		}
		if readings[i].Lon != readings[j].Lon {
			return readings[i].Lon < readings[j].Lon
		}
		return readings[i].Timestamp.Before(readings[j].Timestamp)
	})
}

var _ storage.ReadingStore = (*ReadingStore)(nil)
