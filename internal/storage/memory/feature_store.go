package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"rainfall-feature-lab/internal/domain"
	"rainfall-feature-lab/internal/storage"
)

// FeatureStore is an in-memory implementation of storage.FeatureStore.
type FeatureStore struct {
	mu   sync.RWMutex
	data map[string]*domain.FeatureRow // keyed by (name, timestamp)
}

// NewFeatureStore creates a new in-memory feature store.
func NewFeatureStore() *FeatureStore {
	return &FeatureStore{data: make(map[string]*domain.FeatureRow)}
}

func featureKey(name string, ts time.Time) string {
	return fmt.Sprintf("%s|%d", name, ts.Unix())
}

// InsertBulk adds multiple rows. Fails entire batch on duplicate (name, timestamp).
func (s *FeatureStore) InsertBulk(_ context.Context, rows []*domain.FeatureRow) error {
	if len(rows) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		if r == nil || r.Name == "" {
			return storage.ErrInvalidInput
		}
		key := featureKey(r.Name, r.Timestamp)
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, r := range rows {
		rowCopy := *r
		s.data[featureKey(r.Name, r.Timestamp)] = &rowCopy
	}
	return nil
}

// GetByName retrieves all rows for a feature name, ordered by timestamp ASC.
func (s *FeatureStore) GetByName(_ context.Context, name string) ([]*domain.FeatureRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.FeatureRow
	for _, r := range s.data {
		if r.Name == name {
			rowCopy := *r
			result = append(result, &rowCopy)
		}
	}
	sortFeatureRows(result)
	return result, nil
}

// GetByTimeRange retrieves rows for a feature name within [start, end] (inclusive).
func (s *FeatureStore) GetByTimeRange(_ context.Context, name string, start, end time.Time) ([]*domain.FeatureRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.FeatureRow
	for _, r := range s.data {
		if r.Name == name && !r.Timestamp.Before(start) && !r.Timestamp.After(end) {
			rowCopy := *r
			result = append(result, &rowCopy)
		}
	}
	sortFeatureRows(result)
	return result, nil
}

func sortFeatureRows(rows []*domain.FeatureRow) {
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Timestamp.Before(rows[j].Timestamp)
	})
}

var _ storage.FeatureStore = (*FeatureStore)(nil)
