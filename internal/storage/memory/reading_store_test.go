package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"rainfall-feature-lab/internal/domain"
	"rainfall-feature-lab/internal/storage"
)

func fp(v float64) *float64 { return &v }

func hour(h int) time.Time {
	return time.Date(2024, 3, 1, h, 0, 0, 0, time.UTC)
}

func TestReadingStore_InsertAndGetAll(t *testing.T) {
	store := NewReadingStore()
	ctx := context.Background()

	readings := []*domain.Reading{
		{Lat: 1.2450, Lon: 103.6000, Timestamp: hour(0), PrecipMm: fp(2.0)},
		{Lat: 1.2200, Lon: 103.6000, Timestamp: hour(1), PrecipMm: nil},
		{Lat: 1.2200, Lon: 103.6000, Timestamp: hour(0), PrecipMm: fp(0.5)},
	}
	if err := store.InsertBulk(ctx, readings); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	result, err := store.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(result) != 3 {
		t.Fatalf("Expected 3 readings, got %d", len(result))
	}

	// Ordered by (lat, lon, timestamp).
	if result[0].Lat != 1.2200 || !result[0].Timestamp.Equal(hour(0)) {
		t.Errorf("Unexpected first reading: %+v", result[0])
	}
	if result[1].PrecipMm != nil {
		t.Errorf("Missing precip should survive the round trip, got %v", *result[1].PrecipMm)
	}
	if result[2].Lat != 1.2450 {
		t.Errorf("Unexpected last reading: %+v", result[2])
	}
}

func TestReadingStore_DuplicateKey(t *testing.T) {
	store := NewReadingStore()
	ctx := context.Background()

	r := &domain.Reading{Lat: 1.2200, Lon: 103.6000, Timestamp: hour(0), PrecipMm: fp(1)}
	if err := store.Insert(ctx, r); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}

	// Same cell and hour, different value.
	dup := &domain.Reading{Lat: 1.2200, Lon: 103.6000, Timestamp: hour(0), PrecipMm: fp(9)}
	if err := store.Insert(ctx, dup); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestReadingStore_IntraBatchDuplicate(t *testing.T) {
	store := NewReadingStore()
	ctx := context.Background()

	readings := []*domain.Reading{
		{Lat: 1.2200, Lon: 103.6000, Timestamp: hour(0)},
		{Lat: 1.2200, Lon: 103.6000, Timestamp: hour(0)},
	}
	err := store.InsertBulk(ctx, readings)
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}

	// The whole batch must be rejected.
	result, _ := store.GetAll(ctx)
	if len(result) != 0 {
		t.Errorf("Expected empty store after failed batch, got %d readings", len(result))
	}
}

func TestReadingStore_NumericOrdering(t *testing.T) {
	store := NewReadingStore()
	ctx := context.Background()

	// "10.0000" sorts before "9.0000" as text; numeric ordering must
	// put 9 first, matching the SQL stores.
	_ = store.InsertBulk(ctx, []*domain.Reading{
		{Lat: 10.0000, Lon: 103.6000, Timestamp: hour(0)},
		{Lat: 9.0000, Lon: 103.6000, Timestamp: hour(0)},
		{Lat: 9.0000, Lon: 100.0000, Timestamp: hour(0)},
	})

	result, err := store.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if result[0].Lat != 9.0000 || result[0].Lon != 100.0000 {
		t.Errorf("Expected (9, 100) first, got (%v, %v)", result[0].Lat, result[0].Lon)
	}
	if result[1].Lat != 9.0000 || result[1].Lon != 103.6000 {
		t.Errorf("Expected (9, 103.6) second, got (%v, %v)", result[1].Lat, result[1].Lon)
	}
	if result[2].Lat != 10.0000 {
		t.Errorf("Expected lat 10 last, got %v", result[2].Lat)
	}
}

func TestReadingStore_GetByCell(t *testing.T) {
	store := NewReadingStore()
	ctx := context.Background()

	_ = store.InsertBulk(ctx, []*domain.Reading{
		{Lat: 1.2200, Lon: 103.6000, Timestamp: hour(1), PrecipMm: fp(1)},
		{Lat: 1.2200, Lon: 103.6000, Timestamp: hour(0), PrecipMm: fp(2)},
		{Lat: 1.2450, Lon: 103.6000, Timestamp: hour(0), PrecipMm: fp(3)},
	})

	result, err := store.GetByCell(ctx, "1.2200,103.6000")
	if err != nil {
		t.Fatalf("GetByCell failed: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("Expected 2 readings, got %d", len(result))
	}
	if !result[0].Timestamp.Equal(hour(0)) || !result[1].Timestamp.Equal(hour(1)) {
		t.Errorf("Readings not ordered by timestamp: %v, %v", result[0].Timestamp, result[1].Timestamp)
	}
}

func TestReadingStore_GetByTimeRange(t *testing.T) {
	store := NewReadingStore()
	ctx := context.Background()

	_ = store.InsertBulk(ctx, []*domain.Reading{
		{Lat: 1.2200, Lon: 103.6000, Timestamp: hour(0)},
		{Lat: 1.2200, Lon: 103.6000, Timestamp: hour(1)},
		{Lat: 1.2200, Lon: 103.6000, Timestamp: hour(2)},
	})

	result, err := store.GetByTimeRange(ctx, hour(1), hour(2))
	if err != nil {
		t.Fatalf("GetByTimeRange failed: %v", err)
	}
	// Inclusive on both ends.
	if len(result) != 2 {
		t.Errorf("Expected 2 readings in [1h, 2h], got %d", len(result))
	}
}

func TestReadingStore_NilInput(t *testing.T) {
	store := NewReadingStore()
	ctx := context.Background()

	if err := store.Insert(ctx, nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
	if err := store.InsertBulk(ctx, nil); err != nil {
		t.Errorf("Empty batch should be a no-op, got %v", err)
	}
}
