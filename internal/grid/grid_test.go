package grid

import (
	"testing"
	"time"

	"rainfall-feature-lab/internal/domain"
)

func fp(v float64) *float64 { return &v }

func TestRoundCoord(t *testing.T) {
	if got := RoundCoord(1.22004999); got != 1.2200 {
		t.Errorf("Expected 1.2200, got %v", got)
	}
	if got := RoundCoord(103.60006); got != 103.6001 {
		t.Errorf("Expected 103.6001, got %v", got)
	}
}

func TestColLabel(t *testing.T) {
	// Fixed 4-decimal rendering, trailing zeros kept.
	if got := ColLabel(1.22, 103.6); got != "1.2200,103.6000" {
		t.Errorf("Expected 1.2200,103.6000, got %s", got)
	}
}

func TestInferAxes(t *testing.T) {
	// Float noise within rounding precision collapses into one axis value.
	axes := InferAxes(
		[]float64{1.2450, 1.2200, 1.24500001, 1.2200},
		[]float64{103.6000, 103.6250, 103.6000},
	)

	if len(axes.Lats) != 2 || axes.Lats[0] != 1.2200 || axes.Lats[1] != 1.2450 {
		t.Errorf("Unexpected lat axis: %v", axes.Lats)
	}
	if len(axes.Lons) != 2 || axes.Lons[0] != 103.6000 || axes.Lons[1] != 103.6250 {
		t.Errorf("Unexpected lon axis: %v", axes.Lons)
	}
}

func TestCube_SetAndWide(t *testing.T) {
	times := []time.Time{
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 1, 1, 0, 0, 0, time.UTC),
	}
	axes := InferAxes([]float64{1.2200, 1.2450}, []float64{103.6000})
	cube := NewCube(times, axes)

	if err := cube.Set(1.2200, 103.6000, []*float64{fp(0.5), fp(1.0)}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	table := cube.Wide()
	if len(table.Columns) != 2 {
		t.Fatalf("Expected 2 cell columns, got %d", len(table.Columns))
	}
	// Lat-major order.
	if table.Columns[0] != "1.2200,103.6000" || table.Columns[1] != "1.2450,103.6000" {
		t.Errorf("Unexpected column order: %v", table.Columns)
	}

	set := table.Series("1.2200,103.6000")
	if *set[0] != 0.5 || *set[1] != 1.0 {
		t.Errorf("Unexpected series for set cell: %v, %v", set[0], set[1])
	}

	// The untouched cell stays all missing.
	unset := table.Series("1.2450,103.6000")
	if unset[0] != nil || unset[1] != nil {
		t.Errorf("Expected missing series for unset cell")
	}
}

func TestCube_SetOffGrid(t *testing.T) {
	cube := NewCube(
		[]time.Time{time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		InferAxes([]float64{1.2200}, []float64{103.6000}),
	)

	if err := cube.Set(9.9, 103.6000, []*float64{fp(1)}); err == nil {
		t.Error("Expected error for off-grid coordinate")
	}
}

func TestFromReadings(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	readings := []*domain.Reading{
		{Lat: 1.2200, Lon: 103.6000, Timestamp: base, PrecipMm: fp(0.5)},
		{Lat: 1.2450, Lon: 103.6000, Timestamp: base, PrecipMm: fp(2.0)},
		// Hour 1 has no readings at all; hour 2 covers one cell.
		{Lat: 1.2200, Lon: 103.6000, Timestamp: base.Add(2 * time.Hour), PrecipMm: nil},
		{Lat: 1.2450, Lon: 103.6000, Timestamp: base.Add(2 * time.Hour), PrecipMm: fp(0.0)},
	}

	table, err := FromReadings(readings)
	if err != nil {
		t.Fatalf("FromReadings failed: %v", err)
	}

	// Index spans [min, max] inclusive at one hour.
	if len(table.Times) != 3 {
		t.Fatalf("Expected 3 hours, got %d", len(table.Times))
	}
	if len(table.Columns) != 2 {
		t.Fatalf("Expected 2 cells, got %d", len(table.Columns))
	}

	s := table.Series("1.2200,103.6000")
	if *s[0] != 0.5 {
		t.Errorf("Expected 0.5 at hour 0, got %v", s[0])
	}
	if s[1] != nil {
		t.Errorf("Gap hour should be missing, got %v", *s[1])
	}
	if s[2] != nil {
		t.Errorf("Nil reading should stay missing, got %v", *s[2])
	}

	s2 := table.Series("1.2450,103.6000")
	if *s2[0] != 2.0 || *s2[2] != 0.0 {
		t.Errorf("Unexpected second cell series: %v, %v", s2[0], s2[2])
	}
}

func TestFromReadings_Empty(t *testing.T) {
	if _, err := FromReadings(nil); err == nil {
		t.Error("Expected error for empty readings")
	}
}

func TestFromReadings_OffIndexTimestamp(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	readings := []*domain.Reading{
		{Lat: 1.2200, Lon: 103.6000, Timestamp: base, PrecipMm: fp(1)},
		{Lat: 1.2200, Lon: 103.6000, Timestamp: base.Add(30 * time.Minute), PrecipMm: fp(1)},
	}

	if _, err := FromReadings(readings); err == nil {
		t.Error("Expected error for a reading off the hourly index")
	}
}
