// Package grid infers the regular (lat, lon) grid behind a raw gauge
// point set and assembles the processed wide rainfall table.
package grid

import (
	"fmt"
	"math"
	"sort"
	"time"

	"rainfall-feature-lab/internal/domain"
)

// coordPrecision rounds coordinates to 4 decimal places so that float
// noise in the raw feed cannot split one physical cell into two.
const coordPrecision = 1e4

// RoundCoord rounds a coordinate to the fixed 4-decimal grid precision.
func RoundCoord(v float64) float64 {
	return math.Round(v*coordPrecision) / coordPrecision
}

// ColLabel returns the standardized "lat,lon" column label for a cell.
func ColLabel(lat, lon float64) string {
	return fmt.Sprintf("%.4f,%.4f", lat, lon)
}

// Axes holds the unique sorted latitude and longitude values of the grid.
type Axes struct {
	Lats []float64
	Lons []float64
}

// InferAxes extracts the grid axes from raw point coordinates.
func InferAxes(lats, lons []float64) Axes {
	return Axes{Lats: uniqueSorted(lats), Lons: uniqueSorted(lons)}
}

func uniqueSorted(values []float64) []float64 {
	set := make(map[float64]struct{}, len(values))
	for _, v := range values {
		set[RoundCoord(v)] = struct{}{}
	}
	out := make([]float64, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Float64s(out)
	return out
}

// Cube is a (T, nLat, nLon) rainfall volume with nil for missing cells.
type Cube struct {
	Times  []time.Time
	Axes   Axes
	values [][][]*float64 // [t][latIdx][lonIdx]
}

// NewCube allocates an all-missing cube over the given index and axes.
func NewCube(times []time.Time, axes Axes) *Cube {
	values := make([][][]*float64, len(times))
	for t := range values {
		values[t] = make([][]*float64, len(axes.Lats))
		for i := range values[t] {
			values[t][i] = make([]*float64, len(axes.Lons))
		}
	}
	return &Cube{Times: times, Axes: axes, values: values}
}

// Set writes one cell's series, truncated to the time index length.
// Returns an error if the coordinate is not on the inferred grid.
func (c *Cube) Set(lat, lon float64, series []*float64) error {
	i := indexOf(c.Axes.Lats, RoundCoord(lat))
	j := indexOf(c.Axes.Lons, RoundCoord(lon))
	if i < 0 || j < 0 {
		return fmt.Errorf("point (%v, %v) not on inferred grid", lat, lon)
	}
	n := len(series)
	if n > len(c.Times) {
		n = len(c.Times)
	}
	for t := 0; t < n; t++ {
		c.values[t][i][j] = series[t]
	}
	return nil
}

func indexOf(axis []float64, v float64) int {
	k := sort.SearchFloat64s(axis, v)
	if k < len(axis) && axis[k] == v {
		return k
	}
	return -1
}

// Wide flattens the cube into the processed wide table: one "lat,lon"
// column per grid cell, lat-major then lon order (matching the axes).
func (c *Cube) Wide() *domain.WideTable {
	table := &domain.WideTable{
		Times:  c.Times,
		Values: make(map[string][]*float64, len(c.Axes.Lats)*len(c.Axes.Lons)),
	}
	for i, lat := range c.Axes.Lats {
		for j, lon := range c.Axes.Lons {
			col := ColLabel(lat, lon)
			series := make([]*float64, len(c.Times))
			for t := range c.Times {
				series[t] = c.values[t][i][j]
			}
			table.Columns = append(table.Columns, col)
			table.Values[col] = series
		}
	}
	return table
}

// FromReadings assembles a wide table directly from stored gauge readings.
// The time index spans the readings' [min, max] hours inclusive at a one
// hour step; hours with no reading for a cell stay missing.
func FromReadings(readings []*domain.Reading) (*domain.WideTable, error) {
	if len(readings) == 0 {
		return nil, fmt.Errorf("no readings")
	}

	minTime, maxTime := readings[0].Timestamp, readings[0].Timestamp
	lats := make([]float64, 0, len(readings))
	lons := make([]float64, 0, len(readings))
	for _, r := range readings {
		if r.Timestamp.Before(minTime) {
			minTime = r.Timestamp
		}
		if r.Timestamp.After(maxTime) {
			maxTime = r.Timestamp
		}
		lats = append(lats, r.Lat)
		lons = append(lons, r.Lon)
	}

	var times []time.Time
	for ts := minTime; !ts.After(maxTime); ts = ts.Add(time.Hour) {
		times = append(times, ts)
	}
	slot := make(map[time.Time]int, len(times))
	for i, ts := range times {
		slot[ts] = i
	}

	cube := NewCube(times, InferAxes(lats, lons))
	for _, r := range readings {
		t, ok := slot[r.Timestamp]
		if !ok {
			return nil, fmt.Errorf("reading at %s is not on the hourly index", r.Timestamp.Format(time.RFC3339))
		}
		i := indexOf(cube.Axes.Lats, RoundCoord(r.Lat))
		j := indexOf(cube.Axes.Lons, RoundCoord(r.Lon))
		cube.values[t][i][j] = r.PrecipMm
	}
	return cube.Wide(), nil
}
