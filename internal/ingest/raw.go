// Package ingest parses the raw gauge-network exports and the processed
// wide CSV, and provides the live gauge stream source.
package ingest

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"rainfall-feature-lab/internal/domain"
	"rainfall-feature-lab/internal/grid"
)

// RawPoint is one gauge location in the raw export: timing metadata plus
// the full precipitation array for the export window. Precip entries are
// null where the gauge reported nothing.
type RawPoint struct {
	Lat    float64    `json:"lat"`
	Lon    float64    `json:"lon"`
	TStart int64      `json:"t_start"` // unix seconds, inclusive
	TEnd   int64      `json:"t_end"`   // unix seconds, exclusive
	Dt     int64      `json:"dt"`      // step in seconds
	Precip []*float64 `json:"precip"`  // mm/h per step
}

// RawDocument is the top-level raw export structure.
type RawDocument struct {
	Points []RawPoint `json:"points"`
}

// ParseRaw decodes a raw gauge-network JSON document.
func ParseRaw(r io.Reader) (*RawDocument, error) {
	var doc RawDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode raw document: %w", err)
	}
	if len(doc.Points) == 0 {
		return nil, fmt.Errorf("raw document has no points")
	}
	return &doc, nil
}

// LoadRawFile reads and decodes a raw export from disk.
func LoadRawFile(path string) (*RawDocument, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open raw document: %w", err)
	}
	defer f.Close()
	return ParseRaw(f)
}

// BuildTimeIndex constructs the shared time axis: inclusive of start,
// exclusive of end, stepping dt seconds, rendered in loc.
func BuildTimeIndex(tStart, tEnd, dtSec int64, loc *time.Location) ([]time.Time, error) {
	if dtSec <= 0 {
		return nil, fmt.Errorf("non-positive time step %d", dtSec)
	}
	if tEnd < tStart {
		return nil, fmt.Errorf("time range end %d before start %d", tEnd, tStart)
	}
	step := time.Duration(dtSec) * time.Second
	var times []time.Time
	for ts := time.Unix(tStart, 0).In(loc); ts.Unix() < tEnd; ts = ts.Add(step) {
		times = append(times, ts)
	}
	return times, nil
}

// ToWideTable converts a raw document into the processed wide table. All
// points are assumed to share the timing metadata of the first point; the
// grid axes are inferred from the point coordinates.
func ToWideTable(doc *RawDocument, loc *time.Location) (*domain.WideTable, error) {
	ref := doc.Points[0]
	times, err := BuildTimeIndex(ref.TStart, ref.TEnd, ref.Dt, loc)
	if err != nil {
		return nil, fmt.Errorf("build time index: %w", err)
	}

	lats := make([]float64, len(doc.Points))
	lons := make([]float64, len(doc.Points))
	for i, p := range doc.Points {
		lats[i] = p.Lat
		lons[i] = p.Lon
	}

	cube := grid.NewCube(times, grid.InferAxes(lats, lons))
	for _, p := range doc.Points {
		if err := cube.Set(p.Lat, p.Lon, p.Precip); err != nil {
			return nil, err
		}
	}
	return cube.Wide(), nil
}

// Readings flattens a raw document into per-hour gauge readings, e.g. for
// loading into a ReadingStore. Null precip entries are kept as missing
// readings so the stored series stays aligned with the export window.
func Readings(doc *RawDocument, loc *time.Location) ([]*domain.Reading, error) {
	var readings []*domain.Reading
	for _, p := range doc.Points {
		times, err := BuildTimeIndex(p.TStart, p.TEnd, p.Dt, loc)
		if err != nil {
			return nil, fmt.Errorf("point (%v, %v): %w", p.Lat, p.Lon, err)
		}
		n := len(p.Precip)
		if n > len(times) {
			n = len(times)
		}
		for t := 0; t < n; t++ {
			readings = append(readings, &domain.Reading{
				Lat:       grid.RoundCoord(p.Lat),
				Lon:       grid.RoundCoord(p.Lon),
				Timestamp: times[t],
				PrecipMm:  p.Precip[t],
			})
		}
	}
	return readings, nil
}
