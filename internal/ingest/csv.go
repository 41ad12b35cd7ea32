package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"rainfall-feature-lab/internal/domain"
)

// timestampColumn is the required time-index header of the processed CSV.
const timestampColumn = "timestamp"

// csvTimeLayouts are the accepted timestamp formats, tried in order.
var csvTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
}

// ReadWideCSV parses a processed rainfall CSV: a "timestamp" column plus
// one "lat,lon" column per cell. A missing or unparsable timestamp column
// is fatal; empty value fields become missing readings.
func ReadWideCSV(r io.Reader) (*domain.WideTable, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	tsIdx := -1
	for i, col := range header {
		if col == timestampColumn {
			tsIdx = i
			break
		}
	}
	if tsIdx < 0 {
		return nil, fmt.Errorf("input is missing the %q column", timestampColumn)
	}

	table := &domain.WideTable{Values: make(map[string][]*float64)}
	for i, col := range header {
		if i == tsIdx {
			continue
		}
		table.Columns = append(table.Columns, col)
		table.Values[col] = nil
	}

	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}

		ts, err := parseTimestamp(record[tsIdx])
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}
		table.Times = append(table.Times, ts)

		for i, col := range header {
			if i == tsIdx {
				continue
			}
			value, err := parseValue(record[i])
			if err != nil {
				return nil, fmt.Errorf("csv line %d, column %q: %w", line, col, err)
			}
			table.Values[col] = append(table.Values[col], value)
		}
	}
	return table, nil
}

// ReadWideCSVFile reads a processed rainfall CSV from disk.
func ReadWideCSVFile(path string) (*domain.WideTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	return ReadWideCSV(f)
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range csvTimeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable timestamp %q", s)
}

func parseValue(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("unparsable value %q", s)
	}
	return &v, nil
}
