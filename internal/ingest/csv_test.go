package ingest

import (
	"strings"
	"testing"
	"time"
)

func TestReadWideCSV(t *testing.T) {
	input := `timestamp,"1.2200,103.6000","1.2200,103.6250"
2024-03-01 08:00:00+08:00,0.0,1.5
2024-03-01 09:00:00+08:00,,0.2
2024-03-01 10:00:00+08:00,2.5,
`
	table, err := ReadWideCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadWideCSV failed: %v", err)
	}

	if len(table.Times) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(table.Times))
	}
	if len(table.Columns) != 2 {
		t.Fatalf("Expected 2 cell columns, got %d", len(table.Columns))
	}

	want := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	if !table.Times[0].Equal(want) {
		t.Errorf("Expected first timestamp %v, got %v", want, table.Times[0])
	}

	s := table.Series("1.2200,103.6000")
	if *s[0] != 0.0 || s[1] != nil || *s[2] != 2.5 {
		t.Errorf("Unexpected first cell series: %v", s)
	}
	s2 := table.Series("1.2200,103.6250")
	if *s2[0] != 1.5 || *s2[1] != 0.2 || s2[2] != nil {
		t.Errorf("Unexpected second cell series: %v", s2)
	}
}

func TestReadWideCSV_RFC3339Timestamps(t *testing.T) {
	input := "timestamp,\"1.2200,103.6000\"\n2024-03-01T00:00:00Z,1.0\n"

	table, err := ReadWideCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadWideCSV failed: %v", err)
	}
	if len(table.Times) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(table.Times))
	}
}

func TestReadWideCSV_MissingTimestampColumn(t *testing.T) {
	input := "\"1.2200,103.6000\"\n1.0\n"

	if _, err := ReadWideCSV(strings.NewReader(input)); err == nil {
		t.Error("Expected error for input without a timestamp column")
	}
}

func TestReadWideCSV_UnparsableTimestamp(t *testing.T) {
	input := "timestamp,\"1.2200,103.6000\"\nyesterday,1.0\n"

	if _, err := ReadWideCSV(strings.NewReader(input)); err == nil {
		t.Error("Expected error for unparsable timestamp")
	}
}

func TestReadWideCSV_UnparsableValue(t *testing.T) {
	input := "timestamp,\"1.2200,103.6000\"\n2024-03-01T00:00:00Z,abc\n"

	if _, err := ReadWideCSV(strings.NewReader(input)); err == nil {
		t.Error("Expected error for unparsable value")
	}
}
