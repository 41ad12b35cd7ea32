package domain

import "time"

// WideTable is the processed rainfall table: one shared hourly time index
// plus one value column per grid cell. Column names are "lat,lon" labels
// with fixed 4-decimal coordinates (e.g. "1.2200,103.6000"). Values use
// nil for missing readings.
type WideTable struct {
	Times   []time.Time
	Columns []string // original header order
	Values  map[string][]*float64
}

// Series returns the value column for a cell label, or nil if absent.
func (t *WideTable) Series(col string) []*float64 {
	return t.Values[col]
}

// FeatureTable holds engineered feature series sharing the source table's
// time index. Names is the lexicographically sorted column order; iteration
// in Names order is the canonical (reproducible) traversal.
type FeatureTable struct {
	Times   []time.Time
	Names   []string
	Columns map[string][]*float64
}

// FeatureRow is one feature value in long format, as persisted to the
// feature store. Corresponds to the rainfall_features table.
type FeatureRow struct {
	Name      string    // feature column name, e.g. "lag1h_1.2200_103.6000"
	Timestamp time.Time // hour start, UTC
	Value     *float64  // nil = missing
}

// Rows flattens the table into long-format feature rows in canonical
// (name, timestamp) order.
func (t *FeatureTable) Rows() []*FeatureRow {
	rows := make([]*FeatureRow, 0, len(t.Names)*len(t.Times))
	for _, name := range t.Names {
		values := t.Columns[name]
		for i, ts := range t.Times {
			rows = append(rows, &FeatureRow{Name: name, Timestamp: ts, Value: values[i]})
		}
	}
	return rows
}
