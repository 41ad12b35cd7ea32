// Package features implements per-cell temporal rainfall feature
// engineering: lag, rolling, antecedent-index, dry-spell and
// forecast-lookahead transforms applied independently to every grid
// cell of a processed rainfall table.
//
// Naming convention: <prefix>_<LAT>_<LON>, e.g. "lag1h_1.2200_103.6000".
//
// Leakage note: the lookahead transforms read future values of the same
// historical series. They stand in for a real forecast input and must
// not be fed to a model serving live predictions.
package features

import "strings"

// coordSeparator splits a "lat,lon" column header.
const coordSeparator = ","

// ValueColumns returns, in table order, the column names that look like
// "lat,lon" cell labels. Columns without a separator (e.g. "timestamp")
// are excluded. An empty result is a valid no-cells input, not an error.
func ValueColumns(columns []string) []string {
	var cells []string
	for _, c := range columns {
		if strings.Contains(c, coordSeparator) {
			cells = append(cells, c)
		}
	}
	return cells
}

// SplitCoordinate splits a "lat,lon" header into its textual coordinate
// parts with surrounding whitespace trimmed. The parts are kept as opaque
// strings; re-parsing them as numbers could drift the fixed 4-decimal
// representation and with it every feature name.
func SplitCoordinate(col string) (lat, lon string) {
	lat, lon, _ = strings.Cut(col, coordSeparator)
	return strings.TrimSpace(lat), strings.TrimSpace(lon)
}

// FeatureName composes the per-cell feature name "prefix_LAT_LON".
func FeatureName(prefix, col string) string {
	lat, lon := SplitCoordinate(col)
	return prefix + "_" + lat + "_" + lon
}
