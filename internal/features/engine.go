package features

import (
	"fmt"
	"sort"
	"sync"

	"rainfall-feature-lab/internal/domain"
)

// BuildAllCellFeatures applies BuildCellFeatures to every cell column of
// the wide table and merges the results into one feature table sharing the
// input's time index. Cells have no cross dependency, so each one is built
// in its own goroutine; the merge is commutative and the final column
// order is the lexicographic sort of feature names, so completion order
// does not affect the result.
//
// Fails if the time index is not strictly increasing (which also rules out
// duplicate timestamps): alignment is undefined otherwise. A table with no
// cell columns produces an empty feature table.
func BuildAllCellFeatures(table *domain.WideTable, cfg Config) (*domain.FeatureTable, error) {
	if len(table.Times) == 0 {
		return nil, fmt.Errorf("wide table has no time index")
	}
	for i := 1; i < len(table.Times); i++ {
		if !table.Times[i].After(table.Times[i-1]) {
			return nil, fmt.Errorf("time index not strictly increasing at row %d (%s >= %s)",
				i, table.Times[i-1].Format("2006-01-02T15:04:05Z07:00"), table.Times[i].Format("2006-01-02T15:04:05Z07:00"))
		}
	}

	cells := ValueColumns(table.Columns)
	for _, col := range cells {
		if len(table.Series(col)) != len(table.Times) {
			return nil, fmt.Errorf("column %q has %d values, want %d", col, len(table.Series(col)), len(table.Times))
		}
	}

	merged := make(map[string][]*float64)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, col := range cells {
		wg.Add(1)
		go func(col string) {
			defer wg.Done()
			feats := BuildCellFeatures(table.Series(col), col, cfg)
			mu.Lock()
			for name, values := range feats {
				merged[name] = values
			}
			mu.Unlock()
		}(col)
	}
	wg.Wait()

	names := make([]string, 0, len(merged))
	for name := range merged {
		names = append(names, name)
	}
	sort.Strings(names)

	return &domain.FeatureTable{
		Times:   table.Times,
		Names:   names,
		Columns: merged,
	}, nil
}
