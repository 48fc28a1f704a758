package core

import (
	"strings"

	"github.com/JonMunkholm/gridmap/internal/grid"
)

// Generate builds one Tuple per non-empty selected value cell.
//
// Value cells are taken from every indicator-value mapping in order, each in
// the order its cells were selected; a cell selected by two value mappings
// yields a single tuple. For every other mapping the tuple's coordinate under
// Mapping.Key is resolved with Resolve. Output order is deterministic.
//
// Generate returns ErrMissingValueMapping when no indicator-value mapping
// exists, whether or not Validate was called first.
func Generate(mappings []Mapping, g grid.Grid) ([]Tuple, error) {
	values, dimensions := splitMappings(mappings)
	if len(values) == 0 {
		return nil, ErrMissingValueMapping
	}

	g = grid.New(g)

	type coord struct{ row, col int }
	seen := make(map[coord]bool)

	var tuples []Tuple
	for _, vm := range values {
		for _, cell := range vm.Region.Cells {
			if strings.TrimSpace(cell.Value) == "" {
				continue
			}
			key := coord{cell.Row, cell.Col}
			if seen[key] {
				continue
			}
			seen[key] = true

			coords := make(map[string]string, len(dimensions))
			for _, dm := range dimensions {
				coords[dm.Key()] = Resolve(cell.Row, cell.Col, dm, g)
			}

			tuples = append(tuples, Tuple{
				Coordinates: coords,
				Value:       cell.Value,
				SourceRow:   cell.Row,
				SourceCol:   cell.Col,
			})
		}
	}

	return tuples, nil
}

// splitMappings separates value mappings from dimension mappings,
// preserving input order in both.
func splitMappings(mappings []Mapping) (values, dimensions []Mapping) {
	for _, m := range mappings {
		if m.IsValue() {
			values = append(values, m)
		} else {
			dimensions = append(dimensions, m)
		}
	}
	return values, dimensions
}

// DimensionKeys returns the coordinate keys produced by mappings, in mapping
// order and without duplicates.
func DimensionKeys(mappings []Mapping) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, m := range mappings {
		if m.IsValue() {
			continue
		}
		k := m.Key()
		if seen[k] {
			continue
		}
		seen[k] = true
		keys = append(keys, k)
	}
	return keys
}

// GroupByIndicator groups tuples by their indicator-name coordinate in
// first-seen order. Tuples without one are grouped under "".
func GroupByIndicator(tuples []Tuple) []IndicatorBatch {
	index := make(map[string]int)
	var batches []IndicatorBatch
	for _, t := range tuples {
		name := t.Coordinates[string(RoleIndicatorName)]
		i, ok := index[name]
		if !ok {
			i = len(batches)
			index[name] = i
			batches = append(batches, IndicatorBatch{Indicator: name})
		}
		batches[i].Tuples = append(batches[i].Tuples, t)
	}
	return batches
}

// IndicatorBatch is the set of tuples sharing one indicator name.
type IndicatorBatch struct {
	Indicator string  `json:"indicator"`
	Tuples    []Tuple `json:"tuples"`
}
