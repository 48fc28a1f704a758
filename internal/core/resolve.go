package core

// resolve.go finds, for one value cell and one non-value mapping, the
// dimension string that applies to that cell.
//
// User selections rarely line up with the value block on both axes, so the
// lookup is an ordered table of rules. The first rule whose predicate holds
// produces the answer:
//
//  1. custom:      first non-empty cell of the value row inside the box columns
//  2. exact:       multi-row box containing the value cell -> that cell, even if empty
//  3. header-row:  single-row box -> (box row, value column)
//  4. header-col:  single-column box -> (value row, box column)
//  5. box:         box containing the value cell -> that cell
//  6. nearest:     closest declared value (row, then column, then top-left)
//
// Resolution is geometric: it reads the bounding box and the backing grid,
// never the region's selected-cell list. Cells outside the grid resolve to "".

import (
	"strings"

	"github.com/JonMunkholm/gridmap/internal/grid"
)

// Lookup is the input of every resolution rule: one value cell and one
// dimension mapping over the backing grid.
type Lookup struct {
	Row, Col int
	Mapping  Mapping
	Grid     grid.Grid
}

// ResolveRule is one entry of the resolution table.
type ResolveRule struct {
	Name    string
	Applies func(l Lookup) bool
	Resolve func(l Lookup) string
}

// ResolveRules is the ordered resolution table. The last rule always applies.
var ResolveRules = []ResolveRule{
	{
		Name:    "custom",
		Applies: func(l Lookup) bool { return l.Mapping.Role == RoleCustom },
		Resolve: resolveCustom,
	},
	{
		// An empty cell at the intersection resolves to "" rather than
		// falling through; the box claims the value cell.
		Name: "exact",
		Applies: func(l Lookup) bool {
			r := l.Mapping.Region
			return r.Contains(l.Row, l.Col) && !r.SingleRow()
		},
		Resolve: func(l Lookup) string { return l.Grid.At(l.Row, l.Col) },
	},
	{
		Name:    "header-row",
		Applies: func(l Lookup) bool { return l.Mapping.Region.SingleRow() },
		Resolve: func(l Lookup) string { return l.Grid.At(l.Mapping.Region.StartRow, l.Col) },
	},
	{
		Name:    "header-col",
		Applies: func(l Lookup) bool { return l.Mapping.Region.SingleCol() },
		Resolve: func(l Lookup) string { return l.Grid.At(l.Row, l.Mapping.Region.StartCol) },
	},
	{
		Name:    "box",
		Applies: func(l Lookup) bool { return l.Mapping.Region.Contains(l.Row, l.Col) },
		Resolve: func(l Lookup) string { return l.Grid.At(l.Row, l.Col) },
	},
	{
		Name:    "nearest",
		Applies: func(Lookup) bool { return true },
		Resolve: resolveNearest,
	},
}

// Resolve returns the value of mapping's dimension for the value cell at
// (valueRow, valueCol). It must not be called with a value mapping.
func Resolve(valueRow, valueCol int, mapping Mapping, g grid.Grid) string {
	_, v := resolveWith(ResolveRules, Lookup{Row: valueRow, Col: valueCol, Mapping: mapping, Grid: g})
	return v
}

// ResolveRuleName returns the name of the rule that resolves the value cell,
// for previews and diagnostics.
func ResolveRuleName(valueRow, valueCol int, mapping Mapping, g grid.Grid) string {
	name, _ := resolveWith(ResolveRules, Lookup{Row: valueRow, Col: valueCol, Mapping: mapping, Grid: g})
	return name
}

func resolveWith(rules []ResolveRule, l Lookup) (string, string) {
	for _, rule := range rules {
		if rule.Applies(l) {
			return rule.Name, rule.Resolve(l)
		}
	}
	return "", ""
}

// resolveCustom scans the value row across the box columns, left to right.
// Custom dimensions co-vary with the value row, not its column. Cells that
// are blank after trimming whitespace count as empty, as value cells do in
// Generate.
func resolveCustom(l Lookup) string {
	r := l.Mapping.Region
	start, end := max(r.StartCol, 0), min(r.EndCol, l.Grid.Cols()-1)
	for c := start; c <= end; c++ {
		if v := l.Grid.At(l.Row, c); strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func resolveNearest(l Lookup) string {
	r := l.Mapping.Region
	switch {
	case r.ContainsRow(l.Row):
		return l.Grid.At(l.Row, r.StartCol)
	case r.ContainsCol(l.Col):
		return l.Grid.At(r.StartRow, l.Col)
	default:
		return l.Grid.At(r.StartRow, r.StartCol)
	}
}
