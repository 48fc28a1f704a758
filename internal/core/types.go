// Package core provides the mapping engine: regions, mappings, validation,
// dimension resolution and tuple generation.
// This package has no UI dependencies and can be used by any frontend.
package core

import (
	"context"
	"strings"

	"github.com/JonMunkholm/gridmap/internal/grid"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Role is the semantic role a mapping declares for its region.
type Role string

const (
	RoleTime           Role = "time"
	RoleLocation       Role = "location"
	RoleIndicatorName  Role = "indicator-name"
	RoleIndicatorValue Role = "indicator-value"
	RoleSource         Role = "source"
	RoleUnit           Role = "unit"
	RoleCustom         Role = "custom"
)

// Roles lists every known role in display order.
var Roles = []Role{
	RoleTime,
	RoleLocation,
	RoleIndicatorName,
	RoleIndicatorValue,
	RoleSource,
	RoleUnit,
	RoleCustom,
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// SubKinds restricts the optional sub-kind per role. Roles without an entry
// accept any sub-kind.
var SubKinds = map[Role][]string{
	RoleTime:     {"year", "quarter", "month", "week", "day", "date", "period"},
	RoleLocation: {"country", "state", "province", "region", "county", "city", "district", "postcode"},
}

// ValidSubKind reports whether subKind is allowed for role.
// An empty sub-kind is always allowed.
func ValidSubKind(role Role, subKind string) bool {
	if subKind == "" {
		return true
	}
	vocab, ok := SubKinds[role]
	if !ok {
		return true
	}
	for _, v := range vocab {
		if strings.EqualFold(v, subKind) {
			return true
		}
	}
	return false
}

// Orientation tells whether a mapping's values vary along a row or down a
// column. It is a hint only; resolution is purely geometric.
type Orientation string

const (
	OrientationRow    Orientation = "row"
	OrientationColumn Orientation = "column"
)

// Cell is one selected cell of a region.
type Cell struct {
	Row   int    `json:"row" yaml:"row"`
	Col   int    `json:"col" yaml:"col"`
	Value string `json:"value" yaml:"value"`
}

// Region is a rectangular bounding box plus the cells selected inside it.
// Cells may cover the box only sparsely.
type Region struct {
	ID       string `json:"id" yaml:"id"`
	StartRow int    `json:"startRow" yaml:"startRow"`
	EndRow   int    `json:"endRow" yaml:"endRow"`
	StartCol int    `json:"startCol" yaml:"startCol"`
	EndCol   int    `json:"endCol" yaml:"endCol"`
	Cells    []Cell `json:"cells" yaml:"cells,omitempty"`
}

// ContainsRow reports whether row lies within the region's row range.
func (r Region) ContainsRow(row int) bool {
	return row >= r.StartRow && row <= r.EndRow
}

// ContainsCol reports whether col lies within the region's column range.
func (r Region) ContainsCol(col int) bool {
	return col >= r.StartCol && col <= r.EndCol
}

// Contains reports whether (row, col) lies within the bounding box.
func (r Region) Contains(row, col int) bool {
	return r.ContainsRow(row) && r.ContainsCol(col)
}

// SingleRow reports whether the bounding box is exactly one row tall.
func (r Region) SingleRow() bool {
	return r.StartRow == r.EndRow
}

// SingleCol reports whether the bounding box is exactly one column wide.
func (r Region) SingleCol() bool {
	return r.StartCol == r.EndCol
}

// UniqueValues returns the distinct non-empty cell values in selection order.
func (r Region) UniqueValues() []string {
	seen := make(map[string]bool, len(r.Cells))
	var out []string
	for _, c := range r.Cells {
		v := strings.TrimSpace(c.Value)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// Orientation infers the varying axis from the bounding box shape.
func (r Region) Orientation() Orientation {
	switch {
	case r.SingleRow() && !r.SingleCol():
		return OrientationRow
	case r.SingleCol():
		return OrientationColumn
	case r.EndCol-r.StartCol > r.EndRow-r.StartRow:
		return OrientationRow
	default:
		return OrientationColumn
	}
}

// BindRegion builds a region over the box [startRow..endRow] x
// [startCol..endCol] whose cells are the box's non-empty grid cells in
// row-major order, the same set a full drag selection yields. Inverted
// bounds are swapped. An empty id is replaced with a fresh UUID.
func BindRegion(g grid.Grid, id string, startRow, endRow, startCol, endCol int) Region {
	if startRow > endRow {
		startRow, endRow = endRow, startRow
	}
	if startCol > endCol {
		startCol, endCol = endCol, startCol
	}
	if id == "" {
		id = uuid.NewString()
	}

	region := Region{
		ID:       id,
		StartRow: startRow,
		EndRow:   endRow,
		StartCol: startCol,
		EndCol:   endCol,
	}
	for r := startRow; r <= endRow; r++ {
		for c := startCol; c <= endCol; c++ {
			v := g.At(r, c)
			if strings.TrimSpace(v) == "" {
				continue
			}
			region.Cells = append(region.Cells, Cell{Row: r, Col: c, Value: v})
		}
	}
	return region
}

// Mapping is a region annotated with a semantic role.
type Mapping struct {
	ID           string      `json:"id" yaml:"id"`
	Region       Region      `json:"region" yaml:"region"`
	Role         Role        `json:"type" yaml:"type"`
	SubKind      string      `json:"subtype,omitempty" yaml:"subtype,omitempty"`
	CustomName   string      `json:"customName,omitempty" yaml:"customName,omitempty"`
	UniqueValues []string    `json:"uniqueValues,omitempty" yaml:"-"`
	Color        string      `json:"color,omitempty" yaml:"color,omitempty"`
	Orientation  Orientation `json:"orientation,omitempty" yaml:"orientation,omitempty"`
}

// NewMapping annotates region with a role. UniqueValues and Orientation are
// derived from the region; the mapping id defaults to the region id.
func NewMapping(region Region, role Role, subKind, customName string) Mapping {
	id := region.ID
	if id == "" {
		id = uuid.NewString()
	}
	return Mapping{
		ID:           id,
		Region:       region,
		Role:         role,
		SubKind:      subKind,
		CustomName:   strings.TrimSpace(customName),
		UniqueValues: region.UniqueValues(),
		Orientation:  region.Orientation(),
	}
}

// Key returns the coordinate key the mapping contributes to a tuple: the
// custom name for custom mappings, the role name otherwise.
func (m Mapping) Key() string {
	if m.Role == RoleCustom {
		return strings.TrimSpace(m.CustomName)
	}
	return string(m.Role)
}

// IsValue reports whether the mapping declares indicator values.
func (m Mapping) IsValue() bool {
	return m.Role == RoleIndicatorValue
}

// Rebind re-derives the selected cells, unique values and orientation from
// g, keeping the mapping's geometry and semantics. Used when a saved
// template is applied to a new grid.
func (m Mapping) Rebind(g grid.Grid) Mapping {
	r := m.Region
	m.Region = BindRegion(g, r.ID, r.StartRow, r.EndRow, r.StartCol, r.EndCol)
	m.UniqueValues = m.Region.UniqueValues()
	if m.Orientation == "" {
		m.Orientation = m.Region.Orientation()
	}
	return m
}

// Tuple is one output fact record.
type Tuple struct {
	Coordinates map[string]string `json:"coordinates"`
	Value       string            `json:"value"`
	SourceRow   int               `json:"sourceRow"`
	SourceCol   int               `json:"sourceCol"`
}
