// Package grid holds the raw tabular input the mapping engine works on.
//
// A Grid is a rectangular matrix of strings addressed by zero-based row and
// column index. Ragged input is right-padded with empty strings so every row
// has the same width. Constructors always copy; the caller's slices are never
// mutated.
package grid

// Grid is a rectangular matrix of cell strings.
type Grid [][]string

// New returns a normalized copy of rows. Short rows are padded with empty
// strings up to the width of the widest row.
func New(rows [][]string) Grid {
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}

	g := make(Grid, len(rows))
	for i, row := range rows {
		out := make([]string, width)
		copy(out, row)
		g[i] = out
	}
	return g
}

// Rows returns the number of rows.
func (g Grid) Rows() int {
	return len(g)
}

// Cols returns the width of the widest row.
func (g Grid) Cols() int {
	width := 0
	for _, row := range g {
		if len(row) > width {
			width = len(row)
		}
	}
	return width
}

// At returns the cell at (row, col), or "" when the coordinates fall outside
// the grid. It never panics.
func (g Grid) At(row, col int) string {
	if row < 0 || row >= len(g) {
		return ""
	}
	r := g[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col]
}

// InBounds reports whether (row, col) addresses a cell of g.
func (g Grid) InBounds(row, col int) bool {
	return row >= 0 && row < len(g) && col >= 0 && col < len(g[row])
}

// Clone returns a normalized deep copy.
func (g Grid) Clone() Grid {
	return New(g)
}

// Map returns a new grid with fn applied to every cell.
func (g Grid) Map(fn func(row, col int, value string) string) Grid {
	out := New(g)
	for r, row := range out {
		for c, v := range row {
			row[c] = fn(r, c, v)
		}
	}
	return out
}

// Header returns a copy of the first row, or nil for an empty grid.
func (g Grid) Header() []string {
	if len(g) == 0 {
		return nil
	}
	out := make([]string, len(g[0]))
	copy(out, g[0])
	return out
}
