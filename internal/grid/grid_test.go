package grid

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNew_PadsRaggedRows(t *testing.T) {
	rows := [][]string{
		{"a"},
		{"b", "c", "d"},
		{},
	}

	g := New(rows)

	want := Grid{
		{"a", "", ""},
		{"b", "c", "d"},
		{"", "", ""},
	}
	if diff := cmp.Diff(want, g); diff != "" {
		t.Errorf("New() mismatch (-want +got):\n%s", diff)
	}

	if len(rows[0]) != 1 {
		t.Errorf("caller row mutated: len = %d, want 1", len(rows[0]))
	}
}

func TestNew_Copies(t *testing.T) {
	rows := [][]string{{"x", "y"}}
	g := New(rows)
	g[0][0] = "changed"

	if rows[0][0] != "x" {
		t.Errorf("caller grid mutated: got %q, want %q", rows[0][0], "x")
	}
}

func TestAt(t *testing.T) {
	g := New([][]string{{"a", "b"}, {"c"}})

	tests := []struct {
		name     string
		row, col int
		want     string
	}{
		{"in bounds", 0, 1, "b"},
		{"padded cell", 1, 1, ""},
		{"row out of range", 5, 0, ""},
		{"col out of range", 0, 9, ""},
		{"negative row", -1, 0, ""},
		{"negative col", 0, -3, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.At(tt.row, tt.col); got != tt.want {
				t.Errorf("At(%d, %d) = %q, want %q", tt.row, tt.col, got, tt.want)
			}
		})
	}
}

func TestDimensions(t *testing.T) {
	g := New([][]string{{"a"}, {"b", "c", "d"}})
	if g.Rows() != 2 {
		t.Errorf("Rows() = %d, want 2", g.Rows())
	}
	if g.Cols() != 3 {
		t.Errorf("Cols() = %d, want 3", g.Cols())
	}
	if !g.InBounds(1, 2) {
		t.Error("InBounds(1, 2) = false, want true")
	}
	if g.InBounds(2, 0) {
		t.Error("InBounds(2, 0) = true, want false")
	}
}

func TestMap_ReturnsNewGrid(t *testing.T) {
	g := New([][]string{{"a", "b"}})
	out := g.Map(func(row, col int, v string) string { return v + v })

	if diff := cmp.Diff(Grid{{"aa", "bb"}}, out); diff != "" {
		t.Errorf("Map() mismatch (-want +got):\n%s", diff)
	}
	if g[0][0] != "a" {
		t.Errorf("source grid mutated: %q", g[0][0])
	}
}

func TestHeader(t *testing.T) {
	if h := (Grid{}).Header(); h != nil {
		t.Errorf("Header() on empty grid = %v, want nil", h)
	}
	g := New([][]string{{"Year", "State"}, {"2023", "X"}})
	if diff := cmp.Diff([]string{"Year", "State"}, g.Header()); diff != "" {
		t.Errorf("Header() mismatch (-want +got):\n%s", diff)
	}
}
