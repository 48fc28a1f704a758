package core

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/JonMunkholm/gridmap/internal/grid"
	"github.com/google/go-cmp/cmp"
)

func scenarioGrid() grid.Grid {
	return grid.New([][]string{
		{"Year", "State", "A", "B"},
		{"2023", "X", "49", "32"},
		{"2023", "Y", "54", "31"},
	})
}

func scenarioMappings(g grid.Grid) []Mapping {
	return []Mapping{
		NewMapping(BindRegion(g, "values", 1, 2, 2, 3), RoleIndicatorValue, "", ""),
		NewMapping(BindRegion(g, "years", 1, 2, 0, 0), RoleTime, "year", ""),
		NewMapping(BindRegion(g, "states", 1, 2, 1, 1), RoleLocation, "state", ""),
		NewMapping(BindRegion(g, "names", 0, 0, 2, 3), RoleIndicatorName, "", ""),
	}
}

func TestGenerate_Scenario(t *testing.T) {
	g := scenarioGrid()

	got, err := Generate(scenarioMappings(g), g)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	coords := func(time, loc, name string) map[string]string {
		return map[string]string{"time": time, "location": loc, "indicator-name": name}
	}
	want := []Tuple{
		{Coordinates: coords("2023", "X", "A"), Value: "49", SourceRow: 1, SourceCol: 2},
		{Coordinates: coords("2023", "X", "B"), Value: "32", SourceRow: 1, SourceCol: 3},
		{Coordinates: coords("2023", "Y", "A"), Value: "54", SourceRow: 2, SourceCol: 2},
		{Coordinates: coords("2023", "Y", "B"), Value: "31", SourceRow: 2, SourceCol: 3},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Generate() mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerate_MissingValueMapping(t *testing.T) {
	g := scenarioGrid()
	mappings := scenarioMappings(g)[1:]

	_, err := Generate(mappings, g)
	if !errors.Is(err, ErrMissingValueMapping) {
		t.Fatalf("Generate() error = %v, want ErrMissingValueMapping", err)
	}

	result := Validate(mappings)
	if result.IsValid || len(result.Errors) == 0 || result.Errors[0] != msgValueRequired {
		t.Errorf("Validate() = %+v, want the value-mapping error", result)
	}

	if _, err := Generate(nil, g); !errors.Is(err, ErrMissingValueMapping) {
		t.Errorf("Generate(nil) error = %v, want ErrMissingValueMapping", err)
	}
}

func TestGenerate_OneTuplePerNonEmptyValueCell(t *testing.T) {
	g := scenarioGrid()
	values := Mapping{
		ID:   "values",
		Role: RoleIndicatorValue,
		Region: Region{
			StartRow: 1, EndRow: 2, StartCol: 2, EndCol: 3,
			Cells: []Cell{
				{Row: 2, Col: 3, Value: "31"},
				{Row: 1, Col: 2, Value: "49"},
				{Row: 1, Col: 3, Value: "  "},
				{Row: 2, Col: 2, Value: ""},
			},
		},
	}
	mappings := append([]Mapping{values}, scenarioMappings(g)[1:]...)

	got, err := Generate(mappings, g)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d tuples, want 2", len(got))
	}
	// Selection order, not grid order.
	if got[0].SourceRow != 2 || got[0].SourceCol != 3 || got[1].SourceRow != 1 {
		t.Errorf("tuples not in selection order: %+v", got)
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	g := scenarioGrid()
	mappings := scenarioMappings(g)

	first, err := Generate(mappings, g)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	second, err := Generate(mappings, g)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if string(a) != string(b) {
		t.Errorf("Generate is not deterministic:\n%s\n%s", a, b)
	}
}

func TestGenerate_MergesValueMappings(t *testing.T) {
	g := scenarioGrid()
	mappings := []Mapping{
		NewMapping(BindRegion(g, "left", 1, 2, 2, 2), RoleIndicatorValue, "", ""),
		NewMapping(BindRegion(g, "all", 1, 2, 2, 3), RoleIndicatorValue, "", ""),
		NewMapping(BindRegion(g, "names", 0, 0, 2, 3), RoleIndicatorName, "", ""),
	}

	got, err := Generate(mappings, g)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	var cells [][2]int
	for _, tp := range got {
		cells = append(cells, [2]int{tp.SourceRow, tp.SourceCol})
	}
	want := [][2]int{{1, 2}, {2, 2}, {1, 3}, {2, 3}}
	if diff := cmp.Diff(want, cells); diff != "" {
		t.Errorf("source cells mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerate_CustomKeyAndRaggedGrid(t *testing.T) {
	rows := [][]string{
		{"Sex", "2023"},
		{"F", "10"},
		{"M"},
	}
	g := grid.Grid(rows)
	mappings := []Mapping{
		NewMapping(BindRegion(g, "v", 1, 2, 1, 1), RoleIndicatorValue, "", ""),
		NewMapping(BindRegion(g, "sex", 1, 2, 0, 0), RoleCustom, "", "Sex"),
		NewMapping(BindRegion(g, "year", 0, 0, 1, 1), RoleTime, "", ""),
	}

	got, err := Generate(mappings, g)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	want := []Tuple{
		{Coordinates: map[string]string{"Sex": "F", "time": "2023"}, Value: "10", SourceRow: 1, SourceCol: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Generate() mismatch (-want +got):\n%s", diff)
	}
	if len(rows[2]) != 1 {
		t.Errorf("caller's ragged row was modified: %v", rows[2])
	}
}

func TestGroupByIndicator(t *testing.T) {
	g := scenarioGrid()
	tuples, err := Generate(scenarioMappings(g), g)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	batches := GroupByIndicator(tuples)
	if len(batches) != 2 {
		t.Fatalf("got %d batches, want 2", len(batches))
	}
	if batches[0].Indicator != "A" || batches[1].Indicator != "B" {
		t.Errorf("batch order = %q, %q; want A, B", batches[0].Indicator, batches[1].Indicator)
	}
	for _, b := range batches {
		if len(b.Tuples) != 2 {
			t.Errorf("batch %q has %d tuples, want 2", b.Indicator, len(b.Tuples))
		}
	}

	none := GroupByIndicator([]Tuple{{Coordinates: map[string]string{"time": "2023"}}})
	if len(none) != 1 || none[0].Indicator != "" {
		t.Errorf("tuples without indicator should group under \"\": %+v", none)
	}
}

func TestDimensionKeys(t *testing.T) {
	g := scenarioGrid()
	mappings := append(scenarioMappings(g), Mapping{Role: RoleCustom, CustomName: "Notes"})

	want := []string{"time", "location", "indicator-name", "Notes"}
	if diff := cmp.Diff(want, DimensionKeys(mappings)); diff != "" {
		t.Errorf("DimensionKeys() mismatch (-want +got):\n%s", diff)
	}
}
