package core

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// mapping builds a mapping with one selected cell, enough for validation.
func mapping(id string, role Role, subKind, customName string) Mapping {
	return Mapping{
		ID:         id,
		Role:       role,
		SubKind:    subKind,
		CustomName: customName,
		Region: Region{
			ID:    id,
			Cells: []Cell{{Row: 0, Col: 0, Value: "x"}},
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		mappings []Mapping
		want     []string
	}{
		{
			name: "valid set",
			mappings: []Mapping{
				mapping("v", RoleIndicatorValue, "", ""),
				mapping("t", RoleTime, "year", ""),
				mapping("l", RoleLocation, "state", ""),
			},
			want: []string{},
		},
		{
			name:     "empty set reports both requirements",
			mappings: nil,
			want: []string{
				"At least one indicator-values mapping is required.",
				"At least one dimension mapping (other than indicator values) is required.",
			},
		},
		{
			name: "values only",
			mappings: []Mapping{
				mapping("v", RoleIndicatorValue, "", ""),
			},
			want: []string{"At least one dimension mapping (other than indicator values) is required."},
		},
		{
			name: "dimensions only",
			mappings: []Mapping{
				mapping("t", RoleTime, "", ""),
			},
			want: []string{"At least one indicator-values mapping is required."},
		},
		{
			name: "duplicate time with different sub-kinds",
			mappings: []Mapping{
				mapping("v", RoleIndicatorValue, "", ""),
				mapping("t1", RoleTime, "year", ""),
				mapping("t2", RoleTime, "month", ""),
			},
			want: []string{"Duplicate dimension types found: time"},
		},
		{
			name: "every duplicated role is named",
			mappings: []Mapping{
				mapping("v", RoleIndicatorValue, "", ""),
				mapping("u1", RoleUnit, "", ""),
				mapping("t1", RoleTime, "", ""),
				mapping("u2", RoleUnit, "", ""),
				mapping("t2", RoleTime, "", ""),
				mapping("u3", RoleUnit, "", ""),
			},
			want: []string{"Duplicate dimension types found: unit, time"},
		},
		{
			name: "repeated value mappings are allowed",
			mappings: []Mapping{
				mapping("v1", RoleIndicatorValue, "", ""),
				mapping("v2", RoleIndicatorValue, "", ""),
				mapping("s", RoleSource, "", ""),
			},
			want: []string{},
		},
		{
			name: "custom without name reported once",
			mappings: []Mapping{
				mapping("v", RoleIndicatorValue, "", ""),
				mapping("c1", RoleCustom, "", ""),
				mapping("c2", RoleCustom, "", "   "),
			},
			want: []string{
				"Duplicate dimension types found: custom",
				"Additional dimensions must have a custom name",
			},
		},
		{
			name: "named custom is valid",
			mappings: []Mapping{
				mapping("v", RoleIndicatorValue, "", ""),
				mapping("c", RoleCustom, "", "Sex"),
			},
			want: []string{},
		},
		{
			name: "sub-kind outside vocabulary",
			mappings: []Mapping{
				mapping("v", RoleIndicatorValue, "", ""),
				mapping("t", RoleTime, "century", ""),
			},
			want: []string{"Invalid sub-type century for time"},
		},
		{
			name: "unknown role",
			mappings: []Mapping{
				mapping("v", RoleIndicatorValue, "", ""),
				mapping("x", Role("colour"), "", ""),
			},
			want: []string{"Unknown dimension type colour"},
		},
		{
			name: "empty region",
			mappings: []Mapping{
				mapping("v", RoleIndicatorValue, "", ""),
				{ID: "empty", Role: RoleSource, Region: Region{ID: "empty"}},
			},
			want: []string{"Mapping empty has no selected cells"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Validate(tt.mappings)

			if diff := cmp.Diff(tt.want, got.Errors); diff != "" {
				t.Errorf("Validate() errors mismatch (-want +got):\n%s", diff)
			}
			if got.IsValid != (len(tt.want) == 0) {
				t.Errorf("IsValid = %v with errors %v", got.IsValid, got.Errors)
			}
		})
	}
}

func TestValidate_DoesNotMutateInput(t *testing.T) {
	in := []Mapping{
		mapping("t1", RoleTime, "", ""),
		mapping("t2", RoleTime, "", ""),
	}
	want := make([]Mapping, len(in))
	copy(want, in)

	Validate(in)

	if diff := cmp.Diff(want, in); diff != "" {
		t.Errorf("Validate mutated its input (-want +got):\n%s", diff)
	}
}
