package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/gridmap/internal/grid"
)

// MappingSet is the semantic declaration for one grid. Indicator values form
// an ordered collection; every other role holds at most one mapping, so a
// duplicate role cannot be represented.
//
// A MappingSet is mutated one mapping at a time between generation runs and
// is not safe for concurrent use.
type MappingSet struct {
	values     []Mapping
	dimensions map[Role]Mapping
	order      []Role // role of each mapping in insertion order
}

// NewMappingSet builds a set from mappings, rejecting every mapping Add
// would reject. All rejections are returned joined.
func NewMappingSet(mappings ...Mapping) (*MappingSet, error) {
	s := &MappingSet{dimensions: make(map[Role]Mapping)}
	var errs []error
	for _, m := range mappings {
		if err := s.Add(m); err != nil {
			errs = append(errs, err)
		}
	}
	return s, errors.Join(errs...)
}

// Add inserts m. A second mapping for a non-value role fails with
// ErrDuplicateRole; a custom mapping without a name fails with
// ErrCustomNameRequired.
func (s *MappingSet) Add(m Mapping) error {
	if s.dimensions == nil {
		s.dimensions = make(map[Role]Mapping)
	}

	if !m.Role.Valid() {
		return fmt.Errorf("%w: %s", ErrUnknownRole, m.Role)
	}
	if m.Role == RoleCustom && strings.TrimSpace(m.CustomName) == "" {
		return ErrCustomNameRequired
	}

	if m.IsValue() {
		s.values = append(s.values, m)
	} else {
		if _, exists := s.dimensions[m.Role]; exists {
			return fmt.Errorf("%w: %s", ErrDuplicateRole, m.Role)
		}
		s.dimensions[m.Role] = m
	}
	s.order = append(s.order, m.Role)
	return nil
}

// Remove deletes the mapping with the given id.
func (s *MappingSet) Remove(id string) error {
	for i, v := range s.values {
		if v.ID == id {
			s.values = append(s.values[:i], s.values[i+1:]...)
			s.dropOrder(RoleIndicatorValue, i)
			return nil
		}
	}
	for role, d := range s.dimensions {
		if d.ID == id {
			delete(s.dimensions, role)
			s.dropOrder(role, 0)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrMappingNotFound, id)
}

// dropOrder removes the nth occurrence of role from the insertion order.
func (s *MappingSet) dropOrder(role Role, nth int) {
	for i, r := range s.order {
		if r != role {
			continue
		}
		if nth == 0 {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
		nth--
	}
}

// Values returns the indicator-value mappings in insertion order.
func (s *MappingSet) Values() []Mapping {
	out := make([]Mapping, len(s.values))
	copy(out, s.values)
	return out
}

// Dimension returns the mapping declared for role, if any.
func (s *MappingSet) Dimension(role Role) (Mapping, bool) {
	m, ok := s.dimensions[role]
	return m, ok
}

// Mappings returns every mapping in insertion order.
func (s *MappingSet) Mappings() []Mapping {
	out := make([]Mapping, 0, len(s.order))
	vi := 0
	for _, role := range s.order {
		if role == RoleIndicatorValue {
			out = append(out, s.values[vi])
			vi++
			continue
		}
		out = append(out, s.dimensions[role])
	}
	return out
}

// Len returns the number of mappings.
func (s *MappingSet) Len() int {
	return len(s.values) + len(s.dimensions)
}

// Validate runs Validate over the set.
func (s *MappingSet) Validate() ValidationResult {
	return Validate(s.Mappings())
}

// Generate runs Generate over the set.
func (s *MappingSet) Generate(g grid.Grid) ([]Tuple, error) {
	return Generate(s.Mappings(), g)
}
