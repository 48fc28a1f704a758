package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/gridmap/internal/core"
	"github.com/JonMunkholm/gridmap/internal/grid"
)

// MappingFile is the YAML declaration of a mapping set. Regions are given
// as bounds, either as a spreadsheet range ("B1:D1") or as zero-based
// startRow/endRow/startCol/endCol; cells are bound from the grid.
//
//	mappings:
//	  - id: years
//	    type: time
//	    subtype: year
//	    range: B1:D1
//	  - type: indicator-value
//	    region: {startRow: 1, endRow: 3, startCol: 1, endCol: 3}
type MappingFile struct {
	Mappings []MappingSpec `yaml:"mappings"`
}

// MappingSpec is one declared mapping.
type MappingSpec struct {
	ID         string       `yaml:"id"`
	Type       core.Role    `yaml:"type"`
	Subtype    string       `yaml:"subtype"`
	CustomName string       `yaml:"customName"`
	Range      string       `yaml:"range"`
	Region     *core.Region `yaml:"region"`
}

// LoadMappingFile reads and parses a YAML mapping file.
func LoadMappingFile(path string) (*MappingFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mappings: %w", err)
	}
	var f MappingFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse mappings %q: %w", path, err)
	}
	if len(f.Mappings) == 0 {
		return nil, fmt.Errorf("parse mappings %q: no mappings declared", path)
	}
	return &f, nil
}

// Bind resolves every declared mapping against g. With a nil grid each
// region selects its whole box with empty values, which is enough for
// structural validation.
func (f *MappingFile) Bind(g grid.Grid) ([]core.Mapping, error) {
	mappings := make([]core.Mapping, 0, len(f.Mappings))
	for i, spec := range f.Mappings {
		id := spec.ID
		if id == "" {
			id = "mapping-" + strconv.Itoa(i+1)
		}

		sr, er, sc, ec, err := spec.bounds()
		if err != nil {
			return nil, fmt.Errorf("mapping %s: %w", id, err)
		}

		var region core.Region
		if g == nil {
			region = boxRegion(id, sr, er, sc, ec)
		} else {
			region = core.BindRegion(g, id, sr, er, sc, ec)
		}
		mappings = append(mappings, core.NewMapping(region, spec.Type, spec.Subtype, spec.CustomName))
	}
	return mappings, nil
}

func (s MappingSpec) bounds() (startRow, endRow, startCol, endCol int, err error) {
	switch {
	case s.Range != "" && s.Region != nil:
		return 0, 0, 0, 0, fmt.Errorf("set either range or region, not both")
	case s.Range != "":
		return ParseRange(s.Range)
	case s.Region != nil:
		r := s.Region
		return r.StartRow, r.EndRow, r.StartCol, r.EndCol, nil
	}
	return 0, 0, 0, 0, fmt.Errorf("missing range or region")
}

func boxRegion(id string, startRow, endRow, startCol, endCol int) core.Region {
	region := core.Region{ID: id, StartRow: startRow, EndRow: endRow, StartCol: startCol, EndCol: endCol}
	for r := startRow; r <= endRow; r++ {
		for c := startCol; c <= endCol; c++ {
			region.Cells = append(region.Cells, core.Cell{Row: r, Col: c})
		}
	}
	return region
}

// ParseRange converts a spreadsheet range such as "B2:D10" or a single
// cell "C3" to zero-based inclusive bounds.
func ParseRange(s string) (startRow, endRow, startCol, endCol int, err error) {
	from, to, ok := strings.Cut(strings.ToUpper(strings.TrimSpace(s)), ":")
	if !ok {
		to = from
	}
	if startRow, startCol, err = parseCellRef(from); err != nil {
		return 0, 0, 0, 0, fmt.Errorf("range %q: %w", s, err)
	}
	if endRow, endCol, err = parseCellRef(to); err != nil {
		return 0, 0, 0, 0, fmt.Errorf("range %q: %w", s, err)
	}
	return min(startRow, endRow), max(startRow, endRow), min(startCol, endCol), max(startCol, endCol), nil
}

// parseCellRef parses "AB12" into row 11, column 27.
func parseCellRef(ref string) (row, col int, err error) {
	i := 0
	for i < len(ref) && ref[i] >= 'A' && ref[i] <= 'Z' {
		col = col*26 + int(ref[i]-'A'+1)
		i++
	}
	if i == 0 || i == len(ref) {
		return 0, 0, fmt.Errorf("invalid cell reference %q", ref)
	}
	n, err := strconv.Atoi(ref[i:])
	if err != nil || n < 1 {
		return 0, 0, fmt.Errorf("invalid cell reference %q", ref)
	}
	return n - 1, col - 1, nil
}
