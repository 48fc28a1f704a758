package core

import (
	"strings"
	"time"

	"github.com/JonMunkholm/gridmap/internal/grid"
)

// DefaultPreviewLimit is the number of sample tuples returned when the
// caller does not ask for a specific limit.
const DefaultPreviewLimit = 10

// PreviewSummary contains the summary counts for a generation preview.
type PreviewSummary struct {
	TotalTuples      int      `json:"totalTuples"`
	ValueCells       int      `json:"valueCells"`
	EmptyValueCells  int      `json:"emptyValueCells"`
	Dimensions       []string `json:"dimensions"`
	IncompleteTuples int      `json:"incompleteTuples"`
	Indicators       []string `json:"indicators"`
}

// PreviewResult is a size-limited view of a generation run for review
// before the user commits to it.
type PreviewResult struct {
	Summary          PreviewSummary   `json:"summary"`
	Samples          []Tuple          `json:"samples"`
	Validation       ValidationResult `json:"validation"`
	ProcessingTimeMs int64            `json:"processingTimeMs"`
}

// Preview generates tuples for mappings over g and returns the first limit
// of them with summary counts. A limit <= 0 uses DefaultPreviewLimit.
func Preview(mappings []Mapping, g grid.Grid, limit int) (*PreviewResult, error) {
	startTime := time.Now()

	if limit <= 0 {
		limit = DefaultPreviewLimit
	}

	tuples, err := Generate(mappings, g)
	if err != nil {
		return nil, err
	}

	resp := &PreviewResult{
		Summary: PreviewSummary{
			TotalTuples: len(tuples),
			Dimensions:  DimensionKeys(mappings),
		},
		Validation: Validate(mappings),
	}

	values, _ := splitMappings(mappings)
	for _, vm := range values {
		for _, c := range vm.Region.Cells {
			resp.Summary.ValueCells++
			if strings.TrimSpace(c.Value) == "" {
				resp.Summary.EmptyValueCells++
			}
		}
	}

	for _, t := range tuples {
		for _, v := range t.Coordinates {
			if strings.TrimSpace(v) == "" {
				resp.Summary.IncompleteTuples++
				break
			}
		}
	}

	for _, b := range GroupByIndicator(tuples) {
		if b.Indicator != "" {
			resp.Summary.Indicators = append(resp.Summary.Indicators, b.Indicator)
		}
	}

	if len(tuples) > limit {
		tuples = tuples[:limit]
	}
	resp.Samples = tuples
	resp.ProcessingTimeMs = time.Since(startTime).Milliseconds()

	return resp, nil
}
