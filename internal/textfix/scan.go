// Package textfix finds and repairs mis-encoded text in mapped grid cells.
//
// The common failure is UTF-8 text opened as Windows-1252 somewhere along the
// way, so "é" arrives as "Ã©". Scan walks every selected cell of the
// dimension mappings, matches it against a lookup table of known corrupted
// sequences, and falls back to heuristics for damage the table does not
// cover. Apply performs the confirmed substitutions across the whole grid.
package textfix

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/JonMunkholm/gridmap/internal/core"
	"github.com/JonMunkholm/gridmap/internal/grid"
)

// DefaultMaxLocations caps the locations kept per issue for display.
const DefaultMaxLocations = 20

// Classification tells how sure the auditor is that text is corrupted.
type Classification string

const (
	// Known issues matched the lookup table.
	Known Classification = "known"
	// Potential issues matched a heuristic only.
	Potential Classification = "potential"
)

// Location is one cell containing an issue.
type Location struct {
	Row      int    `json:"row"`
	Col      int    `json:"col"`
	Role     string `json:"role"`
	Original string `json:"originalValue"`
	Preview  string `json:"previewAfterFix"`
}

// Issue groups every occurrence of one problematic sequence.
type Issue struct {
	Text           string         `json:"problematicText"`
	Suggestion     string         `json:"suggestedReplacement"`
	Classification Classification `json:"classification"`
	Count          int            `json:"occurrenceCount"`
	Locations      []Location     `json:"locations"`

	firstSeen int
}

// WithReplacement returns a copy of the issue using replacement, with every
// location preview recomputed.
func (i Issue) WithReplacement(replacement string) Issue {
	out := i
	out.Suggestion = replacement
	out.Locations = make([]Location, len(i.Locations))
	for n, loc := range i.Locations {
		loc.Preview = preview(loc.Original, i.Text, replacement)
		out.Locations[n] = loc
	}
	return out
}

func preview(original, text, replacement string) string {
	if replacement == "" {
		return original
	}
	return strings.ReplaceAll(original, text, replacement)
}

// Auditor scans mapped cells for encoding damage. It is immutable after
// construction and safe for concurrent use.
type Auditor struct {
	table        Table
	keys         []string
	maxLocations int
}

// Option configures an Auditor.
type Option func(*Auditor)

// WithTable replaces the known-corruption table.
func WithTable(t Table) Option {
	return func(a *Auditor) { a.table = t }
}

// WithMaxLocations caps the locations kept per issue. n <= 0 keeps the default.
func WithMaxLocations(n int) Option {
	return func(a *Auditor) {
		if n > 0 {
			a.maxLocations = n
		}
	}
}

// NewAuditor returns an auditor using DefaultTable unless overridden.
func NewAuditor(opts ...Option) *Auditor {
	a := &Auditor{
		table:        DefaultTable,
		maxLocations: DefaultMaxLocations,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.keys = a.table.keys()
	return a
}

// Scan runs a default Auditor over g.
func Scan(g grid.Grid, mappings []core.Mapping) []Issue {
	return NewAuditor().Scan(g, mappings)
}

// Scan returns the encoding issues found in the selected cells of every
// non-value mapping. A cell selected by more than one mapping is scanned
// once. Issues are ordered known first, then by count descending, then by
// first appearance.
func (a *Auditor) Scan(g grid.Grid, mappings []core.Mapping) []Issue {
	type coord struct{ row, col int }
	seen := make(map[coord]bool)
	index := make(map[string]int)
	var issues []Issue

	for _, m := range mappings {
		if m.IsValue() {
			continue
		}
		for _, cell := range m.Region.Cells {
			key := coord{cell.Row, cell.Col}
			if seen[key] {
				continue
			}
			seen[key] = true

			value := cell.Value
			if g.InBounds(cell.Row, cell.Col) {
				value = g.At(cell.Row, cell.Col)
			}

			counted := make(map[string]bool)
			for _, f := range a.findings(value) {
				i, ok := index[f.text]
				if !ok {
					i = len(issues)
					index[f.text] = i
					issues = append(issues, Issue{
						Text:           f.text,
						Suggestion:     f.suggestion,
						Classification: f.class,
						firstSeen:      i,
					})
				}
				issue := &issues[i]
				issue.Count++
				if counted[f.text] || len(issue.Locations) >= a.maxLocations {
					continue
				}
				counted[f.text] = true
				issue.Locations = append(issue.Locations, Location{
					Row:      cell.Row,
					Col:      cell.Col,
					Role:     m.Key(),
					Original: value,
					Preview:  preview(value, f.text, issue.Suggestion),
				})
			}
		}
	}

	sort.SliceStable(issues, func(i, j int) bool {
		x, y := issues[i], issues[j]
		if x.Classification != y.Classification {
			return x.Classification == Known
		}
		if x.Count != y.Count {
			return x.Count > y.Count
		}
		return x.firstSeen < y.firstSeen
	})

	return issues
}

type finding struct {
	text       string
	suggestion string
	class      Classification
}

// findings walks s left to right. At each position the longest table key
// wins; otherwise the heuristics are tried; otherwise one rune is skipped.
func (a *Auditor) findings(s string) []finding {
	var out []finding
	for i := 0; i < len(s); {
		if k := a.matchKey(s[i:]); k != "" {
			out = append(out, finding{text: k, suggestion: a.table[k], class: Known})
			i += len(k)
			continue
		}
		if f, n := detect(s[i:]); n > 0 {
			out = append(out, f)
			i += n
			continue
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return out
}

func (a *Auditor) matchKey(s string) string {
	for _, k := range a.keys {
		if strings.HasPrefix(s, k) {
			return k
		}
	}
	return ""
}

// detect applies the heuristics at the start of s and returns the finding
// and its length in bytes, or 0 when nothing matched.
//
// A UTF-8 lead byte read as Windows-1252 or ISO-8859-1 shows up as a rune
// in U+00C2..U+00EF followed by one or two runes that re-encode to
// continuation bytes; under ISO-8859-1 those may be C1 controls. A
// U+FFFD means Latin-1 bytes were read as UTF-8; the original character is
// lost so no replacement is suggested.
func detect(s string) (finding, int) {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError && size == 3 {
		return finding{text: string(utf8.RuneError), class: Potential}, size
	}
	if r < 0xC2 || r > 0xEF {
		return finding{}, 0
	}

	want := 2
	if r >= 0xE0 {
		want = 3
	}
	end := 0
	for n := 0; n < want; n++ {
		if end >= len(s) {
			return finding{}, 0
		}
		_, sz := utf8.DecodeRuneInString(s[end:])
		end += sz
	}

	text := s[:end]
	fixed, ok := Repair(text)
	if !ok || utf8.RuneCountInString(fixed) != 1 {
		return finding{}, 0
	}
	return finding{text: text, suggestion: fixed, class: Potential}, end
}

// SuggestedReplacements builds the replacement map for Apply from every
// issue with a non-empty suggestion.
func SuggestedReplacements(issues []Issue) map[string]string {
	out := make(map[string]string)
	for _, issue := range issues {
		if issue.Suggestion != "" {
			out[issue.Text] = issue.Suggestion
		}
	}
	return out
}
