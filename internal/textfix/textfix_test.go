package textfix

import (
	"strings"
	"testing"

	"github.com/JonMunkholm/gridmap/internal/core"
	"github.com/JonMunkholm/gridmap/internal/grid"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// sheet has location names damaged in different ways and a clean value block.
func sheet() grid.Grid {
	return grid.New([][]string{
		{"Region", "2023", "2024"},
		{"CafÃ© Nord", "10", "Ã©"},
		{"SÃ£o Paulo", "20", "30"},
		{"MontrÃ©al", "40", "50"},
		{"Ba�a", "60", "70"},
	})
}

func mappingsFor(g grid.Grid) []core.Mapping {
	return []core.Mapping{
		core.NewMapping(core.BindRegion(g, "loc", 1, 4, 0, 0), core.RoleLocation, "city", ""),
		core.NewMapping(core.BindRegion(g, "time", 0, 0, 1, 2), core.RoleTime, "year", ""),
		core.NewMapping(core.BindRegion(g, "vals", 1, 4, 1, 2), core.RoleIndicatorValue, "", ""),
	}
}

func TestDefaultTable(t *testing.T) {
	tests := []struct {
		corrupt string
		want    string
	}{
		{"Ã©", "é"},
		{"Ã£", "ã"},
		{"Ã±", "ñ"},
		{"Â°", "°"},
		{"â€™", "’"},
		{"â€œ", "“"},
		{"â‚¬", "€"},
		{"ÃƒÂ©", "é"},
		// UTF-8 read as ISO-8859-1: second byte becomes a C1 control.
		{"Ã\u0089", "É"},
		{"Ã\u0081", "Á"},
		{"Ã\u008d", "Í"},
		{"Ã\u0096", "Ö"},
		{"â\u0080\u0099", "’"},
	}

	for _, tt := range tests {
		if got := DefaultTable[tt.corrupt]; got != tt.want {
			t.Errorf("DefaultTable[%q] = %q, want %q", tt.corrupt, got, tt.want)
		}
	}
}

func TestMojibakeRepair(t *testing.T) {
	for _, s := range []string{"é", "Ñandú", "naïve", "’", "€"} {
		bad, ok := Mojibake(s)
		if !ok {
			t.Fatalf("Mojibake(%q) not ok", s)
		}
		got, ok := Repair(bad)
		if !ok || got != s {
			t.Errorf("Repair(Mojibake(%q)) = %q, %v; want %q", s, got, ok, s)
		}
	}

	if _, ok := Mojibake("plain ascii"); ok {
		t.Error("Mojibake of ASCII should report no change")
	}
	for _, s := range []string{"École", "Ángel", "Ísland", "Ðorđe", "Ýr"} {
		bad, ok := MojibakeLatin1(s)
		if !ok {
			t.Fatalf("MojibakeLatin1(%q) not ok", s)
		}
		got, ok := Repair(bad)
		if !ok || got != s {
			t.Errorf("Repair(MojibakeLatin1(%q)) = %q, %v; want %q", s, got, ok, s)
		}
	}

	if _, ok := Repair("日本"); ok {
		t.Error("Repair of text outside Windows-1252 should fail")
	}
}

func TestScan_KnownIssues(t *testing.T) {
	g := sheet()
	issues := Scan(g, mappingsFor(g))

	if len(issues) != 3 {
		t.Fatalf("got %d issues, want 3: %+v", len(issues), issues)
	}

	first := issues[0]
	if first.Text != "Ã©" || first.Suggestion != "é" || first.Classification != Known {
		t.Errorf("first issue = %q -> %q (%s), want \"Ã©\" -> \"é\" (known)", first.Text, first.Suggestion, first.Classification)
	}
	if first.Count != 2 {
		t.Errorf("Count = %d, want 2 (value cells are not scanned)", first.Count)
	}

	wantLocs := []Location{
		{Row: 1, Col: 0, Role: "location", Original: "CafÃ© Nord", Preview: "Café Nord"},
		{Row: 3, Col: 0, Role: "location", Original: "MontrÃ©al", Preview: "Montréal"},
	}
	if diff := cmp.Diff(wantLocs, first.Locations); diff != "" {
		t.Errorf("locations mismatch (-want +got):\n%s", diff)
	}

	if issues[1].Text != "Ã£" || issues[1].Suggestion != "ã" {
		t.Errorf("second issue = %q -> %q, want \"Ã£\" -> \"ã\"", issues[1].Text, issues[1].Suggestion)
	}

	last := issues[2]
	if last.Text != "�" || last.Classification != Potential || last.Suggestion != "" {
		t.Errorf("last issue = %+v, want potential U+FFFD with no suggestion", last)
	}
	if last.Locations[0].Preview != last.Locations[0].Original {
		t.Errorf("preview without suggestion should equal original, got %q", last.Locations[0].Preview)
	}
}

func TestScan_HeuristicSequence(t *testing.T) {
	// U+0100 is outside the table; its UTF-8 bytes read as Windows-1252 give "Ä€".
	g := grid.New([][]string{
		{"KÄ€ti", "1"},
	})
	mappings := []core.Mapping{
		core.NewMapping(core.BindRegion(g, "src", 0, 0, 0, 0), core.RoleSource, "", ""),
		core.NewMapping(core.BindRegion(g, "v", 0, 0, 1, 1), core.RoleIndicatorValue, "", ""),
	}

	issues := Scan(g, mappings)
	if len(issues) != 1 {
		t.Fatalf("got %d issues, want 1: %+v", len(issues), issues)
	}
	if issues[0].Text != "Ä€" || issues[0].Suggestion != "Ā" || issues[0].Classification != Potential {
		t.Errorf("issue = %q -> %q (%s), want \"Ä€\" -> \"Ā\" (potential)", issues[0].Text, issues[0].Suggestion, issues[0].Classification)
	}
}

func TestScan_Latin1Misread(t *testing.T) {
	tests := []struct {
		cell        string
		wantText    string
		wantSuggest string
		wantFixed   string
	}{
		{"Ã\u0089cole", "Ã\u0089", "É", "École"},
		{"Ã\u0081frica", "Ã\u0081", "Á", "África"},
		{"Ã\u008dndia", "Ã\u008d", "Í", "Índia"},
		{"Ã\u0096sterreich", "Ã\u0096", "Ö", "Österreich"},
	}

	for _, tt := range tests {
		t.Run(tt.wantFixed, func(t *testing.T) {
			g := grid.New([][]string{{tt.cell, "1"}})
			mappings := []core.Mapping{
				core.NewMapping(core.BindRegion(g, "loc", 0, 0, 0, 0), core.RoleLocation, "country", ""),
				core.NewMapping(core.BindRegion(g, "v", 0, 0, 1, 1), core.RoleIndicatorValue, "", ""),
			}

			issues := Scan(g, mappings)
			if len(issues) != 1 {
				t.Fatalf("got %d issues, want 1: %+v", len(issues), issues)
			}
			is := issues[0]
			if is.Text != tt.wantText || is.Suggestion != tt.wantSuggest || is.Classification != Known {
				t.Errorf("issue = %q -> %q (%s), want %q -> %q (known)", is.Text, is.Suggestion, is.Classification, tt.wantText, tt.wantSuggest)
			}

			fixed := Apply(g, SuggestedReplacements(issues))
			if got := fixed.At(0, 0); got != tt.wantFixed {
				t.Errorf("fixed cell = %q, want %q", got, tt.wantFixed)
			}
		})
	}
}

func TestScan_Latin1HeuristicFallback(t *testing.T) {
	// With an empty table only the heuristic can find the C1 sequence.
	g := grid.New([][]string{{"Ã\u0089cole", "1"}})
	mappings := []core.Mapping{
		core.NewMapping(core.BindRegion(g, "loc", 0, 0, 0, 0), core.RoleLocation, "", ""),
		core.NewMapping(core.BindRegion(g, "v", 0, 0, 1, 1), core.RoleIndicatorValue, "", ""),
	}

	issues := NewAuditor(WithTable(Table{})).Scan(g, mappings)
	if len(issues) != 1 {
		t.Fatalf("got %d issues, want 1: %+v", len(issues), issues)
	}
	if issues[0].Text != "Ã\u0089" || issues[0].Suggestion != "É" || issues[0].Classification != Potential {
		t.Errorf("issue = %+v, want potential \"Ã\\u0089\" -> \"É\"", issues[0])
	}
}

func TestScan_GridReadAsLatin1(t *testing.T) {
	// A UTF-8 file opened with the ISO-8859-1 charset.
	g, err := grid.Read(strings.NewReader("École,1\n"), grid.ReadOptions{Charset: grid.CharsetLatin1})
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if got := g.At(0, 0); got != "Ã\u0089cole" {
		t.Fatalf("cell = %q, want mis-decoded text", got)
	}

	mappings := []core.Mapping{
		core.NewMapping(core.BindRegion(g, "loc", 0, 0, 0, 0), core.RoleLocation, "", ""),
		core.NewMapping(core.BindRegion(g, "v", 0, 0, 1, 1), core.RoleIndicatorValue, "", ""),
	}
	fixed := Apply(g, SuggestedReplacements(Scan(g, mappings)))
	if got := fixed.At(0, 0); got != "École" {
		t.Errorf("fixed cell = %q, want %q", got, "École")
	}
}

func TestScan_CleanTextHasNoIssues(t *testing.T) {
	g := grid.New([][]string{
		{"Café", "naïve", "São Paulo", "Zürich"},
		{"1", "2", "3", "4"},
	})
	mappings := []core.Mapping{
		core.NewMapping(core.BindRegion(g, "loc", 0, 0, 0, 3), core.RoleLocation, "", ""),
		core.NewMapping(core.BindRegion(g, "v", 1, 1, 0, 3), core.RoleIndicatorValue, "", ""),
	}

	if issues := Scan(g, mappings); len(issues) != 0 {
		t.Errorf("clean text produced issues: %+v", issues)
	}
}

func TestScan_Ordering(t *testing.T) {
	// One known issue seen once, one potential seen three times, one known
	// seen twice: known first, then by count.
	g := grid.New([][]string{
		{"Ã±", "���", "Ã¼ Ã¼"},
		{"1", "2", "3"},
	})
	mappings := []core.Mapping{
		core.NewMapping(core.BindRegion(g, "c", 0, 0, 0, 2), core.RoleCustom, "", "Notes"),
		core.NewMapping(core.BindRegion(g, "v", 1, 1, 0, 2), core.RoleIndicatorValue, "", ""),
	}

	issues := Scan(g, mappings)
	var got []string
	for _, i := range issues {
		got = append(got, i.Text)
	}
	want := []string{"Ã¼", "Ã±", "�"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	if issues[0].Locations[0].Role != "Notes" {
		t.Errorf("custom mapping location role = %q, want %q", issues[0].Locations[0].Role, "Notes")
	}
}

func TestScan_CellScannedOnce(t *testing.T) {
	g := grid.New([][]string{
		{"Ã©", "1"},
	})
	region := core.BindRegion(g, "a", 0, 0, 0, 0)
	mappings := []core.Mapping{
		core.NewMapping(region, core.RoleLocation, "", ""),
		core.NewMapping(region, core.RoleSource, "", ""),
		core.NewMapping(core.BindRegion(g, "v", 0, 0, 1, 1), core.RoleIndicatorValue, "", ""),
	}

	issues := Scan(g, mappings)
	if len(issues) != 1 || issues[0].Count != 1 {
		t.Errorf("expected one issue counted once, got %+v", issues)
	}
}

func TestAuditor_Options(t *testing.T) {
	g := sheet()

	capped := NewAuditor(WithMaxLocations(1)).Scan(g, mappingsFor(g))
	if len(capped[0].Locations) != 1 {
		t.Errorf("Locations = %d, want 1", len(capped[0].Locations))
	}
	if capped[0].Count != 2 {
		t.Errorf("Count = %d, want 2; the cap applies to display only", capped[0].Count)
	}

	custom := NewAuditor(WithTable(Table{"Nord": "North"})).Scan(g, mappingsFor(g))
	if len(custom) == 0 || custom[0].Text != "Nord" || custom[0].Suggestion != "North" {
		t.Errorf("custom table not used: %+v", custom)
	}
}

func TestIssue_WithReplacement(t *testing.T) {
	g := sheet()
	issue := Scan(g, mappingsFor(g))[0]

	got := issue.WithReplacement("e")
	if got.Suggestion != "e" {
		t.Errorf("Suggestion = %q, want %q", got.Suggestion, "e")
	}
	if got.Locations[0].Preview != "Cafe Nord" {
		t.Errorf("Preview = %q, want %q", got.Locations[0].Preview, "Cafe Nord")
	}
	if issue.Locations[0].Preview != "Café Nord" {
		t.Errorf("WithReplacement mutated the original issue: %q", issue.Locations[0].Preview)
	}
}

func TestApply(t *testing.T) {
	g := grid.New([][]string{
		{"CafÃ©", "ÃƒÂ©t", "x"},
		{"Ã©", "keep"},
	})

	got := Apply(g, map[string]string{
		"Ã©":   "é",
		"ÃƒÂ©": "é",
		"keep": "",
		"":     "ignored",
	})

	want := grid.Grid{
		{"Café", "ét", "x"},
		{"é", "keep", ""},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Apply mismatch (-want +got):\n%s", diff)
	}
	if g[0][0] != "CafÃ©" {
		t.Errorf("Apply mutated input grid: %q", g[0][0])
	}
}

func TestApply_NoReplacementsCopies(t *testing.T) {
	g := grid.New([][]string{{"a"}})
	got := Apply(g, nil)
	got[0][0] = "b"
	if g[0][0] != "a" {
		t.Error("Apply with no replacements must return a copy")
	}
}

func TestRoundTrip(t *testing.T) {
	g := sheet()
	issues := Scan(g, mappingsFor(g))

	for _, issue := range issues {
		if issue.Suggestion == "" {
			continue
		}
		fixed := Apply(g, map[string]string{issue.Text: issue.Suggestion})
		for r, row := range g {
			for c, v := range row {
				if strings.Contains(v, issue.Text) && strings.Contains(fixed[r][c], issue.Text) {
					t.Errorf("%q still present at (%d,%d) after fix: %q", issue.Text, r, c, fixed[r][c])
				}
			}
		}
	}

	fixed := Apply(g, SuggestedReplacements(issues))
	if again := Scan(fixed, mappingsFor(fixed)); len(again) != 1 || again[0].Suggestion != "" {
		t.Errorf("after applying all suggestions only the unfixable issue should remain, got %+v", again)
	}
}

func TestSuggestedReplacements(t *testing.T) {
	issues := []Issue{
		{Text: "Ã©", Suggestion: "é"},
		{Text: "�"},
	}
	want := map[string]string{"Ã©": "é"}
	if diff := cmp.Diff(want, SuggestedReplacements(issues)); diff != "" {
		t.Errorf("SuggestedReplacements mismatch (-want +got):\n%s", diff)
	}
}

func TestScan_IssuesComparable(t *testing.T) {
	g := sheet()
	a := Scan(g, mappingsFor(g))
	b := Scan(g, mappingsFor(g))
	if diff := cmp.Diff(a, b, cmpopts.IgnoreUnexported(Issue{})); diff != "" {
		t.Errorf("Scan is not deterministic (-first +second):\n%s", diff)
	}
}
