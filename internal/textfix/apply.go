package textfix

import (
	"strings"

	"github.com/JonMunkholm/gridmap/internal/grid"
)

// Apply returns a new grid with every occurrence of every key in
// replacements substituted across all cells, mapped or not. Keys with an
// empty replacement are ignored. Where keys overlap the longest one wins.
func Apply(g grid.Grid, replacements map[string]string) grid.Grid {
	t := make(Table, len(replacements))
	for from, to := range replacements {
		if from != "" && to != "" {
			t[from] = to
		}
	}
	if len(t) == 0 {
		return g.Clone()
	}

	keys := t.keys()
	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, k, t[k])
	}
	r := strings.NewReplacer(pairs...)

	return g.Map(func(_, _ int, v string) string {
		return r.Replace(v)
	})
}
