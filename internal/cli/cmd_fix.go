package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/gridmap/internal/grid"
	"github.com/JonMunkholm/gridmap/internal/textfix"
)

type fixFlags struct {
	mappings string
	replace  []string
	auto     bool
	output   string
}

func newFixCmd(g *globalFlags) *cobra.Command {
	var flags fixFlags

	cmd := &cobra.Command{
		Use:   "fix FILE.csv",
		Short: "Apply encoding replacements to every cell and write the sheet",
		Long: "fix rewrites every cell of the sheet with the given replacements. With --auto\n" +
			"the suggestions of a scan over the mapped cells are applied as well;\n" +
			"explicit --replace pairs take precedence.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			replacements, err := parseReplacements(flags.replace)
			if err != nil {
				return err
			}

			sheet, err := g.readGrid(args[0])
			if err != nil {
				return err
			}

			if flags.auto {
				if flags.mappings == "" {
					return fmt.Errorf("--auto requires --mappings")
				}
				mappings, err := loadMappings(flags.mappings, sheet)
				if err != nil {
					return err
				}
				for from, to := range textfix.SuggestedReplacements(textfix.Scan(sheet, mappings)) {
					if _, ok := replacements[from]; !ok {
						replacements[from] = to
					}
				}
			}
			if len(replacements) == 0 {
				return fmt.Errorf("nothing to apply: pass --replace FROM=TO or --auto")
			}

			fixed := textfix.Apply(sheet, replacements)
			slog.Info("replacements applied", "file", args[0], "replacements", len(replacements))

			w, closeFn, err := output(cmd, flags.output)
			if err != nil {
				return err
			}
			if err := grid.Write(w, fixed); err != nil {
				closeFn()
				return err
			}
			return closeFn()
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.mappings, "mappings", "m", "", "YAML mapping file (for --auto)")
	f.StringArrayVar(&flags.replace, "replace", nil, "Replacement FROM=TO (repeatable)")
	f.BoolVar(&flags.auto, "auto", false, "Apply suggested replacements from a scan")
	f.StringVarP(&flags.output, "output", "o", "", "Output file (default stdout)")
	return cmd
}

// parseReplacements turns FROM=TO pairs into a replacement map.
func parseReplacements(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		from, to, ok := strings.Cut(p, "=")
		if !ok || from == "" {
			return nil, fmt.Errorf("invalid replacement %q (want FROM=TO)", p)
		}
		out[from] = to
	}
	return out, nil
}
