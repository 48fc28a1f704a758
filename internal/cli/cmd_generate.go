package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/gridmap/internal/core"
)

const (
	formatJSON = "json"
	formatCSV  = "csv"
)

type generateFlags struct {
	mappings string
	format   string
	preview  int
	output   string
}

func newGenerateCmd(g *globalFlags) *cobra.Command {
	var flags generateFlags

	cmd := &cobra.Command{
		Use:   "generate FILE.csv",
		Short: "Generate one tuple per mapped value cell",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.format != formatJSON && flags.format != formatCSV {
				return fmt.Errorf("unknown format %q (want json or csv)", flags.format)
			}

			sheet, err := g.readGrid(args[0])
			if err != nil {
				return err
			}
			mappings, err := loadMappings(flags.mappings, sheet)
			if err != nil {
				return err
			}
			if err := checkMappings(cmd, mappings); err != nil {
				return err
			}

			w, closeFn, err := output(cmd, flags.output)
			if err != nil {
				return err
			}
			defer closeFn()

			if flags.preview > 0 {
				result, err := core.Preview(mappings, sheet, flags.preview)
				if err != nil {
					return err
				}
				return writeIndented(w, result)
			}

			tuples, err := core.Generate(mappings, sheet)
			if err != nil {
				return err
			}
			slog.Info("tuples generated", "file", args[0], "tuples", len(tuples))

			if flags.format == formatCSV {
				return writeTuplesCSV(w, core.DimensionKeys(mappings), tuples)
			}
			if tuples == nil {
				tuples = []core.Tuple{}
			}
			return writeIndented(w, tuples)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.mappings, "mappings", "m", "", "YAML mapping file (required)")
	f.StringVar(&flags.format, "format", formatJSON, "Output format: json or csv")
	f.IntVar(&flags.preview, "preview", 0, "Print a summary and the first N tuples instead")
	f.StringVarP(&flags.output, "output", "o", "", "Output file (default stdout)")
	_ = cmd.MarkFlagRequired("mappings")
	return cmd
}

func writeIndented(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeTuplesCSV writes one row per tuple: the dimension keys in mapping
// order, then value, source_row and source_col.
func writeTuplesCSV(w io.Writer, keys []string, tuples []core.Tuple) error {
	cw := csv.NewWriter(w)
	header := append(append([]string{}, keys...), "value", "source_row", "source_col")
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, t := range tuples {
		row := make([]string, 0, len(header))
		for _, k := range keys {
			row = append(row, t.Coordinates[k])
		}
		row = append(row, t.Value, strconv.Itoa(t.SourceRow), strconv.Itoa(t.SourceCol))
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
