package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/gridmap/internal/core"
	"github.com/JonMunkholm/gridmap/internal/grid"
)

type validateFlags struct {
	mappings string
}

func newValidateCmd(g *globalFlags) *cobra.Command {
	var flags validateFlags

	cmd := &cobra.Command{
		Use:   "validate [FILE.csv]",
		Short: "Check a mapping file, optionally against a sheet",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var sheet grid.Grid
			if len(args) == 1 {
				var err error
				if sheet, err = g.readGrid(args[0]); err != nil {
					return err
				}
			}

			mappings, err := loadMappings(flags.mappings, sheet)
			if err != nil {
				return err
			}
			if err := checkMappings(cmd, mappings); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "OK: %d mappings, dimensions: %v\n", len(mappings), core.DimensionKeys(mappings))
			return nil
		},
	}

	cmd.Flags().StringVarP(&flags.mappings, "mappings", "m", "", "YAML mapping file (required)")
	_ = cmd.MarkFlagRequired("mappings")
	return cmd
}

// loadMappings reads a mapping file and binds it to sheet.
func loadMappings(path string, sheet grid.Grid) ([]core.Mapping, error) {
	file, err := LoadMappingFile(path)
	if err != nil {
		return nil, err
	}
	return file.Bind(sheet)
}

// checkMappings prints every validation error to stderr and fails when
// there is one.
func checkMappings(cmd *cobra.Command, mappings []core.Mapping) error {
	result := core.Validate(mappings)
	if result.IsValid {
		return nil
	}
	for _, e := range result.Errors {
		fmt.Fprintln(cmd.ErrOrStderr(), "invalid:", e)
	}
	return errInvalidMappings
}
