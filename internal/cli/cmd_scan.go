package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/gridmap/internal/textfix"
)

type scanFlags struct {
	mappings     string
	json         bool
	maxLocations int
}

func newScanCmd(g *globalFlags) *cobra.Command {
	var flags scanFlags

	cmd := &cobra.Command{
		Use:   "scan FILE.csv",
		Short: "Report encoding corruption in mapped dimension cells",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sheet, err := g.readGrid(args[0])
			if err != nil {
				return err
			}
			mappings, err := loadMappings(flags.mappings, sheet)
			if err != nil {
				return err
			}

			auditor := textfix.NewAuditor(textfix.WithMaxLocations(flags.maxLocations))
			issues := auditor.Scan(sheet, mappings)

			out := cmd.OutOrStdout()
			if flags.json {
				if issues == nil {
					issues = []textfix.Issue{}
				}
				return writeIndented(out, issues)
			}
			if len(issues) == 0 {
				fmt.Fprintln(out, "No encoding issues found.")
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TEXT\tSUGGESTION\tKIND\tCOUNT\tFIRST AT")
			for _, is := range issues {
				first := ""
				if len(is.Locations) > 0 {
					l := is.Locations[0]
					first = fmt.Sprintf("row %d col %d (%s)", l.Row+1, l.Col+1, l.Role)
				}
				fmt.Fprintf(tw, "%q\t%q\t%s\t%d\t%s\n", is.Text, is.Suggestion, is.Classification, is.Count, first)
			}
			return tw.Flush()
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.mappings, "mappings", "m", "", "YAML mapping file (required)")
	f.BoolVar(&flags.json, "json", false, "Print issues as JSON")
	f.IntVar(&flags.maxLocations, "max-locations", textfix.DefaultMaxLocations, "Locations reported per issue")
	_ = cmd.MarkFlagRequired("mappings")
	return cmd
}
