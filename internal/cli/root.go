// Package cli implements the gridmap command-line front end: validate a
// mapping file, generate tuples from a CSV sheet, and audit or repair its
// text encoding.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/gridmap/internal/grid"
	"github.com/JonMunkholm/gridmap/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

// errInvalidMappings is returned when validation reports problems; the
// problems themselves have already been printed.
var errInvalidMappings = errors.New("mapping set is invalid")

// globalFlags are shared by every command.
type globalFlags struct {
	logLevel string
	charset  string
	maxSize  int64
}

// NewRootCommand builds the gridmap command tree.
func NewRootCommand() *cobra.Command {
	var g globalFlags

	root := &cobra.Command{
		Use:   "gridmap",
		Short: "Turn spreadsheet grids into dimensional tuples",
		Long: "gridmap maps regions of a CSV sheet to dimensions (time, location, indicator,\n" +
			"source, unit, custom) and indicator values, then emits one tuple per value cell.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			_ = godotenv.Load()
			logging.SetupWriter(cmd.ErrOrStderr(), g.logLevel, "text")
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&g.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	f.StringVar(&g.charset, "charset", grid.CharsetAuto, "Input charset: auto, utf-8, windows-1252, iso-8859-1")
	f.Int64Var(&g.maxSize, "max-size", grid.DefaultMaxSize, "Maximum input size in bytes")

	root.AddCommand(newValidateCmd(&g))
	root.AddCommand(newGenerateCmd(&g))
	root.AddCommand(newScanCmd(&g))
	root.AddCommand(newFixCmd(&g))
	return root
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := NewRootCommand().Execute(); err != nil {
		if !errors.Is(err, errInvalidMappings) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		return 1
	}
	return 0
}

// readGrid loads a CSV sheet using the global charset and size flags.
func (g *globalFlags) readGrid(path string) (grid.Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheet, err := grid.Read(f, grid.ReadOptions{MaxSize: g.maxSize, Charset: g.charset})
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return sheet, nil
}

// output returns the -o destination, or the command's stdout for "" and "-".
func output(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}
