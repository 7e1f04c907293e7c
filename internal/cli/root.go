package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// RootOptions carries the persistent flags every subcommand reads.
type RootOptions struct {
	Verbose bool
	Format  string
}

// ValidFormats lists the accepted --format values.
var ValidFormats = []string{"text", "json"}

// NewRootCommand assembles the crossplc command tree. Format validation
// runs in PersistentPreRunE so every subcommand inherits it.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "crossplc",
		Short: "Cross-vendor PLC semantic analysis",
		Long: "Analyze PLC control logic across vendors: control-flow graphs,\n" +
			"inter-routine data flow, cross-PLC dependencies and conflicts,\n" +
			"and heuristic state machine extraction.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewAnalyzeCommand(opts))
	cmd.AddCommand(NewMultiCommand(opts))
	cmd.AddCommand(NewFSMCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewRunsCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
