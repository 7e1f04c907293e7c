package cli

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/crossplc/crossplc/internal/export"
)

// Graph export types accepted by --type.
var validExportTypes = []string{"json", "dot", "dataflow-dot", "graphml"}

// ExportOptions holds options for the export command.
type ExportOptions struct {
	*RootOptions
	Type       string
	Output     string
	Components []string
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export <project-file>",
		Short: "Export analysis results as JSON, DOT or GraphML",
		Long: `Serialize a project's analysis results for downstream tools.

Types:
  json          component report with a provenance header
  dot           control flow graph, one cluster per routine
  dataflow-dot  inter-routine data flow graph
  graphml       control flow graph in GraphML`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Type, "type", "t", "json", "export type (json|dot|dataflow-dot|graphml)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path (default stdout)")
	cmd.Flags().StringSliceVar(&opts.Components, "components", []string{"tags", "cfg"},
		"components of a json export (tags|programs|routines|interactions|cfg|fsm)")

	return cmd
}

func runExport(opts *ExportOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if !isValidExportType(opts.Type) {
		msg := fmt.Sprintf("invalid export type %q: must be one of %v", opts.Type, validExportTypes)
		formatter.Error(ErrCodeGeneric, msg, nil)
		return NewExitError(ExitCommandError, msg)
	}

	project, err := LoadProject(path)
	if err != nil {
		return analyzeError(formatter, err)
	}

	var buf bytes.Buffer
	switch opts.Type {
	case "json":
		components := make([]export.Component, 0, len(opts.Components))
		for _, name := range opts.Components {
			c, err := export.ParseComponent(name)
			if err != nil {
				formatter.Error(ErrCodeGeneric, err.Error(), nil)
				return NewExitError(ExitCommandError, err.Error())
			}
			components = append(components, c)
		}
		data, err := export.BuildReport(project, components).JSON()
		if err != nil {
			formatter.Error(ErrCodeGeneric, err.Error(), nil)
			return WrapExitError(ExitCommandError, "build report", err)
		}
		buf.Write(data)
		buf.WriteString("\n")

	case "dot":
		err = export.WriteCFGDOT(&buf, export.BuildCFGSection(project))
	case "dataflow-dot":
		err = export.WriteDataflowDOT(&buf, export.BuildCFGSection(project))
	case "graphml":
		err = export.WriteCFGGraphML(&buf, export.BuildCFGSection(project))
	}
	if err != nil {
		formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "export", err)
	}

	if opts.Output == "" {
		_, err = buf.WriteTo(cmd.OutOrStdout())
		if err != nil {
			return WrapExitError(ExitCommandError, "write output", err)
		}
		return nil
	}

	if err := os.WriteFile(opts.Output, buf.Bytes(), 0o644); err != nil {
		formatter.Error(ErrCodeWriteFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "write output", err)
	}
	formatter.VerboseLog("wrote %s export to %s", opts.Type, opts.Output)
	return nil
}

func isValidExportType(t string) bool {
	for _, valid := range validExportTypes {
		if t == valid {
			return true
		}
	}
	return false
}
