package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/crossplc/crossplc/internal/export"
	"github.com/crossplc/crossplc/internal/interact"
	"github.com/crossplc/crossplc/internal/ir"
)

// AnalyzeOptions holds options for the analyze command.
type AnalyzeOptions struct {
	*RootOptions
}

// analyzeResult is the payload of one single-project analysis.
type analyzeResult struct {
	Controller   string             `json:"controller"`
	Programs     int                `json:"programs"`
	Routines     int                `json:"routines"`
	Warnings     []string           `json:"warnings,omitempty"`
	Interactions *interact.Result   `json:"interactions"`
	CFG          *export.CFGSection `json:"cfg"`
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AnalyzeOptions{RootOptions: rootOpts}

	return &cobra.Command{
		Use:   "analyze <project-file>",
		Short: "Analyze one project: interactions, CFG and data flow",
		Long: `Run the single-project analysis passes over one PLC project:
program interaction detection, per-routine control-flow graphs and
inter-routine data-flow edges.

Accepts OpenPLC .st files or serialized IR .json files.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(opts, args[0], cmd)
		},
	}
}

func runAnalyze(opts *AnalyzeOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	project, err := LoadProject(path)
	if err != nil {
		return analyzeError(formatter, err)
	}
	formatter.VerboseLog("loaded project %s from %s", project.Controller.Name, path)

	routines := 0
	for _, prog := range project.Programs {
		routines += len(prog.Routines)
	}

	result := &analyzeResult{
		Controller:   project.Controller.Name,
		Programs:     len(project.Programs),
		Routines:     routines,
		Warnings:     ir.Validate(project),
		Interactions: interact.Analyze(project),
		CFG:          export.BuildCFGSection(project),
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}
	return formatter.Success(formatAnalyzeText(result))
}

func analyzeError(formatter *OutputFormatter, err error) error {
	code := ErrCodeGeneric
	if loadErr, ok := err.(*LoadError); ok {
		code = loadErr.Code
	}
	formatter.Error(code, err.Error(), nil)
	return NewExitError(ExitCommandError, err.Error())
}

func formatAnalyzeText(r *analyzeResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Controller: %s\n", r.Controller)
	fmt.Fprintf(&b, "Programs: %d, Routines: %d\n", r.Programs, r.Routines)

	for _, warning := range r.Warnings {
		fmt.Fprintf(&b, "Warning: %s\n", warning)
	}

	fmt.Fprintf(&b, "\nInteractions (%d):\n", len(r.Interactions.Interactions))
	for _, in := range r.Interactions.Interactions {
		fmt.Fprintf(&b, "  %s -> %s via %s [%s]\n",
			in.Source, in.Target, strings.Join(in.Via, ", "), in.Type)
	}

	fmt.Fprintf(&b, "\nControl flow (%d routines):\n", len(r.CFG.Routines))
	for _, name := range sortedGraphNames(r.CFG) {
		fmt.Fprintf(&b, "  %s: %d blocks\n", name, len(r.CFG.Routines[name].Blocks))
	}

	fmt.Fprintf(&b, "\nData flow (%d edges):\n", len(r.CFG.Dataflow))
	for _, flow := range r.CFG.Dataflow {
		fmt.Fprintf(&b, "  %s -> %s via %s\n", flow.Source, flow.Target, flow.Tag)
	}

	return strings.TrimRight(b.String(), "\n")
}

func sortedGraphNames(s *export.CFGSection) []string {
	names := make([]string, 0, len(s.Routines))
	for name := range s.Routines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
