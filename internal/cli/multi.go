package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/crossplc/crossplc/internal/export"
	"github.com/crossplc/crossplc/internal/multiplc"
	"github.com/crossplc/crossplc/internal/store"
)

// MultiOptions holds options for the multi command.
type MultiOptions struct {
	*RootOptions
	StorePath string
}

// multiResult wraps the fleet summary with the optional archive id.
type multiResult struct {
	RunID   string          `json:"run_id,omitempty"`
	Summary *export.Summary `json:"summary"`
}

// NewMultiCommand creates the multi command.
func NewMultiCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MultiOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "multi <project-file>...",
		Short: "Analyze a fleet: cross-PLC dependencies and conflicts",
		Long: `Analyze two or more PLC projects together. Reports which controller
writes each shared tag and which controllers read it, plus tags whose
declarations disagree across controllers.

With --store, the result is archived in a SQLite database under a
fresh run id for later comparison.`,
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMulti(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.StorePath, "store", "", "SQLite database path for archiving the run")

	return cmd
}

func runMulti(opts *MultiOptions, paths []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	projects, loadErrs := LoadProjects(paths)
	for _, err := range loadErrs {
		formatter.VerboseLog("skipping: %v", err)
	}
	if len(projects) < 2 {
		msg := fmt.Sprintf("need at least 2 loadable projects, got %d", len(projects))
		formatter.Error(ErrCodeParseFailed, msg, loadErrorStrings(loadErrs))
		return NewExitError(ExitCommandError, msg)
	}

	result := multiplc.Analyze(projects)
	out := &multiResult{Summary: export.BuildSummary(result, projects)}

	if opts.StorePath != "" {
		runID, err := archiveRun(cmd, opts.StorePath, result)
		if err != nil {
			formatter.Error(ErrCodeStoreFailed, err.Error(), nil)
			return WrapExitError(ExitCommandError, "archive run", err)
		}
		out.RunID = runID
		formatter.VerboseLog("archived run %s in %s", runID, opts.StorePath)
	}

	if opts.Format == "json" {
		return formatter.Success(out)
	}
	return formatter.Success(formatMultiText(out))
}

func archiveRun(cmd *cobra.Command, path string, result *multiplc.Result) (string, error) {
	s, err := store.Open(path)
	if err != nil {
		return "", err
	}
	defer s.Close()
	return s.SaveRun(cmd.Context(), result)
}

func loadErrorStrings(errs []error) []string {
	if len(errs) == 0 {
		return nil
	}
	out := make([]string, len(errs))
	for i, err := range errs {
		out[i] = err.Error()
	}
	return out
}

func formatMultiText(r *multiResult) string {
	var b strings.Builder
	s := r.Summary

	fmt.Fprintf(&b, "PLCs (%d): %s\n", s.Metadata.TotalPLCs, strings.Join(s.Metadata.PLCNames, ", "))
	if r.RunID != "" {
		fmt.Fprintf(&b, "Run archived as %s\n", r.RunID)
	}

	fmt.Fprintf(&b, "\nCross-PLC dependencies (%d):\n", len(s.SharedTags))
	for _, dep := range s.SharedTags {
		fmt.Fprintf(&b, "  %s: %s -> %s", dep.Tag, dep.Writer, strings.Join(dep.Readers, ", "))
		if dep.DataType != "" {
			fmt.Fprintf(&b, " (%s)", dep.DataType)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\nConflicting declarations (%d):\n", len(s.ConflictingTags))
	for _, conflict := range s.ConflictingTags {
		fmt.Fprintf(&b, "  %s [%s] on %s\n",
			conflict.Tag, conflict.Kind, strings.Join(conflict.PLCs, ", "))
	}

	return strings.TrimRight(b.String(), "\n")
}
