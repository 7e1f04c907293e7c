package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/crossplc/crossplc/internal/store"
)

// RunsOptions holds options for the runs command.
type RunsOptions struct {
	*RootOptions
	RunID string
}

// NewRunsCommand creates the runs command.
func NewRunsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "runs <database>",
		Short: "List or inspect archived analysis runs",
		Long: `List the multi-PLC analysis runs archived in a SQLite database by
"multi --store", newest first. With --run, print one archived run in
full instead.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRuns(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.RunID, "run", "", "show one archived run by id")

	return cmd
}

func runRuns(opts *RunsOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if _, err := os.Stat(path); err != nil {
		msg := fmt.Sprintf("database not found: %s", path)
		formatter.Error(ErrCodeNotFound, msg, nil)
		return NewExitError(ExitCommandError, msg)
	}

	s, err := store.Open(path)
	if err != nil {
		formatter.Error(ErrCodeStoreFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "open run archive", err)
	}
	defer s.Close()

	if opts.RunID != "" {
		run, err := s.LoadRun(cmd.Context(), opts.RunID)
		if err != nil {
			formatter.Error(ErrCodeStoreFailed, err.Error(), nil)
			return WrapExitError(ExitCommandError, "load run", err)
		}
		if opts.Format == "json" {
			return formatter.Success(run.Result)
		}
		return formatter.Success(formatRunText(run))
	}

	infos, err := s.ListRuns(cmd.Context())
	if err != nil {
		formatter.Error(ErrCodeStoreFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "list runs", err)
	}

	if opts.Format == "json" {
		return formatter.Success(infos)
	}
	return formatter.Success(formatRunListText(infos))
}

func formatRunText(run *store.Run) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Run %s (%s)\n", run.ID, run.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "PLCs: %s\n", strings.Join(run.Result.PLCNames, ", "))

	fmt.Fprintf(&b, "\nDependencies (%d):\n", len(run.Result.Dependencies))
	for _, dep := range run.Result.Dependencies {
		fmt.Fprintf(&b, "  %s: %s -> %s\n", dep.Tag, dep.Writer, strings.Join(dep.Readers, ", "))
	}

	fmt.Fprintf(&b, "\nConflicts (%d):\n", len(run.Result.Conflicts))
	for _, conflict := range run.Result.Conflicts {
		fmt.Fprintf(&b, "  %s [%s] on %s\n",
			conflict.Tag, conflict.Kind, strings.Join(conflict.PLCs, ", "))
	}

	return strings.TrimRight(b.String(), "\n")
}

func formatRunListText(infos []store.RunInfo) string {
	if len(infos) == 0 {
		return "No archived runs."
	}

	var b strings.Builder
	for _, info := range infos {
		fmt.Fprintf(&b, "%s  %s  %d PLCs, %d dependencies, %d conflicts\n",
			info.ID, info.CreatedAt.Format("2006-01-02 15:04:05"),
			len(info.PLCNames), info.Dependencies, info.Conflicts)
	}
	return strings.TrimRight(b.String(), "\n")
}
