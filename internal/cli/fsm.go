package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/crossplc/crossplc/internal/fsm"
	"github.com/crossplc/crossplc/internal/ir"
)

// FSMOptions holds options for the fsm command.
type FSMOptions struct {
	*RootOptions
	ConfigPath string
}

// fsmResult is the payload of one extraction run.
type fsmResult struct {
	Machines   map[string]*ir.StateMachine `json:"machines"`
	Validation map[string]*fsm.Validation  `json:"validation,omitempty"`
	Composite  *ir.CrossControllerFSM      `json:"composite,omitempty"`
}

// NewFSMCommand creates the fsm command.
func NewFSMCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FSMOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "fsm <project-file>...",
		Short: "Extract state machines from control logic",
		Long: `Heuristically extract a finite state machine per project by scoring
candidate state variables on guard, assignment and output evidence.
With more than one project, per-controller machines are additionally
linked through shared tags into a composite view.

A YAML config can pin the state variable and declare expected states
per controller; hints are advisory and rejected without evidence.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFSM(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ConfigPath, "config", "", "YAML extraction hints file")

	return cmd
}

func runFSM(opts *FSMOptions, paths []string, cmd *cobra.Command) error {
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
	if len(projects) == 0 {
		msg := "no loadable projects"
		formatter.Error(ErrCodeParseFailed, msg, loadErrorStrings(loadErrs))
		return NewExitError(ExitCommandError, msg)
	}

	cfgFor := func(controller string) fsm.Config {
		if opts.ConfigPath == "" {
			return fsm.Config{}
		}
		cfg, err := fsm.LoadConfig(opts.ConfigPath, controller)
		if err != nil {
			// Missing optional context, not a failure.
			formatter.VerboseLog("fsm config: %v", err)
			return fsm.Config{}
		}
		return cfg
	}

	result := &fsmResult{Machines: make(map[string]*ir.StateMachine)}

	if len(projects) > 1 {
		result.Composite = fsm.NewCrossExtractor(cfgFor).Extract(projects)
		for name, p := range projects {
			if p.Controller.FSM != nil {
				result.Machines[name] = p.Controller.FSM
			}
		}
	} else {
		for name, p := range projects {
			ext := fsm.NewExtractor(cfgFor(name)).Extract(p)
			if ext == nil {
				continue
			}
			p.Controller.FSM = ext.FSM
			result.Machines[name] = ext.FSM
			if ext.Validation != nil {
				result.Validation = map[string]*fsm.Validation{name: ext.Validation}
			}
		}
	}

	if len(result.Machines) == 0 {
		msg := "no state machine could be extracted"
		formatter.Error(ErrCodeNoFSM, msg, nil)
		return NewExitError(ExitFailure, msg)
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}
	return formatter.Success(formatFSMText(result))
}

func formatFSMText(r *fsmResult) string {
	var b strings.Builder

	for _, name := range sortedMachineNames(r.Machines) {
		machine := r.Machines[name]
		fmt.Fprintf(&b, "%s: %s (variable %s", name, machine.Name, machine.StateVariable)
		if machine.IsImplicit {
			b.WriteString(", implicit")
		}
		b.WriteString(")\n")

		b.WriteString("  States:")
		for _, state := range machine.States {
			fmt.Fprintf(&b, " %s", state.Name)
			if state.IsInitial {
				b.WriteString("*")
			}
		}
		b.WriteString("\n")
		fmt.Fprintf(&b, "  Transitions: %d\n", len(machine.Transitions))

		if v, ok := r.Validation[name]; ok && !v.Valid {
			fmt.Fprintf(&b, "  Missing expected states: %s\n", strings.Join(v.MissingStates, ", "))
		}
	}

	if r.Composite != nil {
		fmt.Fprintf(&b, "\nComposite: %d controllers, %d linked transitions, shared tags: %s\n",
			len(r.Composite.Controllers), len(r.Composite.LinkedTransitions),
			strings.Join(r.Composite.SharedTags, ", "))
	}

	return strings.TrimRight(b.String(), "\n")
}

func sortedMachineNames(machines map[string]*ir.StateMachine) []string {
	names := make([]string, 0, len(machines))
	for name := range machines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
