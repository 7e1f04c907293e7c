package ir

import "fmt"

// Validate checks the well-formedness contract a project must satisfy for
// downstream use: a named controller, at least one controller tag, at least
// one program, and at least one routine per program.
//
// Violations are returned as human-readable strings; the caller decides
// whether to abort. The analysis passes themselves never enforce this -
// they produce best-effort results over whatever structure is present.
func Validate(p *Project) []string {
	var errs []string

	if p.Controller.Name == "" {
		errs = append(errs, "controller has no name")
	}
	if len(p.Controller.Tags) == 0 {
		errs = append(errs, "controller declares no tags")
	}
	if len(p.Programs) == 0 {
		errs = append(errs, "project contains no programs")
	}
	for _, prog := range p.Programs {
		if len(prog.Routines) == 0 {
			errs = append(errs, fmt.Sprintf("program %q contains no routines", prog.Name))
		}
	}

	return errs
}
