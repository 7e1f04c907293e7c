// Package testutil provides IR construction helpers shared by analysis
// pass tests.
package testutil

import "github.com/crossplc/crossplc/internal/ir"

// Project builds a single-program project with the given controller tags
// and routines. The program is named "MainProgram".
func Project(controller string, tags []ir.Tag, routines ...ir.Routine) *ir.Project {
	return &ir.Project{
		Controller: ir.Controller{
			Name:   controller,
			Tags:   tags,
			Source: ir.SourceOpenPLC,
		},
		Programs: []ir.Program{
			{Name: "MainProgram", Routines: routines},
		},
	}
}

// STRoutine builds a Structured Text routine from content lines.
func STRoutine(name string, lines ...string) ir.Routine {
	content := ""
	for i, line := range lines {
		if i > 0 {
			content += "\n"
		}
		content += line
	}
	return ir.Routine{Name: name, Type: ir.RoutineST, Content: content}
}

// ControllerTag builds a controller-scoped tag declaration.
func ControllerTag(name, dataType string) ir.Tag {
	return ir.Tag{Name: name, DataType: dataType, Scope: ir.ScopeController}
}

// ProgramTag builds a program-scoped tag declaration.
func ProgramTag(name, dataType string) ir.Tag {
	return ir.Tag{Name: name, DataType: dataType, Scope: ir.ScopeProgram}
}
