package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wellFormedProject() *Project {
	return &Project{
		Controller: Controller{
			Name: "Line1",
			Tags: []Tag{{Name: "SPEED", DataType: "DINT", Scope: ScopeController}},
		},
		Programs: []Program{
			{
				Name: "MainProgram",
				Routines: []Routine{
					{Name: "Main", Type: RoutineST, Content: "SPEED := 100;"},
				},
			},
		},
	}
}

func TestValidateWellFormed(t *testing.T) {
	assert.Empty(t, Validate(wellFormedProject()))
}

func TestValidateFindings(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *Project)
		want   string
	}{
		{
			name:   "unnamed controller",
			mutate: func(p *Project) { p.Controller.Name = "" },
			want:   "controller has no name",
		},
		{
			name:   "no controller tags",
			mutate: func(p *Project) { p.Controller.Tags = nil },
			want:   "controller declares no tags",
		},
		{
			name:   "no programs",
			mutate: func(p *Project) { p.Programs = nil },
			want:   "project contains no programs",
		},
		{
			name:   "program without routines",
			mutate: func(p *Project) { p.Programs[0].Routines = nil },
			want:   `program "MainProgram" contains no routines`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := wellFormedProject()
			tt.mutate(p)
			assert.Contains(t, Validate(p), tt.want)
		})
	}
}

func TestValidateCollectsAllFindings(t *testing.T) {
	assert.Len(t, Validate(&Project{}), 3)
}

func TestControllerTagNames(t *testing.T) {
	p := wellFormedProject()
	p.Controller.Tags = append(p.Controller.Tags, Tag{Name: "MODE", DataType: "INT"})

	names := p.ControllerTagNames()
	assert.Equal(t, map[string]bool{"SPEED": true, "MODE": true}, names)

	// The returned set is a copy.
	names["INJECTED"] = true
	assert.Len(t, p.ControllerTagNames(), 2)
}

func TestRoutinesIterationOrder(t *testing.T) {
	p := wellFormedProject()
	p.Programs = append(p.Programs, Program{
		Name:     "Aux",
		Routines: []Routine{{Name: "Fault"}, {Name: "Reset"}},
	})

	var visited []string
	p.Routines(func(prog *Program, r *Routine) {
		visited = append(visited, prog.Name+"/"+r.Name)
	})
	require.Equal(t, []string{"MainProgram/Main", "Aux/Fault", "Aux/Reset"}, visited)
}
