// Package interact finds shared-tag interactions between the programs of
// one controller and between programs and controller-scoped tags.
//
// Tag presence in routine content is decided by case-insensitive substring
// containment against the set of all declared tag names, not by a
// tokenizer. A tag name that is a substring of another tag's name will
// therefore produce false-positive containment; this is a documented
// heuristic limitation that downstream reports account for.
package interact

import (
	"fmt"
	"sort"
	"strings"

	"github.com/crossplc/crossplc/internal/ir"
)

// Interaction types.
const (
	TypeCrossProgram        = "cross_program"
	TypeProgramToController = "program_to_controller"
)

// Interaction records two components sharing tags. Via lists the full
// intersection, sorted; one record covers the whole pair, not one record
// per tag.
type Interaction struct {
	Source string   `json:"source"`
	Target string   `json:"target"`
	Via    []string `json:"via"`
	Type   string   `json:"type"`
}

// Result holds per-program tag sets and the interactions derived from
// them.
type Result struct {
	ProgramTags  map[string][]string `json:"program_tags"`
	Interactions []Interaction       `json:"interactions"`
}

// Analyze computes shared-tag interactions for one project.
//
// Each program's tag set is the union of its declared tags, its declared
// local variables, and every known tag name textually contained in any of
// its routines' content. Programs are compared as ordered pairs, so a
// shared tag yields two records (A->B and B->A), matching the reporting
// shape consumers expect.
func Analyze(p *ir.Project) *Result {
	known := knownTagNames(p)
	programTags := make(map[string][]string, len(p.Programs))
	tagSets := make(map[string]map[string]bool, len(p.Programs))

	for i := range p.Programs {
		prog := &p.Programs[i]
		set := make(map[string]bool)
		for _, tag := range prog.Tags {
			set[tag.Name] = true
		}
		for _, tag := range prog.LocalVariables {
			set[tag.Name] = true
		}
		for j := range prog.Routines {
			content := strings.ToLower(prog.Routines[j].Content)
			for name := range known {
				if strings.Contains(content, strings.ToLower(name)) {
					set[name] = true
				}
			}
		}
		tagSets[prog.Name] = set
		programTags[prog.Name] = sortedKeys(set)
	}

	var interactions []Interaction
	controller := p.Controller.Name

	for i := range p.Programs {
		for j := range p.Programs {
			if i == j {
				continue
			}
			a, b := &p.Programs[i], &p.Programs[j]
			via := intersect(tagSets[a.Name], tagSets[b.Name])
			if len(via) == 0 {
				continue
			}
			interactions = append(interactions, Interaction{
				Source: fmt.Sprintf("%s.%s", controller, a.Name),
				Target: fmt.Sprintf("%s.%s", controller, b.Name),
				Via:    via,
				Type:   TypeCrossProgram,
			})
		}
	}

	controllerNames := p.ControllerTagNames()
	for i := range p.Programs {
		prog := &p.Programs[i]
		via := intersect(tagSets[prog.Name], controllerNames)
		if len(via) == 0 {
			continue
		}
		interactions = append(interactions, Interaction{
			Source: fmt.Sprintf("%s.%s", controller, prog.Name),
			Target: controller,
			Via:    via,
			Type:   TypeProgramToController,
		})
	}

	return &Result{ProgramTags: programTags, Interactions: interactions}
}

// knownTagNames is the containment-check universe: controller tags plus
// every program's tags and local variables.
func knownTagNames(p *ir.Project) map[string]bool {
	known := make(map[string]bool)
	for _, tag := range p.Controller.Tags {
		known[tag.Name] = true
	}
	for _, prog := range p.Programs {
		for _, tag := range prog.Tags {
			known[tag.Name] = true
		}
		for _, tag := range prog.LocalVariables {
			known[tag.Name] = true
		}
	}
	return known
}

func intersect(a, b map[string]bool) []string {
	var out []string
	for name := range a {
		if b[name] {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
