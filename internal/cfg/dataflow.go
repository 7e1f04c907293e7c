package cfg

import (
	"sort"
	"strings"

	"github.com/crossplc/crossplc/internal/ir"
	"github.com/crossplc/crossplc/internal/tagscan"
)

// FlowWriteToRead is the only inter-routine flow type: one routine writes
// a tag that another routine reads.
const FlowWriteToRead = "write_to_read"

// Flow records that Source writes Tag and Target reads it.
type Flow struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Tag    string `json:"tag"`
	Type   string `json:"type"`
}

// Usage holds a routine's definition and use sets.
type Usage struct {
	Defs map[string]bool
	Uses map[string]bool
}

// AnalyzeBlocks fills Defs and Uses on every block of a graph.
//
// For each instruction holding an assignment, the first tag of the
// left-hand side is a def and every tag of the right-hand side is a use.
// A control block's condition contributes to uses only. The sets are
// stored sorted.
func AnalyzeBlocks(g *Graph) {
	for _, blk := range g.Blocks {
		defs := make(map[string]bool)
		uses := make(map[string]bool)

		for _, inst := range blk.Instructions {
			lhs, rhs, ok := tagscan.SplitAssignment(inst)
			if !ok {
				continue
			}
			if tag := tagscan.First(lhs); tag != "" {
				defs[tag] = true
			}
			for tag := range tagscan.All(rhs) {
				uses[tag] = true
			}
		}

		if blk.Condition != "" {
			for tag := range tagscan.All(blk.Condition) {
				uses[tag] = true
			}
		}

		blk.Defs = sortedKeys(defs)
		blk.Uses = sortedKeys(uses)
	}
}

// RoutineUsage computes a routine's def/use sets directly from its
// content: assignment targets are defs; assignment right-hand sides and
// IF conditions are uses.
func RoutineUsage(content string) Usage {
	u := Usage{Defs: make(map[string]bool), Uses: make(map[string]bool)}

	for _, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(raw)
		if tagscan.SkipLine(line) {
			continue
		}

		if lhs, rhs, ok := tagscan.SplitAssignment(line); ok {
			if tag := tagscan.First(lhs); tag != "" {
				u.Defs[tag] = true
			}
			for tag := range tagscan.All(rhs) {
				u.Uses[tag] = true
			}
			continue
		}

		if cond, ok := tagscan.IfCondition(line); ok {
			for tag := range tagscan.All(cond) {
				u.Uses[tag] = true
			}
		}
	}

	return u
}

// InterRoutineFlows computes write-to-read flows between every ordered
// pair of distinct routines in a project. The scan is intentionally
// pairwise over all routines; corpora in this domain hold tens of
// routines, and the pairwise form keeps the one-flow-per-pair-per-tag
// multiplicity explicit. A routine never depends on itself.
func InterRoutineFlows(p *ir.Project) []Flow {
	type routineUsage struct {
		name  string
		usage Usage
	}

	var routines []routineUsage
	p.Routines(func(_ *ir.Program, r *ir.Routine) {
		routines = append(routines, routineUsage{r.Name, RoutineUsage(r.Content)})
	})

	var flows []Flow
	for i, src := range routines {
		for j, dst := range routines {
			if i == j {
				continue
			}
			var shared []string
			for tag := range src.usage.Defs {
				if dst.usage.Uses[tag] {
					shared = append(shared, tag)
				}
			}
			sort.Strings(shared)
			for _, tag := range shared {
				flows = append(flows, Flow{
					Source: src.name,
					Target: dst.name,
					Tag:    tag,
					Type:   FlowWriteToRead,
				})
			}
		}
	}
	return flows
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
