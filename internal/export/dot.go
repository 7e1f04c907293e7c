package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/crossplc/crossplc/internal/cfg"
)

// maxLabelItems caps how many instructions, defs or uses a node label
// shows before truncating with an ellipsis marker.
const maxLabelItems = 3

// WriteCFGDOT renders every routine CFG as one DOT digraph, one cluster
// per routine. Branch blocks additionally carry labeled true/false
// edges beside their positional successor edges.
func WriteCFGDOT(w io.Writer, s *CFGSection) error {
	var b strings.Builder
	b.WriteString("digraph CFG {\n")
	b.WriteString("  rankdir=TB;\n")
	b.WriteString("  node [shape=box, style=filled, fillcolor=lightblue];\n")
	b.WriteString("  edge [color=black];\n")
	b.WriteString("\n")

	for _, routine := range sortedRoutineNames(s) {
		g := s.Routines[routine]
		cluster := strings.ReplaceAll(routine, " ", "_")
		fmt.Fprintf(&b, "  subgraph cluster_%s {\n", cluster)
		fmt.Fprintf(&b, "    label=%q;\n", routine)
		b.WriteString("    style=filled;\n")
		b.WriteString("    color=lightgrey;\n")
		b.WriteString("\n")

		for _, blk := range g.Blocks {
			// Labels hold literal \n escapes for DOT; %q would
			// double them, so quote by hand.
			fmt.Fprintf(&b, "    %q [label=\"%s\", fillcolor=%q];\n",
				routine+"_"+blk.ID, blockLabel(blk), blockColor(blk))
		}

		for _, blk := range g.Blocks {
			for _, succ := range blk.Successors {
				fmt.Fprintf(&b, "    %q -> %q;\n",
					routine+"_"+blk.ID, routine+"_"+succ)
			}
			if blk.Kind == cfg.KindBranch {
				if blk.TrueSuccessor != "" {
					fmt.Fprintf(&b, "    %q -> %q [label=\"true\"];\n",
						routine+"_"+blk.ID, routine+"_"+blk.TrueSuccessor)
				}
				if blk.FalseSuccessor != "" {
					fmt.Fprintf(&b, "    %q -> %q [label=\"false\"];\n",
						routine+"_"+blk.ID, routine+"_"+blk.FalseSuccessor)
				}
			}
		}

		b.WriteString("  }\n")
		b.WriteString("\n")
	}

	b.WriteString("}\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteDataflowDOT renders the inter-routine write-to-read flows as a
// routine-level digraph.
func WriteDataflowDOT(w io.Writer, s *CFGSection) error {
	var b strings.Builder
	b.WriteString("digraph DataFlow {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [shape=box, style=filled, fillcolor=lightcoral];\n")
	b.WriteString("  edge [color=red];\n")
	b.WriteString("\n")

	for _, routine := range sortedRoutineNames(s) {
		fmt.Fprintf(&b, "  %q [label=%q];\n", routine, routine)
	}
	b.WriteString("\n")

	for _, flow := range s.Dataflow {
		label := flow.Tag + "\\n(" + flow.Type + ")"
		fmt.Fprintf(&b, "  %q -> %q [label=\"%s\"];\n", flow.Source, flow.Target, label)
	}

	b.WriteString("}\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// blockLabel builds the human-readable node label. Instruction, def and
// use lists are truncated so wide routines stay renderable.
func blockLabel(blk *cfg.Block) string {
	var label string
	switch blk.Kind {
	case cfg.KindBranch:
		label = blk.ID + "\\nIF: " + blk.Condition
	case cfg.KindControl:
		label = blk.ID + "\\n" + blk.Condition
	default:
		items := blk.Instructions
		truncated := false
		if len(items) > maxLabelItems {
			items = items[:maxLabelItems]
			truncated = true
		}
		label = blk.ID
		for _, inst := range items {
			label += "\\n" + inst
		}
		if truncated {
			label += "\\n..."
		}
	}

	if len(blk.Defs) > 0 || len(blk.Uses) > 0 {
		label += "\\nDefs: " + joinTruncated(blk.Defs)
		label += "\\nUses: " + joinTruncated(blk.Uses)
	}
	return label
}

func joinTruncated(items []string) string {
	if len(items) > maxLabelItems {
		return strings.Join(items[:maxLabelItems], ", ") + "..."
	}
	return strings.Join(items, ", ")
}

func blockColor(blk *cfg.Block) string {
	switch blk.Kind {
	case cfg.KindBranch:
		return "lightgreen"
	case cfg.KindControl:
		return "lightyellow"
	default:
		return "lightblue"
	}
}
