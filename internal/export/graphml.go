package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/crossplc/crossplc/internal/cfg"
)

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// WriteCFGGraphML renders every routine CFG as one GraphML document.
// Node ids are assigned in routine-then-block order; successor edges
// resolve through that assignment, so an edge always points at the
// successor block's real node.
func WriteCFGGraphML(w io.Writer, s *CFGSection) error {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<graphml xmlns="http://graphml.graphdrawing.org/xmlns"` + "\n")
	b.WriteString(`         xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"` + "\n")
	b.WriteString(`         xsi:schemaLocation="http://graphml.graphdrawing.org/xmlns` + "\n")
	b.WriteString(`         http://graphml.graphdrawing.org/xmlns/1.0/graphml.xsd">` + "\n")
	b.WriteString("\n")

	b.WriteString(`  <key id="label" for="node" attr.name="label" attr.type="string"/>` + "\n")
	b.WriteString(`  <key id="type" for="node" attr.name="type" attr.type="string"/>` + "\n")
	b.WriteString(`  <key id="routine" for="node" attr.name="routine" attr.type="string"/>` + "\n")
	b.WriteString(`  <key id="defs" for="node" attr.name="defs" attr.type="string"/>` + "\n")
	b.WriteString(`  <key id="uses" for="node" attr.name="uses" attr.type="string"/>` + "\n")
	b.WriteString(`  <key id="tag" for="edge" attr.name="tag" attr.type="string"/>` + "\n")
	b.WriteString(`  <key id="flow_type" for="edge" attr.name="flow_type" attr.type="string"/>` + "\n")
	b.WriteString("\n")

	b.WriteString(`  <graph id="cfg" edgedefault="directed">` + "\n")
	b.WriteString("\n")

	routines := sortedRoutineNames(s)

	nodeIDs := make(map[string]int)
	next := 0
	for _, routine := range routines {
		for _, blk := range s.Routines[routine].Blocks {
			nodeIDs[routine+"/"+blk.ID] = next

			fmt.Fprintf(&b, "    <node id=\"n%d\">\n", next)
			fmt.Fprintf(&b, "      <data key=\"label\">%s</data>\n",
				xmlEscaper.Replace(graphmlLabel(blk)))
			fmt.Fprintf(&b, "      <data key=\"type\">%s</data>\n", graphmlType(blk))
			fmt.Fprintf(&b, "      <data key=\"routine\">%s</data>\n",
				xmlEscaper.Replace(routine))
			fmt.Fprintf(&b, "      <data key=\"defs\">%s</data>\n",
				xmlEscaper.Replace(strings.Join(blk.Defs, ",")))
			fmt.Fprintf(&b, "      <data key=\"uses\">%s</data>\n",
				xmlEscaper.Replace(strings.Join(blk.Uses, ",")))
			b.WriteString("    </node>\n")
			next++
		}
	}
	b.WriteString("\n")

	edge := 0
	for _, routine := range routines {
		for _, blk := range s.Routines[routine].Blocks {
			source := nodeIDs[routine+"/"+blk.ID]
			for _, succ := range blk.Successors {
				target, ok := nodeIDs[routine+"/"+succ]
				if !ok {
					continue
				}
				fmt.Fprintf(&b, "    <edge id=\"e%d\" source=\"n%d\" target=\"n%d\">\n",
					edge, source, target)
				b.WriteString("      <data key=\"tag\">control_flow</data>\n")
				b.WriteString("      <data key=\"flow_type\">successor</data>\n")
				b.WriteString("    </edge>\n")
				edge++
			}
		}
	}

	b.WriteString("  </graph>\n")
	b.WriteString("</graphml>\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func graphmlLabel(blk *cfg.Block) string {
	switch blk.Kind {
	case cfg.KindBranch:
		return blk.ID + " - IF: " + blk.Condition
	case cfg.KindControl:
		return blk.ID + " - " + blk.Condition
	default:
		return fmt.Sprintf("%s - %d instructions", blk.ID, len(blk.Instructions))
	}
}

// graphmlType reports the serialized block type; plain blocks export as
// "instruction" rather than the empty kind string.
func graphmlType(blk *cfg.Block) string {
	if blk.Kind == cfg.KindPlain {
		return "instruction"
	}
	return string(blk.Kind)
}
