// Package stfront reads OpenPLC Structured Text files into the IR.
//
// This is a declaration-and-block reader, not an ST grammar: it lifts
// VAR blocks into tag declarations and PROGRAM/FUNCTION bodies into
// routine content verbatim. The analysis passes do their own line-level
// scanning of that content.
package stfront

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/crossplc/crossplc/internal/ir"
)

var (
	varBlockRe    = regexp.MustCompile(`(?is)\bVAR\b\s*(.*?)\bEND_VAR\b`)
	varScopedRe   = regexp.MustCompile(`(?is)\b(VAR_INPUT|VAR_OUTPUT|VAR_IN_OUT|VAR_GLOBAL)\b\s*(.*?)\bEND_VAR\b`)
	programRe     = regexp.MustCompile(`(?is)\bPROGRAM\s+(\w+)\s*(.*?)\bEND_PROGRAM\b`)
	functionRe    = regexp.MustCompile(`(?is)\bFUNCTION\s+(\w+)\s*:\s*(\w+)\s*(.*?)\bEND_FUNCTION\b`)
	declarationRe = regexp.MustCompile(`(?i)^(\w+)(?:\s+AT\s+[^:]+)?\s*:\s*(\w+(?:\s*\[[^\]]*\])?)\s*(?::=\s*(.+))?$`)
)

// knownTypes are the IEC elementary types passed through unchanged;
// anything else (UDTs, unrecognized spellings) maps to STRING.
var knownTypes = map[string]bool{
	"BOOL": true, "INT": true, "REAL": true, "STRING": true,
	"TIME": true, "DINT": true, "SINT": true, "LINT": true,
	"UINT": true, "UDINT": true, "USINT": true, "ULINT": true,
	"LREAL": true, "WORD": true, "DWORD": true, "LWORD": true,
	"BYTE": true, "CHAR": true,
}

// Parse reads an OpenPLC .st file. The controller is named from the
// file stem.
func Parse(path string) (*ir.Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read st file: %w", err)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return ParseContent(name, string(data)), nil
}

// ParseContent converts OpenPLC ST source to an IR project. Every
// variable declaration lands on the controller tag list with its block
// scope (VAR_GLOBAL is controller scope, the rest are program scope);
// that single list is what the fleet-level conflict scan compares.
func ParseContent(controller, content string) *ir.Project {
	tags := parseTags(content)
	routines := parseRoutines(content)

	return &ir.Project{
		Controller: ir.Controller{
			Name:   controller,
			Tags:   tags,
			Source: ir.SourceOpenPLC,
		},
		Programs: []ir.Program{
			{Name: controller, Routines: routines},
		},
		Metadata: map[string]string{"source_format": string(ir.SourceOpenPLC)},
	}
}

func parseTags(content string) []ir.Tag {
	var tags []ir.Tag

	for _, m := range varScopedRe.FindAllStringSubmatch(content, -1) {
		scope := ir.ScopeProgram
		if strings.EqualFold(m[1], "VAR_GLOBAL") {
			scope = ir.ScopeController
		}
		tags = append(tags, parseDeclarations(m[2], scope)...)
	}

	// Plain VAR blocks; the scoped keywords never match \bVAR\b because
	// the underscore extends the word.
	for _, m := range varBlockRe.FindAllStringSubmatch(content, -1) {
		tags = append(tags, parseDeclarations(m[1], ir.ScopeProgram)...)
	}

	return tags
}

func parseDeclarations(block string, scope ir.TagScope) []ir.Tag {
	var tags []ir.Tag
	for _, decl := range strings.Split(block, ";") {
		decl = strings.TrimSpace(decl)
		if decl == "" {
			continue
		}
		m := declarationRe.FindStringSubmatch(decl)
		if m == nil {
			continue
		}
		tags = append(tags, ir.Tag{
			Name:         m[1],
			DataType:     mapDataType(m[2]),
			Scope:        scope,
			InitialValue: strings.TrimSpace(m[3]),
			Description:  "OpenPLC variable: " + m[1],
		})
	}
	return tags
}

func parseRoutines(content string) []ir.Routine {
	var routines []ir.Routine

	for _, m := range programRe.FindAllStringSubmatch(content, -1) {
		routines = append(routines, ir.Routine{
			Name:    m[1],
			Type:    ir.RoutineST,
			Content: stripVarBlocks(m[2]),
		})
	}

	for _, m := range functionRe.FindAllStringSubmatch(content, -1) {
		routines = append(routines, ir.Routine{
			Name:    m[1],
			Type:    ir.RoutineST,
			Content: stripVarBlocks(m[3]),
		})
	}

	// Bare logic files carry no PROGRAM wrapper; everything outside the
	// declaration blocks is the main routine.
	if len(routines) == 0 {
		if logic := stripVarBlocks(content); logic != "" {
			routines = append(routines, ir.Routine{
				Name:    "Main",
				Type:    ir.RoutineST,
				Content: logic,
			})
		}
	}

	return routines
}

func stripVarBlocks(content string) string {
	content = varScopedRe.ReplaceAllString(content, "")
	content = varBlockRe.ReplaceAllString(content, "")
	return strings.TrimSpace(content)
}

func mapDataType(declared string) string {
	base := declared
	if i := strings.Index(base, "["); i >= 0 {
		base = base[:i]
	}
	base = strings.ToUpper(strings.TrimSpace(base))
	if knownTypes[base] {
		return base
	}
	return "STRING"
}
