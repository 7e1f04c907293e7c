// Package export serializes analysis results to JSON, DOT and GraphML.
//
// Exporters are thin: they render structures the analysis packages
// already computed and never re-derive semantics. Output is
// deterministic; map-keyed inputs are walked in sorted key order.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/crossplc/crossplc/internal/cfg"
	"github.com/crossplc/crossplc/internal/interact"
	"github.com/crossplc/crossplc/internal/ir"
)

// Component selects one section of a JSON report.
type Component string

const (
	ComponentTags         Component = "tags"
	ComponentPrograms     Component = "programs"
	ComponentRoutines     Component = "routines"
	ComponentInteractions Component = "interactions"
	ComponentCFG          Component = "cfg"
	ComponentFSM          Component = "fsm"
)

// Components returns every known component in report order.
func Components() []Component {
	return []Component{
		ComponentTags, ComponentPrograms, ComponentRoutines,
		ComponentInteractions, ComponentCFG, ComponentFSM,
	}
}

// ParseComponent validates a component name from the command line.
func ParseComponent(name string) (Component, error) {
	for _, c := range Components() {
		if string(c) == name {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown export component: %s", name)
}

// Metadata is the provenance header of every report.
type Metadata struct {
	ExportTime         string   `json:"export_time"`
	RunID              string   `json:"run_id"`
	SourceController   string   `json:"source_controller"`
	ExportedComponents []string `json:"exported_components"`
	TotalPrograms      int      `json:"total_programs"`
	TotalRoutines      int      `json:"total_routines"`
}

// TagRecord is one exported tag declaration.
type TagRecord struct {
	Name        string `json:"name"`
	DataType    string `json:"data_type,omitempty"`
	Description string `json:"description,omitempty"`
	Value       string `json:"value,omitempty"`
}

// TagsSection splits tags by scope; program tags are keyed by program.
type TagsSection struct {
	ControllerTags []TagRecord            `json:"controller_tags"`
	ProgramTags    map[string][]TagRecord `json:"program_tags,omitempty"`
}

// ProgramSummary is the shallow program listing of a report.
type ProgramSummary struct {
	Name        string   `json:"name"`
	MainRoutine string   `json:"main_routine,omitempty"`
	Routines    []string `json:"routines"`
	TagCount    int      `json:"tag_count"`
}

// RoutineSummary is the shallow routine listing of a report.
type RoutineSummary struct {
	Name    string `json:"name"`
	Program string `json:"program"`
	Type    string `json:"type,omitempty"`
	Lines   int    `json:"line_count"`
}

// CFGSection bundles per-routine graphs with inter-routine data flow.
// The json keys mirror the layout graph exporters consume.
type CFGSection struct {
	Routines map[string]*cfg.Graph `json:"cfg"`
	Dataflow []cfg.Flow            `json:"inter_routine_dataflow"`
}

// Report is one JSON export of a project's analysis results. Sections
// not selected stay nil and are omitted from the serialized form.
type Report struct {
	Metadata     Metadata         `json:"metadata"`
	Tags         *TagsSection     `json:"tags,omitempty"`
	Programs     []ProgramSummary `json:"programs,omitempty"`
	Routines     []RoutineSummary `json:"routines,omitempty"`
	Interactions *interact.Result `json:"interactions,omitempty"`
	CFG          *CFGSection      `json:"cfg,omitempty"`
	FSM          *ir.StateMachine `json:"fsm,omitempty"`
}

// Option adjusts report construction; used by tests to pin metadata.
type Option func(*Metadata)

// WithRunID overrides the generated run identifier.
func WithRunID(id string) Option {
	return func(m *Metadata) { m.RunID = id }
}

// WithExportTime overrides the export timestamp.
func WithExportTime(t time.Time) Option {
	return func(m *Metadata) { m.ExportTime = t.UTC().Format(time.RFC3339) }
}

// BuildReport assembles the selected components of one project into a
// Report. CFG construction uses a fresh Builder, so block ids restart at
// b1 for every report.
func BuildReport(p *ir.Project, components []Component, opts ...Option) *Report {
	names := make([]string, 0, len(components))
	for _, c := range components {
		names = append(names, string(c))
	}

	totalRoutines := 0
	for _, prog := range p.Programs {
		totalRoutines += len(prog.Routines)
	}

	r := &Report{
		Metadata: Metadata{
			ExportTime:         time.Now().UTC().Format(time.RFC3339),
			RunID:              uuid.Must(uuid.NewV7()).String(),
			SourceController:   p.Controller.Name,
			ExportedComponents: names,
			TotalPrograms:      len(p.Programs),
			TotalRoutines:      totalRoutines,
		},
	}
	for _, opt := range opts {
		opt(&r.Metadata)
	}

	for _, c := range components {
		switch c {
		case ComponentTags:
			r.Tags = exportTags(p)
		case ComponentPrograms:
			r.Programs = exportPrograms(p)
		case ComponentRoutines:
			r.Routines = exportRoutines(p)
		case ComponentInteractions:
			r.Interactions = interact.Analyze(p)
		case ComponentCFG:
			r.CFG = BuildCFGSection(p)
		case ComponentFSM:
			r.FSM = p.Controller.FSM
		}
	}
	return r
}

// BuildCFGSection builds and analyzes every routine CFG plus the
// inter-routine flows, ready for JSON or graph export.
func BuildCFGSection(p *ir.Project) *CFGSection {
	graphs := cfg.NewBuilder().BuildProject(p)
	for _, g := range graphs {
		cfg.AnalyzeBlocks(g)
	}
	return &CFGSection{
		Routines: graphs,
		Dataflow: cfg.InterRoutineFlows(p),
	}
}

// JSON serializes the report with indentation.
func (r *Report) JSON() ([]byte, error) {
	data, err := marshalIndentPlain(r)
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	return data, nil
}

// marshalIndentPlain indents without HTML escaping; comparison
// operators in conditions stay literal in the output.
func marshalIndentPlain(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func exportTags(p *ir.Project) *TagsSection {
	s := &TagsSection{ControllerTags: []TagRecord{}}
	for _, tag := range p.Controller.Tags {
		s.ControllerTags = append(s.ControllerTags, tagRecord(tag))
	}
	for _, prog := range p.Programs {
		if len(prog.Tags) == 0 {
			continue
		}
		if s.ProgramTags == nil {
			s.ProgramTags = make(map[string][]TagRecord)
		}
		for _, tag := range prog.Tags {
			s.ProgramTags[prog.Name] = append(s.ProgramTags[prog.Name], tagRecord(tag))
		}
	}
	return s
}

func tagRecord(tag ir.Tag) TagRecord {
	return TagRecord{
		Name:        tag.Name,
		DataType:    tag.DataType,
		Description: tag.Description,
		Value:       tag.Value,
	}
}

func exportPrograms(p *ir.Project) []ProgramSummary {
	summaries := make([]ProgramSummary, 0, len(p.Programs))
	for _, prog := range p.Programs {
		routines := make([]string, 0, len(prog.Routines))
		for _, r := range prog.Routines {
			routines = append(routines, r.Name)
		}
		summaries = append(summaries, ProgramSummary{
			Name:        prog.Name,
			MainRoutine: prog.MainRoutine,
			Routines:    routines,
			TagCount:    len(prog.Tags),
		})
	}
	return summaries
}

func exportRoutines(p *ir.Project) []RoutineSummary {
	var summaries []RoutineSummary
	p.Routines(func(prog *ir.Program, r *ir.Routine) {
		lines := 0
		if r.Content != "" {
			lines = 1 + countNewlines(r.Content)
		}
		summaries = append(summaries, RoutineSummary{
			Name:    r.Name,
			Program: prog.Name,
			Type:    string(r.Type),
			Lines:   lines,
		})
	})
	return summaries
}

func countNewlines(s string) int {
	n := 0
	for _, r := range s {
		if r == '\n' {
			n++
		}
	}
	return n
}

// sortedRoutineNames walks a CFG section's routines deterministically.
func sortedRoutineNames(s *CFGSection) []string {
	names := make([]string, 0, len(s.Routines))
	for name := range s.Routines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
