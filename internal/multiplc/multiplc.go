// Package multiplc correlates tag usage and tag declarations across
// independently-authored PLC projects.
//
// Two analyses run over a named collection of projects: writer-to-reader
// dependency detection (a tag assigned in one PLC's routines and read in
// another's) and declaration conflict detection (the same tag name
// declared with differing data types or scopes).
//
// Per-PLC usage scans only read their own project and write to local
// accumulators, so they run concurrently; the merge that follows is
// single-threaded over sorted PLC names, which keeps the one-record-per-
// writer-reader-pair multiplicity deterministic.
package multiplc

import (
	"sort"
	"strings"
	"sync"

	"github.com/crossplc/crossplc/internal/ir"
	"github.com/crossplc/crossplc/internal/tagscan"
)

// tagDef is a controller-scoped declaration attributed to one PLC.
type tagDef struct {
	dataType    string
	scope       ir.TagScope
	description string
}

// plcUsage is the result of scanning one PLC's routines.
type plcUsage struct {
	writers map[string][]string // tag -> routine names that assign it
	readers map[string][]string // tag -> routine names that read it
}

// Analyzer holds merged usage and declaration maps for a set of PLCs.
type Analyzer struct {
	plcNames []string
	projects map[string]*ir.Project

	// tag -> plc -> routine names
	writers map[string]map[string][]string
	readers map[string]map[string][]string
	// tag -> plc -> declaration
	definitions map[string]map[string]tagDef
}

// New builds an Analyzer over a named map of projects. The per-PLC scans
// run concurrently; merge order is the sorted PLC name order regardless
// of map iteration order, so results are independent of input ordering.
func New(projects map[string]*ir.Project) *Analyzer {
	a := &Analyzer{
		projects:    projects,
		writers:     make(map[string]map[string][]string),
		readers:     make(map[string]map[string][]string),
		definitions: make(map[string]map[string]tagDef),
	}
	for name := range projects {
		a.plcNames = append(a.plcNames, name)
	}
	sort.Strings(a.plcNames)

	usages := make(map[string]plcUsage, len(a.plcNames))
	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, name := range a.plcNames {
		wg.Add(1)
		go func(name string, p *ir.Project) {
			defer wg.Done()
			u := scanProject(p)
			mu.Lock()
			usages[name] = u
			mu.Unlock()
		}(name, projects[name])
	}
	wg.Wait()

	for _, name := range a.plcNames {
		a.merge(name, usages[name])
		a.collectDefinitions(name, projects[name])
	}
	return a
}

// PLCNames returns the sorted PLC names under analysis.
func (a *Analyzer) PLCNames() []string {
	return a.plcNames
}

// scanProject classifies every tag reference in a project's routines as a
// writer-use or reader-use, using the same assignment and condition
// scanning as the per-routine data-flow pass.
func scanProject(p *ir.Project) plcUsage {
	u := plcUsage{
		writers: make(map[string][]string),
		readers: make(map[string][]string),
	}

	p.Routines(func(_ *ir.Program, r *ir.Routine) {
		for _, raw := range strings.Split(r.Content, "\n") {
			line := strings.TrimSpace(raw)
			if tagscan.SkipLine(line) {
				continue
			}

			if lhs, rhs, ok := tagscan.SplitAssignment(line); ok {
				if tag := tagscan.First(lhs); tag != "" {
					u.writers[tag] = append(u.writers[tag], r.Name)
				}
				for tag := range tagscan.All(rhs) {
					u.readers[tag] = append(u.readers[tag], r.Name)
				}
				continue
			}

			if cond, ok := tagscan.IfCondition(line); ok {
				for tag := range tagscan.All(cond) {
					u.readers[tag] = append(u.readers[tag], r.Name)
				}
			}
		}
	})

	// Reader routine lists come out of set iteration; sort them so the
	// merged maps are stable.
	for tag := range u.readers {
		sort.Strings(u.readers[tag])
	}
	return u
}

func (a *Analyzer) merge(plc string, u plcUsage) {
	for tag, routines := range u.writers {
		if a.writers[tag] == nil {
			a.writers[tag] = make(map[string][]string)
		}
		a.writers[tag][plc] = routines
	}
	for tag, routines := range u.readers {
		if a.readers[tag] == nil {
			a.readers[tag] = make(map[string][]string)
		}
		a.readers[tag][plc] = routines
	}
}

// collectDefinitions records controller-scoped declarations only;
// program-scoped tags never participate in conflict detection.
func (a *Analyzer) collectDefinitions(plc string, p *ir.Project) {
	for _, tag := range p.Controller.Tags {
		if a.definitions[tag.Name] == nil {
			a.definitions[tag.Name] = make(map[string]tagDef)
		}
		a.definitions[tag.Name][plc] = tagDef{
			dataType:    tag.DataType,
			scope:       tag.Scope,
			description: tag.Description,
		}
	}
}

// Dependencies returns one record per (writer PLC, reader PLC) pair per
// shared tag. The multiplicity is deliberate: downstream reporting shows
// each writer with its specific readers, so pairs are not deduplicated
// into one record per tag.
func (a *Analyzer) Dependencies() []ir.CrossPLCDependency {
	var deps []ir.CrossPLCDependency

	tags := make([]string, 0, len(a.writers))
	for tag := range a.writers {
		if a.readers[tag] != nil {
			tags = append(tags, tag)
		}
	}
	sort.Strings(tags)

	for _, tag := range tags {
		writerPLCs := sortedPLCs(a.writers[tag])
		readerPLCs := sortedPLCs(a.readers[tag])
		for _, w := range writerPLCs {
			for _, r := range readerPLCs {
				if w == r {
					continue
				}
				dep := ir.CrossPLCDependency{
					Tag:     tag,
					Writer:  w,
					Readers: []string{r},
				}
				if def, ok := a.definitions[tag][w]; ok {
					dep.DataType = def.dataType
					dep.Description = def.description
				}
				deps = append(deps, dep)
			}
		}
	}
	return deps
}

// Conflicts returns declaration conflicts across PLCs. Data-type and
// scope comparisons are independent: one tag name can produce both a
// different_data_types and a different_scopes record.
func (a *Analyzer) Conflicts() []ir.ConflictingTag {
	var conflicts []ir.ConflictingTag

	tags := make([]string, 0, len(a.definitions))
	for tag := range a.definitions {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	for _, tag := range tags {
		defs := a.definitions[tag]
		if len(defs) < 2 {
			continue
		}
		plcs := sortedDefPLCs(defs)

		dataTypes := make(map[string]bool)
		scopes := make(map[ir.TagScope]bool)
		for _, def := range defs {
			dataTypes[def.dataType] = true
			scopes[def.scope] = true
		}

		if len(dataTypes) > 1 {
			details := make(map[string]string, len(defs))
			for plc, def := range defs {
				details[plc] = def.dataType
			}
			conflicts = append(conflicts, ir.ConflictingTag{
				Tag:     tag,
				PLCs:    plcs,
				Kind:    ir.ConflictDataTypes,
				Details: details,
			})
		}

		if len(scopes) > 1 {
			details := make(map[string]string, len(defs))
			for plc, def := range defs {
				details[plc] = string(def.scope)
			}
			conflicts = append(conflicts, ir.ConflictingTag{
				Tag:     tag,
				PLCs:    plcs,
				Kind:    ir.ConflictScopes,
				Details: details,
			})
		}
	}
	return conflicts
}

// Result bundles both analyses for export and persistence.
type Result struct {
	PLCNames     []string                `json:"plc_names"`
	Dependencies []ir.CrossPLCDependency `json:"dependencies"`
	Conflicts    []ir.ConflictingTag     `json:"conflicts"`
}

// Analyze runs both passes over the collection.
func Analyze(projects map[string]*ir.Project) *Result {
	a := New(projects)
	return &Result{
		PLCNames:     a.PLCNames(),
		Dependencies: a.Dependencies(),
		Conflicts:    a.Conflicts(),
	}
}

func sortedPLCs(m map[string][]string) []string {
	out := make([]string, 0, len(m))
	for plc := range m {
		out = append(out, plc)
	}
	sort.Strings(out)
	return out
}

func sortedDefPLCs(m map[string]tagDef) []string {
	out := make([]string, 0, len(m))
	for plc := range m {
		out = append(out, plc)
	}
	sort.Strings(out)
	return out
}
