package export

import (
	"fmt"
	"sort"

	"github.com/crossplc/crossplc/internal/ir"
	"github.com/crossplc/crossplc/internal/multiplc"
)

// PLCCounts is the per-controller size summary of a fleet report.
type PLCCounts struct {
	ControllerTags int `json:"controller_tags"`
	Programs       int `json:"programs"`
	Routines       int `json:"routines"`
}

// SummaryMetadata heads a fleet summary.
type SummaryMetadata struct {
	TotalPLCs       int      `json:"total_plcs"`
	PLCNames        []string `json:"plc_names"`
	TotalSharedTags int      `json:"total_shared_tags"`
	TotalConflicts  int      `json:"total_conflicts"`
}

// Summary is the JSON report of one multi-PLC analysis run.
type Summary struct {
	Metadata        SummaryMetadata         `json:"metadata"`
	SharedTags      []ir.CrossPLCDependency `json:"shared_tags"`
	ConflictingTags []ir.ConflictingTag     `json:"conflicting_tags"`
	PLCSummary      map[string]PLCCounts    `json:"plc_summary"`
}

// BuildSummary shapes a multi-PLC analysis result into the fleet summary
// report. Projects supplies the per-PLC counts; it must be the same
// collection the analysis ran over.
func BuildSummary(result *multiplc.Result, projects map[string]*ir.Project) *Summary {
	s := &Summary{
		Metadata: SummaryMetadata{
			TotalPLCs:       len(result.PLCNames),
			PLCNames:        result.PLCNames,
			TotalSharedTags: len(result.Dependencies),
			TotalConflicts:  len(result.Conflicts),
		},
		SharedTags:      result.Dependencies,
		ConflictingTags: result.Conflicts,
		PLCSummary:      make(map[string]PLCCounts, len(projects)),
	}

	names := make([]string, 0, len(projects))
	for name := range projects {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		p := projects[name]
		routines := 0
		for _, prog := range p.Programs {
			routines += len(prog.Routines)
		}
		s.PLCSummary[name] = PLCCounts{
			ControllerTags: len(p.Controller.Tags),
			Programs:       len(p.Programs),
			Routines:       routines,
		}
	}
	return s
}

// JSON serializes the summary with indentation.
func (s *Summary) JSON() ([]byte, error) {
	data, err := marshalIndentPlain(s)
	if err != nil {
		return nil, fmt.Errorf("marshal summary: %w", err)
	}
	return data, nil
}
