package cfg

import (
	"fmt"
	"strings"

	"github.com/crossplc/crossplc/internal/ir"
	"github.com/crossplc/crossplc/internal/tagscan"
)

// BlockKind distinguishes plain instruction blocks from control blocks.
type BlockKind string

const (
	// KindPlain is a straight-line instruction block.
	KindPlain BlockKind = ""
	// KindBranch is an IF block carrying true/false successor edges.
	KindBranch BlockKind = "branch"
	// KindControl is a FOR, WHILE or CASE block.
	KindControl BlockKind = "control"
)

// Block is one basic block of a routine CFG.
//
// Defs and Uses are populated by the data-flow analyzer; they are sorted
// so that repeated runs serialize identically.
type Block struct {
	ID             string    `json:"block_id"`
	Kind           BlockKind `json:"type,omitempty"`
	Condition      string    `json:"condition,omitempty"`
	TrueSuccessor  string    `json:"true_successor,omitempty"`
	FalseSuccessor string    `json:"false_successor,omitempty"`
	Instructions   []string  `json:"instructions"`
	Successors     []string  `json:"successors"`
	Defs           []string  `json:"defs"`
	Uses           []string  `json:"uses"`
}

// Graph is the CFG of one routine: ordered basic blocks plus the entry id.
type Graph struct {
	Blocks []*Block `json:"blocks"`
	Entry  string   `json:"entry,omitempty"`
}

// Builder allocates block ids from a counter it owns. Ids are unique
// across all routines built by one Builder, which keeps them reproducible
// per analysis session; separate sessions use separate Builders.
type Builder struct {
	counter int
}

// NewBuilder returns a Builder with a fresh id counter.
func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) nextID() string {
	b.counter++
	return fmt.Sprintf("b%d", b.counter)
}

// BuildProject builds CFGs for every routine with content, keyed by
// routine name. Routines with empty content are omitted.
func (b *Builder) BuildProject(p *ir.Project) map[string]*Graph {
	graphs := make(map[string]*Graph)
	p.Routines(func(_ *ir.Program, r *ir.Routine) {
		if g := b.BuildRoutine(r); g != nil {
			graphs[r.Name] = g
		}
	})
	return graphs
}

// BuildRoutine partitions one routine's content into basic blocks.
// Returns nil for a routine with no content.
//
// Blocks are linked positionally (block n flows to block n+1) except
// where a branch block overrides this with explicit true/false edges.
// Malformed lines are treated as plain instructions, never rejected.
func (b *Builder) BuildRoutine(r *ir.Routine) *Graph {
	if strings.TrimSpace(r.Content) == "" {
		return nil
	}

	entry := &Block{ID: "entry"}
	blocks := []*Block{entry}
	current := entry
	// committed tracks whether current is already in blocks; plain blocks
	// opened after an END_* line are held back until they gain an
	// instruction so the graph carries no empty trailing blocks.
	committed := true

	for _, raw := range strings.Split(r.Content, "\n") {
		line := strings.TrimSpace(raw)
		if tagscan.SkipLine(line) {
			continue
		}

		switch {
		case isControlStart(line):
			ctrl := b.newControlBlock(line)
			blocks = append(blocks, ctrl)
			current = ctrl
			committed = true

		case isControlEnd(line):
			current = &Block{ID: b.nextID()}
			committed = false

		default:
			current.Instructions = append(current.Instructions, line)
			if !committed {
				blocks = append(blocks, current)
				committed = true
			}
		}
	}

	// Positional successor edges; branch blocks carry their own edges.
	for i, blk := range blocks {
		if blk.Instructions == nil {
			blk.Instructions = []string{}
		}
		blk.Successors = []string{}
		if blk.Kind != KindBranch && i+1 < len(blocks) {
			blk.Successors = append(blk.Successors, blocks[i+1].ID)
		}
	}

	return &Graph{Blocks: blocks, Entry: "entry"}
}

// newControlBlock allocates a control block for a construct-opening line.
// An IF block records true/false successors as the next two ids the
// counter will allocate, whether or not those blocks materialize.
func (b *Builder) newControlBlock(line string) *Block {
	id := b.nextID()

	if strings.HasPrefix(strings.ToUpper(line), "IF ") {
		cond := strings.TrimSpace(line[3:])
		if upper := strings.ToUpper(cond); strings.HasSuffix(upper, "THEN") {
			cond = strings.TrimSpace(cond[:len(cond)-4])
		}
		return &Block{
			ID:             id,
			Kind:           KindBranch,
			Condition:      cond,
			TrueSuccessor:  fmt.Sprintf("b%d", b.counter+1),
			FalseSuccessor: fmt.Sprintf("b%d", b.counter+2),
		}
	}

	return &Block{
		ID:        id,
		Kind:      KindControl,
		Condition: line,
	}
}

func isControlStart(line string) bool {
	upper := strings.ToUpper(line)
	return strings.HasPrefix(upper, "IF ") ||
		strings.HasPrefix(upper, "FOR ") ||
		strings.HasPrefix(upper, "WHILE ") ||
		strings.HasPrefix(upper, "CASE ")
}

func isControlEnd(line string) bool {
	upper := strings.TrimSuffix(strings.ToUpper(line), ";")
	switch upper {
	case "END_IF", "END_FOR", "END_WHILE", "END_CASE":
		return true
	}
	return false
}
