package fsm

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/crossplc/crossplc/internal/ir"
)

var linkWordRe = regexp.MustCompile(`\b\w+\b`)

// CrossExtractor extracts per-controller machines and links transitions
// across controllers through shared tag names. The link test is
// pairwise over every transition pair, O(T1*T2) per FSM pair; fleets
// analyzed here are small enough that this never matters.
type CrossExtractor struct {
	cfg func(controller string) Config
}

// NewCrossExtractor builds a CrossExtractor. cfg resolves per-controller
// configuration; a nil cfg means every controller runs unconfigured.
func NewCrossExtractor(cfg func(controller string) Config) *CrossExtractor {
	if cfg == nil {
		cfg = func(string) Config { return Config{} }
	}
	return &CrossExtractor{cfg: cfg}
}

// Extract runs per-project extraction, attaches each resulting machine
// to its project's controller, and links transition pairs that both
// mention a common controller tag. Projects with no extractable machine
// contribute nothing.
func (c *CrossExtractor) Extract(projects map[string]*ir.Project) *ir.CrossControllerFSM {
	names := make([]string, 0, len(projects))
	for name := range projects {
		names = append(names, name)
	}
	sort.Strings(names)

	var machines []*ir.StateMachine
	var controllers []string
	// Every controller tag participates in linking, not only tags
	// declared on several controllers: one controller may reference a
	// tag another one declares without declaring it itself.
	shared := make(map[string]bool)
	for _, name := range names {
		p := projects[name]
		for tag := range p.ControllerTagNames() {
			shared[tag] = true
		}
		ext := NewExtractor(c.cfg(name)).Extract(p)
		if ext == nil || ext.FSM == nil {
			continue
		}
		p.Controller.FSM = ext.FSM
		machines = append(machines, ext.FSM)
		controllers = append(controllers, name)
	}

	sharedList := make([]string, 0, len(shared))
	for tag := range shared {
		sharedList = append(sharedList, tag)
	}
	sort.Strings(sharedList)

	var links []ir.LinkedTransition
	// Ordered pairs: an A/B link and its B/A mirror are distinct records.
	for i := range machines {
		for j := range machines {
			if i == j {
				continue
			}
			links = append(links, linkMachines(machines[i], machines[j], shared)...)
		}
	}

	return &ir.CrossControllerFSM{
		Name:              "Composite_FSM",
		Controllers:       controllers,
		LinkedTransitions: links,
		SharedTags:        sharedList,
		Description: fmt.Sprintf("Composite of %d state machines with %d linked transitions",
			len(machines), len(links)),
	}
}

// linkMachines emits one link per transition pair whose guard and action
// texts share a word that is also a controller tag. The word must occur
// in both transitions; a tag mentioned by only one side does not link.
// SharedTags records the three-way intersection, sorted.
func linkMachines(a, b *ir.StateMachine, shared map[string]bool) []ir.LinkedTransition {
	var links []ir.LinkedTransition
	for _, ta := range a.Transitions {
		wordsA := transitionWords(ta)
		for _, tb := range b.Transitions {
			wordsB := transitionWords(tb)
			var tags []string
			for w := range wordsA {
				if wordsB[w] && shared[w] {
					tags = append(tags, w)
				}
			}
			if len(tags) == 0 {
				continue
			}
			sort.Strings(tags)
			links = append(links, ir.LinkedTransition{
				FSM1:       a.Name,
				FSM2:       b.Name,
				ToState1:   ta.ToState,
				ToState2:   tb.ToState,
				SharedTags: tags,
			})
		}
	}
	return links
}

func transitionWords(t ir.FSMTransition) map[string]bool {
	words := make(map[string]bool)
	for _, w := range linkWordRe.FindAllString(t.Guard, -1) {
		words[w] = true
	}
	for _, action := range t.Actions {
		for _, w := range linkWordRe.FindAllString(action, -1) {
			words[w] = true
		}
	}
	return words
}
