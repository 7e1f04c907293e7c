// Package fsm infers finite state machines from control-logic IR using
// structural scoring heuristics.
//
// The extractor never resolves the true predecessor of a transition:
// that would require reaching-definitions analysis, which is out of
// scope. Every transition's from_state is the "CURRENT_STATE"
// placeholder, a deliberate simplification callers must expect.
package fsm

import (
	"fmt"
	"sort"
	"strings"

	"github.com/crossplc/crossplc/internal/ir"
)

// minHintScore is the evidence threshold below which a configured
// state_var hint is rejected.
const minHintScore = 3

// placeholderFrom is the sentinel assigned while transitions are built;
// it is rewritten to currentStateFrom before results are returned.
const (
	placeholderFrom  = "UNKNOWN"
	currentStateFrom = "CURRENT_STATE"
)

// initialStateNames and finalStateNames classify states by lowercase
// name. A state can match both sets or neither; the flags are not
// mutually exclusive.
var (
	initialStateNames = map[string]bool{
		"idle": true, "init": true, "ready": true,
		"false": true, "0": true, "off": true,
	}
	finalStateNames = map[string]bool{
		"fault": true, "error": true, "stopped": true,
		"true": true, "1": true, "on": true,
	}
	booleanValues = map[string]bool{
		"true": true, "false": true, "1": true,
		"0": true, "on": true, "off": true,
	}
)

// Validation compares extracted states against configured expectations.
// It is informational only and never blocks FSM construction.
type Validation struct {
	Valid            bool     `json:"valid"`
	MissingStates    []string `json:"missing_states,omitempty"`
	UnexpectedStates []string `json:"unexpected_states,omitempty"`
}

// Extraction is the result of one extraction run. FSM is nil when no
// state variable gathered enough evidence; Validation is nil when the
// config supplies no expectations for the chosen variable.
type Extraction struct {
	FSM        *ir.StateMachine
	Validation *Validation
}

// Extractor runs FSM extraction with optional configuration hints.
type Extractor struct {
	cfg Config
}

// NewExtractor returns an Extractor using the given hints. The zero
// Config is valid.
func NewExtractor(cfg Config) *Extractor {
	return &Extractor{cfg: cfg}
}

// Extract infers at most one state machine from a project's routines.
// Returns nil when no state variable can be identified or no states are
// found; this is an absent result, not an error.
func (e *Extractor) Extract(p *ir.Project) *Extraction {
	ev := collectEvidence(p)

	stateVar := e.selectStateVariable(ev)
	if stateVar == "" {
		return nil
	}

	states := e.extractStates(ev, stateVar)
	if len(states) == 0 {
		return nil
	}
	transitions := extractTransitions(ev, stateVar)

	machine := &ir.StateMachine{
		Name:          "FSM_" + stateVar,
		StateVariable: stateVar,
		States:        states,
		Transitions:   transitions,
		Description:   fmt.Sprintf("Extracted state machine for variable %s", stateVar),
		Source:        p.Controller.Source,
		IsImplicit:    isImplicit(ev, stateVar),
	}

	return &Extraction{
		FSM:        machine,
		Validation: e.validate(stateVar, states),
	}
}

// selectStateVariable picks the state variable. A configured hint wins
// when it carries at least minHintScore points of evidence; otherwise
// candidates are ranked by score with ties broken by encounter order
// (the sort is stable, so identical input selects identically).
func (e *Extractor) selectStateVariable(ev *evidence) string {
	if e.cfg.StateVar != "" && ev.score(e.cfg.StateVar) >= minHintScore {
		return e.cfg.StateVar
	}

	type scored struct {
		name  string
		score int
	}
	var ranked []scored
	for _, cand := range ev.candidates() {
		if s := ev.score(cand); s > 0 {
			ranked = append(ranked, scored{cand, s})
		}
	}
	if len(ranked) == 0 {
		return ""
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})
	return ranked[0].name
}

// extractStates unions three sources: values assigned to the state
// variable, identifiers co-occurring with it inside guards, and explicit
// states from configuration. Order is first-encounter order.
func (e *Extractor) extractStates(ev *evidence, stateVar string) []ir.FSMState {
	var order []string
	seen := make(map[string]bool)
	add := func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		order = append(order, name)
	}

	for _, a := range ev.assignments {
		if a.Variable == stateVar && isStateValue(a.Value) {
			add(trimQuotes(a.Value))
		}
	}

	for _, g := range ev.guards {
		if !containsVar(g.Variables, stateVar) {
			continue
		}
		for _, v := range g.Variables {
			if v != stateVar && isStateValue(v) {
				add(trimQuotes(v))
			}
		}
	}

	for _, name := range e.cfg.ExplicitStates {
		add(name)
	}

	states := make([]ir.FSMState, 0, len(order))
	for _, name := range order {
		lower := strings.ToLower(name)
		states = append(states, ir.FSMState{
			Name:      name,
			IsInitial: initialStateNames[lower],
			IsFinal:   finalStateNames[lower],
		})
	}
	return states
}

// extractTransitions pairs every IF guard with every assignment to the
// state variable anywhere in the evidence. The pairing is deliberately
// coarse: without reaching-definitions analysis the prior state is
// unknowable, so from_state stays the placeholder.
func extractTransitions(ev *evidence, stateVar string) []ir.FSMTransition {
	var transitions []ir.FSMTransition

	for _, g := range ev.guards {
		if g.Kind != guardIf {
			continue
		}
		for _, a := range ev.assignments {
			if a.Variable != stateVar || !isStateValue(a.Value) {
				continue
			}
			transitions = append(transitions, ir.FSMTransition{
				FromState: placeholderFrom,
				ToState:   trimQuotes(a.Value),
				Guard:     g.Line,
				Actions:   []string{a.Line},
			})
		}
	}

	for i := range transitions {
		if transitions[i].FromState == placeholderFrom {
			transitions[i].FromState = currentStateFrom
		}
	}
	return transitions
}

// isImplicit reports whether the machine is a boolean-flag FSM: true
// when any value ever assigned to the state variable is boolean-like.
func isImplicit(ev *evidence, stateVar string) bool {
	for _, a := range ev.assignments {
		if a.Variable == stateVar && booleanValues[strings.ToLower(trimQuotes(a.Value))] {
			return true
		}
	}
	return false
}

// validate computes missing and unexpected states against configured
// expectations for the chosen variable. Nil when no expectations exist.
func (e *Extractor) validate(stateVar string, states []ir.FSMState) *Validation {
	expected := e.cfg.ExpectedStates[stateVar]
	if len(expected) == 0 {
		return nil
	}

	actual := make(map[string]bool, len(states))
	for _, s := range states {
		actual[s.Name] = true
	}
	expectedSet := make(map[string]bool, len(expected))
	for _, name := range expected {
		expectedSet[name] = true
	}

	v := &Validation{Valid: true}
	for _, name := range expected {
		if !actual[name] {
			v.MissingStates = append(v.MissingStates, name)
			v.Valid = false
		}
	}
	for _, s := range states {
		if !expectedSet[s.Name] {
			v.UnexpectedStates = append(v.UnexpectedStates, s.Name)
		}
	}
	return v
}

func containsVar(vars []string, name string) bool {
	for _, v := range vars {
		if v == name {
			return true
		}
	}
	return false
}
