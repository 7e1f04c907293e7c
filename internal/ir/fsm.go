package ir

// FSMState is one state of an extracted state machine. IsInitial and
// IsFinal are heuristic flags; a state can be both or neither.
type FSMState struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsInitial   bool   `json:"is_initial"`
	IsFinal     bool   `json:"is_final"`
}

// FSMTransition is one inferred transition. FromState is the placeholder
// "CURRENT_STATE" when the true predecessor cannot be resolved; resolving
// it would require reaching-definitions analysis the extractor does not
// perform.
type FSMTransition struct {
	FromState string   `json:"from_state"`
	ToState   string   `json:"to_state"`
	Guard     string   `json:"guard,omitempty"`
	Actions   []string `json:"actions,omitempty"`
}

// StateMachine is a heuristically extracted finite state machine.
// IsImplicit is true when the state variable is boolean-valued rather
// than holding enumerated state names.
type StateMachine struct {
	Name          string          `json:"name"`
	StateVariable string          `json:"state_variable"`
	States        []FSMState      `json:"states"`
	Transitions   []FSMTransition `json:"transitions"`
	Description   string          `json:"description,omitempty"`
	Source        SourceFormat    `json:"source,omitempty"`
	IsImplicit    bool            `json:"is_implicit"`
}

// LinkedTransition records a pair of transitions in two different
// controllers' FSMs that both mention at least one shared tag.
// SharedTags holds the tags common to both transitions, sorted.
type LinkedTransition struct {
	FSM1       string   `json:"fsm1"`
	FSM2       string   `json:"fsm2"`
	ToState1   string   `json:"to_state1"`
	ToState2   string   `json:"to_state2"`
	SharedTags []string `json:"shared_tags,omitempty"`
}

// CrossControllerFSM composes per-controller FSMs linked via shared tags.
type CrossControllerFSM struct {
	Name              string             `json:"name"`
	Controllers       []string           `json:"controllers"`
	LinkedTransitions []LinkedTransition `json:"linked_transitions,omitempty"`
	SharedTags        []string           `json:"shared_tags,omitempty"`
	Description       string             `json:"description,omitempty"`
}
