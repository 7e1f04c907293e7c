package ir

// SourceFormat identifies the front-end that produced a project.
type SourceFormat string

// Known source formats. The set is closed: every front-end maps to exactly
// one of these.
const (
	SourceL5X     SourceFormat = "l5x"
	SourceOpenPLC SourceFormat = "openplc"
	SourceSiemens SourceFormat = "siemens"
	SourceLAD     SourceFormat = "lad"
	SourceTXT     SourceFormat = "txt"
)

// TagScope distinguishes controller-scoped from program-scoped tags.
type TagScope string

const (
	ScopeController TagScope = "Controller"
	ScopeProgram    TagScope = "Program"
)

// RoutineType identifies the representation of a routine body.
type RoutineType string

const (
	RoutineST  RoutineType = "ST"  // Structured Text
	RoutineRLL RoutineType = "RLL" // Rockwell relay ladder
	RoutineFBD RoutineType = "FBD" // Function block diagram
	RoutineLAD RoutineType = "LAD" // Siemens ladder
)

// Tag represents a declared tag (variable) at controller or program scope.
//
// Name is unique within its scope and is the join key used by every
// analysis pass. DataType is an open string identifier; formats invent
// types freely so no enum is imposed.
type Tag struct {
	Name            string   `json:"name"`
	DataType        string   `json:"data_type"`
	Scope           TagScope `json:"scope"`
	Value           string   `json:"value,omitempty"`
	InitialValue    string   `json:"initial_value,omitempty"`
	Description     string   `json:"description,omitempty"`
	ExternalAccess  string   `json:"external_access,omitempty"`
	Radix           string   `json:"radix,omitempty"`
	Constant        bool     `json:"constant,omitempty"`
	AliasFor        string   `json:"alias_for,omitempty"`
	ArrayDimensions []int    `json:"array_dimensions,omitempty"`
	UserDefinedType string   `json:"user_defined_type,omitempty"`
}

// DataTypeMember is one member of a user-defined data type.
type DataTypeMember struct {
	Name            string `json:"name"`
	DataType        string `json:"data_type"`
	Description     string `json:"description,omitempty"`
	Radix           string `json:"radix,omitempty"`
	ExternalAccess  string `json:"external_access,omitempty"`
	ArrayDimensions []int  `json:"array_dimensions,omitempty"`
	InitialValue    string `json:"initial_value,omitempty"`
}

// DataType is a user-defined data type declared on a controller.
type DataType struct {
	Name        string           `json:"name"`
	BaseType    string           `json:"base_type,omitempty"`
	Members     []DataTypeMember `json:"members,omitempty"`
	Description string           `json:"description,omitempty"`
	IsEnum      bool             `json:"is_enum,omitempty"`
	EnumValues  []string         `json:"enum_values,omitempty"`
}

// FunctionBlockParameter is one parameter or local variable of a
// function block. ParameterType is "Input", "Output" or "InOut".
type FunctionBlockParameter struct {
	Name            string `json:"name"`
	DataType        string `json:"data_type"`
	ParameterType   string `json:"parameter_type"`
	Description     string `json:"description,omitempty"`
	Required        bool   `json:"required"`
	ArrayDimensions []int  `json:"array_dimensions,omitempty"`
	InitialValue    string `json:"initial_value,omitempty"`
}

// FunctionBlock is a function block declared on a controller.
type FunctionBlock struct {
	Name           string                   `json:"name"`
	Description    string                   `json:"description,omitempty"`
	Parameters     []FunctionBlockParameter `json:"parameters,omitempty"`
	LocalVariables []FunctionBlockParameter `json:"local_variables,omitempty"`
	Implementation string                   `json:"implementation,omitempty"`
}

// Routine holds one routine's body as free text. Content is
// format-dependent but always representable as a line-oriented token
// stream; the analysis passes scan it line by line.
type Routine struct {
	Name           string      `json:"name"`
	Type           RoutineType `json:"type"`
	Content        string      `json:"content"`
	Description    string      `json:"description,omitempty"`
	LocalVariables []Tag       `json:"local_variables,omitempty"`
}

// Program groups routines with program-scoped tags.
type Program struct {
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	MainRoutine    string    `json:"main_routine,omitempty"`
	Routines       []Routine `json:"routines,omitempty"`
	Tags           []Tag     `json:"tags,omitempty"`
	LocalVariables []Tag     `json:"local_variables,omitempty"`
}

// Controller is the root hardware unit of a project. FSM is nil until the
// FSM extractor attaches a discovered state machine; this is one of the two
// documented IR mutation points.
type Controller struct {
	Name           string          `json:"name"`
	Description    string          `json:"description,omitempty"`
	Tags           []Tag           `json:"tags,omitempty"`
	DataTypes      []DataType      `json:"data_types,omitempty"`
	FunctionBlocks []FunctionBlock `json:"function_blocks,omitempty"`
	Source         SourceFormat    `json:"source,omitempty"`
	FSM            *StateMachine   `json:"fsm,omitempty"`
}

// Project is the root aggregate owning one controller and its programs.
// Tasks and modules are opaque key-value records; the analysis engine never
// interprets them. Metadata records provenance such as "l5k_overlay_applied".
type Project struct {
	Controller Controller          `json:"controller"`
	Programs   []Program           `json:"programs,omitempty"`
	Tasks      []map[string]string `json:"tasks,omitempty"`
	Modules    []map[string]string `json:"modules,omitempty"`
	Metadata   map[string]string   `json:"metadata,omitempty"`
}

// ControllerTagNames returns the set of tag names declared at controller
// scope. The set is freshly allocated; callers may mutate it.
func (p *Project) ControllerTagNames() map[string]bool {
	names := make(map[string]bool, len(p.Controller.Tags))
	for _, tag := range p.Controller.Tags {
		names[tag.Name] = true
	}
	return names
}

// Routines iterates all routines in program order, calling fn with the
// owning program. Iteration order is the declaration order of the IR.
func (p *Project) Routines(fn func(prog *Program, r *Routine)) {
	for i := range p.Programs {
		prog := &p.Programs[i]
		for j := range prog.Routines {
			fn(prog, &prog.Routines[j])
		}
	}
}
