package ir

// ConflictKind categorizes a multi-PLC tag conflict.
type ConflictKind string

const (
	// ConflictDataTypes means the same tag name is declared with more than
	// one distinct data type across PLCs.
	ConflictDataTypes ConflictKind = "different_data_types"

	// ConflictScopes means the same tag name is declared at more than one
	// distinct scope across PLCs.
	ConflictScopes ConflictKind = "different_scopes"
)

// CrossPLCDependency records a tag written by one PLC's routines and read
// by different PLCs' routines. DataType and Description are best-effort,
// taken from the writer PLC's declaration when present.
type CrossPLCDependency struct {
	Tag         string   `json:"tag"`
	Writer      string   `json:"writer"`
	Readers     []string `json:"readers"`
	DataType    string   `json:"data_type,omitempty"`
	Description string   `json:"description,omitempty"`
}

// ConflictingTag records a tag name declared inconsistently across PLCs.
// Details maps PLC name to the conflicting value (data type or scope,
// depending on Kind). One tag name can produce two records, one per kind.
type ConflictingTag struct {
	Tag     string            `json:"tag"`
	PLCs    []string          `json:"plcs"`
	Kind    ConflictKind      `json:"conflict"`
	Details map[string]string `json:"details"`
}
