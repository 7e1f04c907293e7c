// Package cfg builds control-flow graphs from routine text and computes
// per-block and per-routine def/use sets.
//
// The builder partitions a routine's line-oriented content into basic
// blocks. A line opening a control construct (IF, FOR, WHILE, CASE) closes
// the current block and opens a control block; the matching END_* line
// closes it and resumes accumulation in a freshly allocated block. Block
// ids are drawn from a counter owned by the Builder instance, so ids are
// unique across every routine processed in one analysis session and
// repeated sessions are isolated from each other.
//
// Nested control constructs are not tracked with a real stack-scoped
// graph: the builder keeps a single open-block pointer, so an IF inside an
// IF produces a flattened, best-effort graph rather than a lexically
// accurate one. This is a documented heuristic limitation; downstream
// consumers rely on the flattened shape.
package cfg
