// Package ir provides the format-agnostic intermediate representation for
// PLC control logic.
//
// This package contains type definitions only. All other internal packages
// import ir; ir imports nothing internal. This keeps the IR the foundational
// layer with no circular dependencies.
//
// Front-ends (L5X, OpenPLC ST, Siemens SCL/LAD, TXT C++) populate these
// types; analysis passes read them. The analysis engine treats the IR as
// immutable except for two documented mutation points: the FSM extractor
// attaches a StateMachine to Controller.FSM, and an L5K overlay (external)
// may merge tags before analysis runs.
//
// Key design constraints:
//   - Tag name strings are the join key for every analysis pass. Passes
//     never correlate tags by address, only by name.
//   - Data-type names are open string identifiers, not a closed enum -
//     formats invent types freely.
//   - All JSON tags use snake_case.
package ir
