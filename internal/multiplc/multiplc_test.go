package multiplc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crossplc/crossplc/internal/ir"
	"github.com/crossplc/crossplc/internal/testutil"
)

func writerReaderProjects() map[string]*ir.Project {
	writer := testutil.Project("P1",
		[]ir.Tag{testutil.ControllerTag("HANDSHAKE", "BOOL")},
		testutil.STRoutine("Send", "HANDSHAKE := TRUE;"),
	)
	reader := testutil.Project("P2",
		[]ir.Tag{testutil.ControllerTag("HANDSHAKE", "BOOL")},
		testutil.STRoutine("Receive",
			"IF HANDSHAKE THEN",
			"ACK := TRUE;",
			"END_IF;",
		),
	)
	return map[string]*ir.Project{"P1": writer, "P2": reader}
}

func TestDependencies_WriterToReader(t *testing.T) {
	res := Analyze(writerReaderProjects())

	var handshake []ir.CrossPLCDependency
	for _, dep := range res.Dependencies {
		if dep.Tag == "HANDSHAKE" {
			handshake = append(handshake, dep)
		}
	}
	require.Len(t, handshake, 1)
	assert.Equal(t, "P1", handshake[0].Writer)
	assert.Equal(t, []string{"P2"}, handshake[0].Readers)
	assert.Equal(t, "BOOL", handshake[0].DataType, "type taken from the writer's declaration")
}

func TestDependencies_OneRecordPerWriterReaderPair(t *testing.T) {
	projects := map[string]*ir.Project{
		"W": testutil.Project("W",
			[]ir.Tag{testutil.ControllerTag("SHARED", "DINT")},
			testutil.STRoutine("Produce", "SHARED := 1;"),
		),
		"R1": testutil.Project("R1",
			[]ir.Tag{testutil.ControllerTag("SHARED", "DINT")},
			testutil.STRoutine("Consume1", "LOCAL := SHARED;"),
		),
		"R2": testutil.Project("R2",
			[]ir.Tag{testutil.ControllerTag("SHARED", "DINT")},
			testutil.STRoutine("Consume2", "LOCAL := SHARED;"),
		),
	}

	res := Analyze(projects)

	var shared []ir.CrossPLCDependency
	for _, dep := range res.Dependencies {
		if dep.Tag == "SHARED" && dep.Writer == "W" {
			shared = append(shared, dep)
		}
	}
	require.Len(t, shared, 2, "one record per writer-reader pair, not one per tag")
	assert.ElementsMatch(t,
		[][]string{{"R1"}, {"R2"}},
		[][]string{shared[0].Readers, shared[1].Readers},
	)
}

func TestDependencies_DeclarationAloneIsNoDependency(t *testing.T) {
	// Both PLCs declare ALARM identically but neither routine writes it
	// while the other reads it: no dependency and no conflict.
	projects := map[string]*ir.Project{
		"P1": testutil.Project("P1",
			[]ir.Tag{testutil.ControllerTag("ALARM", "BOOL")},
			testutil.STRoutine("Idle", "LOCAL := 1;"),
		),
		"P2": testutil.Project("P2",
			[]ir.Tag{testutil.ControllerTag("ALARM", "BOOL")},
			testutil.STRoutine("Idle", "LOCAL := 2;"),
		),
	}

	res := Analyze(projects)
	for _, dep := range res.Dependencies {
		assert.NotEqual(t, "ALARM", dep.Tag)
	}
	assert.Empty(t, res.Conflicts, "same type and scope is not a conflict")
}

func conflictProjects() map[string]*ir.Project {
	p1 := testutil.Project("P1",
		[]ir.Tag{{Name: "SPEED", DataType: "DINT", Scope: ir.ScopeController}},
		testutil.STRoutine("Main", "SPEED := 1;"),
	)
	p2 := testutil.Project("P2",
		[]ir.Tag{{Name: "SPEED", DataType: "REAL", Scope: ir.ScopeProgram}},
		testutil.STRoutine("Main", "SPEED := 2;"),
	)
	return map[string]*ir.Project{"P1": p1, "P2": p2}
}

func TestConflicts_BothKindsForOneTag(t *testing.T) {
	res := Analyze(conflictProjects())
	require.Len(t, res.Conflicts, 2, "data-type and scope conflicts are independent records")

	byKind := make(map[ir.ConflictKind]ir.ConflictingTag)
	for _, c := range res.Conflicts {
		byKind[c.Kind] = c
	}

	dt := byKind[ir.ConflictDataTypes]
	assert.Equal(t, "SPEED", dt.Tag)
	assert.Equal(t, []string{"P1", "P2"}, dt.PLCs)
	assert.Equal(t, map[string]string{"P1": "DINT", "P2": "REAL"}, dt.Details)

	sc := byKind[ir.ConflictScopes]
	assert.Equal(t, map[string]string{"P1": "Controller", "P2": "Program"}, sc.Details)
}

func TestConflicts_SymmetricUnderNameOrder(t *testing.T) {
	// Same projects registered under swapped iteration-order-sensitive
	// names produce the same conflict set.
	forward := Analyze(conflictProjects())

	swapped := conflictProjects()
	reversed := map[string]*ir.Project{"P2": swapped["P2"], "P1": swapped["P1"]}
	backward := Analyze(reversed)

	assert.ElementsMatch(t, forward.Conflicts, backward.Conflicts)
	assert.Equal(t, forward.PLCNames, backward.PLCNames)
}

func TestAnalyze_DeterministicAcrossRuns(t *testing.T) {
	a := Analyze(writerReaderProjects())
	b := Analyze(writerReaderProjects())
	assert.Equal(t, a, b)
}
