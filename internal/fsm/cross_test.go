package fsm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crossplc/crossplc/internal/ir"
	"github.com/crossplc/crossplc/internal/testutil"
)

func crossFixture() map[string]*ir.Project {
	fill := testutil.Project("FillPLC",
		[]ir.Tag{
			testutil.ControllerTag("FILL_PHASE", "STRING"),
			testutil.ControllerTag("TANK_READY", "BOOL"),
		},
		testutil.STRoutine("Main",
			`FILL_PHASE := "IDLE";`,
			`IF TANK_READY THEN`,
			`    FILL_PHASE := "RUNNING";`,
			`END_IF;`,
		),
	)
	drain := testutil.Project("DrainPLC",
		[]ir.Tag{
			testutil.ControllerTag("DRAIN_PHASE", "STRING"),
			testutil.ControllerTag("TANK_READY", "BOOL"),
		},
		testutil.STRoutine("Main",
			`DRAIN_PHASE := "IDLE";`,
			`IF NOT TANK_READY THEN`,
			`    DRAIN_PHASE := "RUNNING";`,
			`END_IF;`,
		),
	)
	return map[string]*ir.Project{"FillPLC": fill, "DrainPLC": drain}
}

func TestCrossExtract_LinksThroughSharedTags(t *testing.T) {
	projects := crossFixture()
	composite := NewCrossExtractor(nil).Extract(projects)
	require.NotNil(t, composite)

	assert.Equal(t, "Composite_FSM", composite.Name)
	assert.Equal(t, []string{"DrainPLC", "FillPLC"}, composite.Controllers)
	assert.Equal(t, []string{"DRAIN_PHASE", "FILL_PHASE", "TANK_READY"}, composite.SharedTags)

	// Each machine was attached to its controller.
	require.NotNil(t, projects["FillPLC"].Controller.FSM)
	require.NotNil(t, projects["DrainPLC"].Controller.FSM)
	assert.Equal(t, "FILL_PHASE", projects["FillPLC"].Controller.FSM.StateVariable)
	assert.Equal(t, "DRAIN_PHASE", projects["DrainPLC"].Controller.FSM.StateVariable)

	// Both machines guard on TANK_READY. Each has two transitions
	// (to IDLE and to RUNNING), every cross pairing mentions TANK_READY
	// on both sides, and ordered pairs yield a mirror for every link.
	require.Len(t, composite.LinkedTransitions, 8)
	var directions []string
	for _, link := range composite.LinkedTransitions {
		assert.Equal(t, []string{"TANK_READY"}, link.SharedTags)
		if link.ToState1 == "RUNNING" && link.ToState2 == "RUNNING" {
			directions = append(directions, link.FSM1+">"+link.FSM2)
		}
	}
	assert.ElementsMatch(t, []string{
		"FSM_DRAIN_PHASE>FSM_FILL_PHASE",
		"FSM_FILL_PHASE>FSM_DRAIN_PHASE",
	}, directions)
}

func TestCrossExtract_DisjointVocabularyNoLinks(t *testing.T) {
	a := testutil.Project("A",
		[]ir.Tag{testutil.ControllerTag("A_PHASE", "STRING")},
		testutil.STRoutine("Main",
			`IF A_GO THEN`,
			`    A_PHASE := "RUNNING";`,
			`END_IF;`,
		),
	)
	b := testutil.Project("B",
		[]ir.Tag{testutil.ControllerTag("B_PHASE", "STRING")},
		testutil.STRoutine("Main",
			`IF B_GO THEN`,
			`    B_PHASE := "RUNNING";`,
			`END_IF;`,
		),
	)

	composite := NewCrossExtractor(nil).Extract(map[string]*ir.Project{"A": a, "B": b})
	require.NotNil(t, composite)
	assert.Equal(t, []string{"A_PHASE", "B_PHASE"}, composite.SharedTags)
	assert.Empty(t, composite.LinkedTransitions)
}

func TestCrossExtract_OneSidedMentionDoesNotLink(t *testing.T) {
	a := testutil.Project("A",
		[]ir.Tag{
			testutil.ControllerTag("A_PHASE", "STRING"),
			testutil.ControllerTag("COMMON", "BOOL"),
		},
		testutil.STRoutine("Main",
			`IF COMMON THEN`,
			`    A_PHASE := "RUNNING";`,
			`END_IF;`,
		),
	)
	b := testutil.Project("B",
		[]ir.Tag{
			testutil.ControllerTag("B_PHASE", "STRING"),
			testutil.ControllerTag("COMMON", "BOOL"),
		},
		testutil.STRoutine("Main",
			`IF B_LOCAL THEN`,
			`    B_PHASE := "RUNNING";`,
			`END_IF;`,
		),
	)

	// COMMON is a controller tag on both sides, but only A's transition
	// mentions it; a link requires the tag in both transitions.
	composite := NewCrossExtractor(nil).Extract(map[string]*ir.Project{"A": a, "B": b})
	require.NotNil(t, composite)
	assert.Contains(t, composite.SharedTags, "COMMON")
	assert.Empty(t, composite.LinkedTransitions)
}

func TestCrossExtract_PerControllerConfig(t *testing.T) {
	projects := crossFixture()
	cfg := func(controller string) Config {
		if controller == "FillPLC" {
			return Config{StateVar: "FILL_PHASE"}
		}
		return Config{}
	}

	composite := NewCrossExtractor(cfg).Extract(projects)
	require.NotNil(t, composite)
	assert.Equal(t, "FILL_PHASE", projects["FillPLC"].Controller.FSM.StateVariable)
}
