package tagscan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFirst(t *testing.T) {
	testCases := []struct {
		name string
		expr string
		want string
	}{
		{"simple tag", "PUMP_ON", "PUMP_ON"},
		{"dotted member", "TANK.LEVEL", "TANK.LEVEL"},
		{"array index stripped", "VALVES[3]", "VALVES"},
		{"first of several", "ALARM OR FAULT", "ALARM"},
		{"lowercase excluded", "state := 1", ""},
		{"mixed case stops at lowercase", "x + y", ""},
		{"empty", "", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, First(tc.expr))
		})
	}
}

func TestAll(t *testing.T) {
	tags := All("TANK.LEVEL > SETPOINT AND NOT ALARM_ACK")
	assert.Equal(t, map[string]bool{
		"TANK.LEVEL": true,
		"SETPOINT":   true,
		"AND":        true,
		"NOT":        true,
		"ALARM_ACK":  true,
	}, tags, "uppercase keywords are extracted too; the heuristic does not maintain a stop list")
}

func TestAll_ArrayIndexCollapsesToBase(t *testing.T) {
	tags := All("MOTORS[1] + MOTORS[2]")
	assert.Equal(t, map[string]bool{"MOTORS": true}, tags,
		"array references and their base are the same target")
}

func TestSplitAssignment(t *testing.T) {
	lhs, rhs, ok := SplitAssignment("LEVEL := TANK.LEVEL + 5;")
	assert.True(t, ok)
	assert.Equal(t, "LEVEL", lhs)
	assert.Equal(t, "TANK.LEVEL + 5", rhs)

	_, _, ok = SplitAssignment("IF LEVEL > 10 THEN")
	assert.False(t, ok, "comparison is not an assignment")
}

func TestSplitAssignment_SplitsOnFirstOperator(t *testing.T) {
	lhs, rhs, ok := SplitAssignment("A := B; C := D;")
	assert.True(t, ok)
	assert.Equal(t, "A", lhs)
	assert.Equal(t, "B; C := D", rhs)
}

func TestIfCondition(t *testing.T) {
	cond, ok := IfCondition("IF START AND NOT FAULT THEN")
	assert.True(t, ok)
	assert.Equal(t, "START AND NOT FAULT", cond)

	cond, ok = IfCondition("if level < low then")
	assert.True(t, ok)
	assert.Equal(t, "level < low", cond)

	// Only IF lines are guards; ELSIF branches contribute no uses.
	_, ok = IfCondition("ELSIF LEVEL < LOW THEN")
	assert.False(t, ok)

	_, ok = IfCondition("LEVEL := 3;")
	assert.False(t, ok)
}

func TestSkipLine(t *testing.T) {
	assert.True(t, SkipLine(""))
	assert.True(t, SkipLine("// comment"))
	assert.False(t, SkipLine("A := 1;"))
}
