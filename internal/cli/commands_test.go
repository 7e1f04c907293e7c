package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fillPLCST = `VAR_GLOBAL
    TANK_LEVEL : REAL;
END_VAR

PROGRAM Fill
TANK_LEVEL := 50.0;
END_PROGRAM
`

const drainPLCST = `VAR_GLOBAL
    TANK_LEVEL : REAL;
END_VAR

PROGRAM Drain
IF TANK_LEVEL > 10.0 THEN
    VALVE := TRUE;
END_IF;
END_PROGRAM
`

const seqPLCST = `PROGRAM Seq
PHASE := "IDLE";
IF START_CMD THEN
    PHASE := "RUNNING";
END_IF;
END_PROGRAM
`

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestAnalyzeCommandText(t *testing.T) {
	path := writeFixture(t, "TankPLC.st", loaderFixtureST)

	out, _, err := runCLI(t, "analyze", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Controller: TankPLC")
	assert.Contains(t, out, "Programs: 1, Routines: 1")
	assert.Contains(t, out, "Control flow (1 routines):")
}

func TestAnalyzeCommandJSON(t *testing.T) {
	path := writeFixture(t, "TankPLC.st", loaderFixtureST)

	out, _, err := runCLI(t, "--format", "json", "analyze", path)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "TankPLC", data["controller"])
	assert.Contains(t, data, "cfg")
}

func TestAnalyzeCommandMissingFile(t *testing.T) {
	_, _, err := runCLI(t, "analyze", filepath.Join(t.TempDir(), "nope.st"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestMultiCommandText(t *testing.T) {
	dir := t.TempDir()
	fill := filepath.Join(dir, "FillPLC.st")
	drain := filepath.Join(dir, "DrainPLC.st")
	require.NoError(t, os.WriteFile(fill, []byte(fillPLCST), 0o644))
	require.NoError(t, os.WriteFile(drain, []byte(drainPLCST), 0o644))

	out, _, err := runCLI(t, "multi", fill, drain)
	require.NoError(t, err)
	assert.Contains(t, out, "PLCs (2): DrainPLC, FillPLC")
	assert.Contains(t, out, "TANK_LEVEL: FillPLC -> DrainPLC")
}

func TestMultiCommandArchivesRun(t *testing.T) {
	dir := t.TempDir()
	fill := filepath.Join(dir, "FillPLC.st")
	drain := filepath.Join(dir, "DrainPLC.st")
	dbPath := filepath.Join(dir, "runs.db")
	require.NoError(t, os.WriteFile(fill, []byte(fillPLCST), 0o644))
	require.NoError(t, os.WriteFile(drain, []byte(drainPLCST), 0o644))

	out, _, err := runCLI(t, "multi", "--store", dbPath, fill, drain)
	require.NoError(t, err)
	assert.Contains(t, out, "Run archived as ")

	listOut, _, err := runCLI(t, "runs", dbPath)
	require.NoError(t, err)
	assert.Contains(t, listOut, "2 PLCs, 1 dependencies, 0 conflicts")
}

func TestMultiCommandNeedsTwoLoadable(t *testing.T) {
	dir := t.TempDir()
	fill := filepath.Join(dir, "FillPLC.st")
	require.NoError(t, os.WriteFile(fill, []byte(fillPLCST), 0o644))

	_, _, err := runCLI(t, "multi", fill, filepath.Join(dir, "missing.st"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestFSMCommandText(t *testing.T) {
	path := writeFixture(t, "SeqPLC.st", seqPLCST)

	out, _, err := runCLI(t, "fsm", path)
	require.NoError(t, err)
	assert.Contains(t, out, "SeqPLC: FSM_PHASE (variable PHASE)")
	assert.Contains(t, out, "IDLE")
	assert.Contains(t, out, "RUNNING")
}

func TestFSMCommandNoMachine(t *testing.T) {
	path := writeFixture(t, "FlatPLC.st", fillPLCST)

	_, _, err := runCLI(t, "fsm", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestExportCommandDOT(t *testing.T) {
	path := writeFixture(t, "TankPLC.st", loaderFixtureST)

	out, _, err := runCLI(t, "export", "--type", "dot", path)
	require.NoError(t, err)
	assert.Contains(t, out, "digraph CFG")
	assert.Contains(t, out, "cluster_Control")
}

func TestExportCommandJSONToFile(t *testing.T) {
	path := writeFixture(t, "TankPLC.st", loaderFixtureST)
	outPath := filepath.Join(t.TempDir(), "report.json")

	_, _, err := runCLI(t, "export", "--output", outPath, path)
	require.NoError(t, err)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)

	var report map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Contains(t, report, "metadata")
	assert.Contains(t, report, "tags")
	assert.Contains(t, report, "cfg")
}

func TestExportCommandInvalidType(t *testing.T) {
	path := writeFixture(t, "TankPLC.st", loaderFixtureST)

	_, _, err := runCLI(t, "export", "--type", "gexf", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRunsCommandMissingDatabase(t *testing.T) {
	_, _, err := runCLI(t, "runs", filepath.Join(t.TempDir(), "absent.db"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
