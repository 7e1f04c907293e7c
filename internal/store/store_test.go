package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crossplc/crossplc/internal/ir"
	"github.com/crossplc/crossplc/internal/multiplc"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleResult() *multiplc.Result {
	return &multiplc.Result{
		PLCNames: []string{"DrainPLC", "FillPLC"},
		Dependencies: []ir.CrossPLCDependency{
			{
				Tag:         "TANK_LEVEL",
				Writer:      "FillPLC",
				Readers:     []string{"DrainPLC"},
				DataType:    "REAL",
				Description: "Tank level",
			},
		},
		Conflicts: []ir.ConflictingTag{
			{
				Tag:     "MODE",
				PLCs:    []string{"DrainPLC", "FillPLC"},
				Kind:    ir.ConflictDataTypes,
				Details: map[string]string{"DrainPLC": "DINT", "FillPLC": "INT"},
			},
		},
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")

	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s2.Close())
}

func TestSaveAndLoadRun(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	want := sampleResult()
	runID, err := s.SaveRun(ctx, want)
	require.NoError(t, err)
	require.NotEmpty(t, runID)

	run, err := s.LoadRun(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, runID, run.ID)
	assert.False(t, run.CreatedAt.IsZero())
	assert.Equal(t, want.PLCNames, run.Result.PLCNames)
	assert.Equal(t, want.Dependencies, run.Result.Dependencies)
	assert.Equal(t, want.Conflicts, run.Result.Conflicts)
}

func TestLoadRunNotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.LoadRun(context.Background(), "no-such-run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSaveEmptyResult(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	runID, err := s.SaveRun(ctx, &multiplc.Result{PLCNames: []string{"Solo"}})
	require.NoError(t, err)

	run, err := s.LoadRun(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Solo"}, run.Result.PLCNames)
	assert.Empty(t, run.Result.Dependencies)
	assert.Empty(t, run.Result.Conflicts)
}

func TestListRuns(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first, err := s.SaveRun(ctx, sampleResult())
	require.NoError(t, err)
	second, err := s.SaveRun(ctx, &multiplc.Result{PLCNames: []string{"Solo"}})
	require.NoError(t, err)

	infos, err := s.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 2)

	// Newest first; UUIDv7 ids order with creation time within a second.
	assert.Equal(t, second, infos[0].ID)
	assert.Equal(t, first, infos[1].ID)
	assert.Equal(t, 1, infos[1].Dependencies)
	assert.Equal(t, 1, infos[1].Conflicts)
	assert.Equal(t, []string{"Solo"}, infos[0].PLCNames)
}
