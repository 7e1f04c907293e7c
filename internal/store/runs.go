package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/crossplc/crossplc/internal/ir"
	"github.com/crossplc/crossplc/internal/multiplc"
)

// Run is one archived analysis with its full result.
type Run struct {
	ID        string
	CreatedAt time.Time
	Result    *multiplc.Result
}

// RunInfo is the listing view of an archived run.
type RunInfo struct {
	ID           string    `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	PLCNames     []string  `json:"plc_names"`
	Dependencies int       `json:"dependencies"`
	Conflicts    int       `json:"conflicts"`
}

// SaveRun archives one analysis result under a fresh run id and returns
// the id. The save is transactional: a partially written run is never
// visible.
func (s *Store) SaveRun(ctx context.Context, result *multiplc.Result) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate run id: %w", err)
	}
	runID := id.String()

	names, err := json.Marshal(result.PLCNames)
	if err != nil {
		return "", fmt.Errorf("marshal plc names: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	createdAt := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, plc_names) VALUES (?, ?, ?)`,
		runID, createdAt, string(names),
	); err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	for _, dep := range result.Dependencies {
		// One row per writer/reader pair; Readers always holds the
		// single reader of this record.
		reader := ""
		if len(dep.Readers) > 0 {
			reader = dep.Readers[0]
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO dependencies (run_id, tag, writer, reader, data_type, description)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			runID, dep.Tag, dep.Writer, reader, dep.DataType, dep.Description,
		); err != nil {
			return "", fmt.Errorf("insert dependency %s: %w", dep.Tag, err)
		}
	}

	for _, conflict := range result.Conflicts {
		plcs, err := json.Marshal(conflict.PLCs)
		if err != nil {
			return "", fmt.Errorf("marshal conflict plcs: %w", err)
		}
		details, err := json.Marshal(conflict.Details)
		if err != nil {
			return "", fmt.Errorf("marshal conflict details: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO conflicts (run_id, tag, plcs, kind, details)
			 VALUES (?, ?, ?, ?, ?)`,
			runID, conflict.Tag, string(plcs), string(conflict.Kind), string(details),
		); err != nil {
			return "", fmt.Errorf("insert conflict %s: %w", conflict.Tag, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit run: %w", err)
	}
	return runID, nil
}

// LoadRun reads one archived run back in its original order.
func (s *Store) LoadRun(ctx context.Context, runID string) (*Run, error) {
	var createdAt, namesJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT created_at, plc_names FROM runs WHERE id = ?`, runID,
	).Scan(&createdAt, &namesJSON)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %s not found", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("load run %s: %w", runID, err)
	}

	run := &Run{ID: runID, Result: &multiplc.Result{}}
	if run.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parse run timestamp: %w", err)
	}
	if err := json.Unmarshal([]byte(namesJSON), &run.Result.PLCNames); err != nil {
		return nil, fmt.Errorf("unmarshal plc names: %w", err)
	}

	if run.Result.Dependencies, err = s.loadDependencies(ctx, runID); err != nil {
		return nil, err
	}
	if run.Result.Conflicts, err = s.loadConflicts(ctx, runID); err != nil {
		return nil, err
	}
	return run, nil
}

func (s *Store) loadDependencies(ctx context.Context, runID string) ([]ir.CrossPLCDependency, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT tag, writer, reader, data_type, description
		 FROM dependencies WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("load dependencies: %w", err)
	}
	defer rows.Close()

	var deps []ir.CrossPLCDependency
	for rows.Next() {
		var dep ir.CrossPLCDependency
		var reader string
		if err := rows.Scan(&dep.Tag, &dep.Writer, &reader, &dep.DataType, &dep.Description); err != nil {
			return nil, fmt.Errorf("scan dependency: %w", err)
		}
		dep.Readers = []string{reader}
		deps = append(deps, dep)
	}
	return deps, rows.Err()
}

func (s *Store) loadConflicts(ctx context.Context, runID string) ([]ir.ConflictingTag, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT tag, plcs, kind, details
		 FROM conflicts WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("load conflicts: %w", err)
	}
	defer rows.Close()

	var conflicts []ir.ConflictingTag
	for rows.Next() {
		var conflict ir.ConflictingTag
		var plcsJSON, kind, detailsJSON string
		if err := rows.Scan(&conflict.Tag, &plcsJSON, &kind, &detailsJSON); err != nil {
			return nil, fmt.Errorf("scan conflict: %w", err)
		}
		conflict.Kind = ir.ConflictKind(kind)
		if err := json.Unmarshal([]byte(plcsJSON), &conflict.PLCs); err != nil {
			return nil, fmt.Errorf("unmarshal conflict plcs: %w", err)
		}
		if err := json.Unmarshal([]byte(detailsJSON), &conflict.Details); err != nil {
			return nil, fmt.Errorf("unmarshal conflict details: %w", err)
		}
		conflicts = append(conflicts, conflict)
	}
	return conflicts, rows.Err()
}

// ListRuns returns every archived run, newest first.
func (s *Store) ListRuns(ctx context.Context) ([]RunInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.created_at, r.plc_names,
		       (SELECT COUNT(*) FROM dependencies d WHERE d.run_id = r.id),
		       (SELECT COUNT(*) FROM conflicts c WHERE c.run_id = r.id)
		FROM runs r ORDER BY r.created_at DESC, r.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var infos []RunInfo
	for rows.Next() {
		var info RunInfo
		var createdAt, namesJSON string
		if err := rows.Scan(&info.ID, &createdAt, &namesJSON, &info.Dependencies, &info.Conflicts); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if info.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("parse run timestamp: %w", err)
		}
		if err := json.Unmarshal([]byte(namesJSON), &info.PLCNames); err != nil {
			return nil, fmt.Errorf("unmarshal plc names: %w", err)
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}
