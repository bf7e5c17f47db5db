package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/zipafford/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS profiles (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL UNIQUE,
	inputs     TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	mode        TEXT NOT NULL,
	inputs      TEXT NOT NULL,
	max_price   REAL,
	zip_count   INTEGER NOT NULL DEFAULT 0,
	state_count INTEGER NOT NULL DEFAULT 0,
	created_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS run_states (
	run_id             TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	rank               INTEGER NOT NULL,
	state              TEXT NOT NULL,
	state_name         TEXT NOT NULL,
	total_zips         INTEGER NOT NULL,
	affordable_count   INTEGER NOT NULL,
	stretch_count      INTEGER NOT NULL,
	unaffordable_count INTEGER NOT NULL,
	pct_affordable     INTEGER NOT NULL,
	median_home_value  REAL,
	median_rent        REAL,
	PRIMARY KEY (run_id, state)
);

CREATE INDEX IF NOT EXISTS idx_runs_mode ON runs(mode);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveProfile inserts the profile or replaces the inputs of an existing
// profile with the same name. CreatedAt and ID survive a replace.
func (s *SQLiteStore) SaveProfile(ctx context.Context, name string, in model.AffordabilityInputs) (*model.Profile, error) {
	name = strings.TrimSpace(name)
	if err := validName(name); err != nil {
		return nil, err
	}

	inputsJSON, err := json.Marshal(in)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal inputs")
	}

	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO profiles (id, name, inputs, created_at, updated_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET inputs = excluded.inputs, updated_at = excluded.updated_at`,
		uuid.New().String(), name, string(inputsJSON), now, now,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: save profile %s", name)
	}
	return s.GetProfile(ctx, name)
}

func (s *SQLiteStore) GetProfile(ctx context.Context, name string) (*model.Profile, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, inputs, created_at, updated_at FROM profiles WHERE name = ?`,
		strings.TrimSpace(name),
	)
	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("profile", name)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get profile %s", name)
	}
	return p, nil
}

func (s *SQLiteStore) ListProfiles(ctx context.Context) ([]model.Profile, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, inputs, created_at, updated_at FROM profiles ORDER BY name`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list profiles")
	}
	defer rows.Close() //nolint:errcheck

	var profiles []model.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan profile")
		}
		profiles = append(profiles, *p)
	}
	return profiles, eris.Wrap(rows.Err(), "sqlite: iterate profiles")
}

func (s *SQLiteStore) DeleteProfile(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM profiles WHERE name = ?`, strings.TrimSpace(name))
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete profile %s", name)
	}
	return checkRowsAffected(res, "profile", name)
}

// RecordRun stores the run and its ranked state rows in one transaction.
// A blank ID or zero CreatedAt is filled in.
func (s *SQLiteStore) RecordRun(ctx context.Context, run model.Run, states []model.StateAffordability) (*model.Run, error) {
	fillRun(&run, len(states))

	inputsJSON, err := json.Marshal(run.Inputs)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal inputs")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: begin tx")
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, mode, inputs, max_price, zip_count, state_count, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, string(run.Mode), string(inputsJSON), nullFloat(run.MaxPrice), run.ZipCount, run.StateCount, run.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: insert run %s", run.ID)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO run_states (`+strings.Join(runStateColumns, ", ")+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: prepare run states")
	}
	defer stmt.Close() //nolint:errcheck

	for _, row := range runStateRows(run.ID, states) {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return nil, eris.Wrapf(err, "sqlite: insert run state %v", row[2])
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, eris.Wrap(err, "sqlite: commit run")
	}
	return &run, nil
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, mode, inputs, max_price, zip_count, state_count, created_at FROM runs WHERE id = ?`,
		runID,
	)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("run", runID)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get run %s", runID)
	}
	return r, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, mode, inputs, max_price, zip_count, state_count, created_at FROM runs`
	var args []any
	if filter.Mode != "" {
		query += ` WHERE mode = ?`
		args = append(args, string(filter.Mode))
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, runLimit(filter))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close() //nolint:errcheck

	var runs []model.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: iterate runs")
}

func (s *SQLiteStore) RunStates(ctx context.Context, runID string) ([]model.StateAffordability, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT state, state_name, total_zips, affordable_count, stretch_count, unaffordable_count,
			pct_affordable, median_home_value, median_rent
		FROM run_states WHERE run_id = ? ORDER BY rank`,
		runID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: run states %s", runID)
	}
	defer rows.Close() //nolint:errcheck

	var states []model.StateAffordability
	for rows.Next() {
		var (
			sa         model.StateAffordability
			home, rent sql.NullFloat64
		)
		if err := rows.Scan(&sa.State, &sa.StateName, &sa.TotalZips, &sa.AffordableCount,
			&sa.StretchCount, &sa.UnaffordableCount, &sa.PctAffordable, &home, &rent); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run state")
		}
		sa.MedianHomeValue = floatPtr(home)
		sa.MedianRent = floatPtr(rent)
		states = append(states, sa)
	}
	return states, eris.Wrap(rows.Err(), "sqlite: iterate run states")
}

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return notFound(entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanProfile(row scannable) (*model.Profile, error) {
	var (
		p          model.Profile
		inputsJSON string
	)
	if err := row.Scan(&p.ID, &p.Name, &inputsJSON, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(inputsJSON), &p.Inputs); err != nil {
		return nil, eris.Wrapf(err, "sqlite: unmarshal inputs for profile %s", p.Name)
	}
	return &p, nil
}

func scanRun(row scannable) (*model.Run, error) {
	var (
		r          model.Run
		mode       string
		inputsJSON string
		maxPrice   sql.NullFloat64
	)
	if err := row.Scan(&r.ID, &mode, &inputsJSON, &maxPrice, &r.ZipCount, &r.StateCount, &r.CreatedAt); err != nil {
		return nil, err
	}
	r.Mode = model.RunMode(mode)
	r.MaxPrice = floatPtr(maxPrice)
	if err := json.Unmarshal([]byte(inputsJSON), &r.Inputs); err != nil {
		return nil, eris.Wrapf(err, "sqlite: unmarshal inputs for run %s", r.ID)
	}
	return &r, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return model.Float64(v.Float64)
}
