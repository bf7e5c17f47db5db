package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/zipafford/internal/db"
	"github.com/sells-group/zipafford/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(4)
	minConns := int32(1)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS profiles (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	name       TEXT NOT NULL UNIQUE,
	inputs     JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	mode        TEXT NOT NULL,
	inputs      JSONB NOT NULL,
	max_price   DOUBLE PRECISION,
	zip_count   INTEGER NOT NULL DEFAULT 0,
	state_count INTEGER NOT NULL DEFAULT 0,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
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
	median_home_value  DOUBLE PRECISION,
	median_rent        DOUBLE PRECISION,
	PRIMARY KEY (run_id, state)
);

CREATE INDEX IF NOT EXISTS idx_runs_mode ON runs(mode);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at DESC);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) SaveProfile(ctx context.Context, name string, in model.AffordabilityInputs) (*model.Profile, error) {
	name = strings.TrimSpace(name)
	if err := validName(name); err != nil {
		return nil, err
	}

	inputsJSON, err := json.Marshal(in)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal inputs")
	}

	now := time.Now().UTC()
	p := &model.Profile{Name: name, Inputs: in, UpdatedAt: now}
	err = s.pool.QueryRow(ctx,
		`INSERT INTO profiles (id, name, inputs, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (name) DO UPDATE SET inputs = EXCLUDED.inputs, updated_at = EXCLUDED.updated_at
		RETURNING id, created_at`,
		uuid.New().String(), name, inputsJSON, now, now,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: save profile %s", name)
	}
	return p, nil
}

func (s *PostgresStore) GetProfile(ctx context.Context, name string) (*model.Profile, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, name, inputs, created_at, updated_at FROM profiles WHERE name = $1`,
		strings.TrimSpace(name),
	)
	p, err := scanPgProfile(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound("profile", name)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get profile %s", name)
	}
	return p, nil
}

func (s *PostgresStore) ListProfiles(ctx context.Context) ([]model.Profile, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, inputs, created_at, updated_at FROM profiles ORDER BY name`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list profiles")
	}
	defer rows.Close()

	var profiles []model.Profile
	for rows.Next() {
		p, err := scanPgProfile(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan profile")
		}
		profiles = append(profiles, *p)
	}
	return profiles, eris.Wrap(rows.Err(), "postgres: iterate profiles")
}

func (s *PostgresStore) DeleteProfile(ctx context.Context, name string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM profiles WHERE name = $1`, strings.TrimSpace(name))
	if err != nil {
		return eris.Wrapf(err, "postgres: delete profile %s", name)
	}
	if tag.RowsAffected() == 0 {
		return notFound("profile", name)
	}
	return nil
}

// RecordRun inserts the run row and COPYs its ranked state rows in one
// transaction.
func (s *PostgresStore) RecordRun(ctx context.Context, run model.Run, states []model.StateAffordability) (*model.Run, error) {
	fillRun(&run, len(states))

	inputsJSON, err := json.Marshal(run.Inputs)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal inputs")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		`INSERT INTO runs (id, mode, inputs, max_price, zip_count, state_count, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		run.ID, string(run.Mode), inputsJSON, run.MaxPrice, run.ZipCount, run.StateCount, run.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: insert run %s", run.ID)
	}

	if _, err := db.CopyFrom(ctx, tx, "run_states", runStateColumns, runStateRows(run.ID, states)); err != nil {
		return nil, eris.Wrapf(err, "postgres: run states for %s", run.ID)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, eris.Wrap(err, "postgres: commit run")
	}
	return &run, nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, mode, inputs, max_price, zip_count, state_count, created_at FROM runs WHERE id = $1`,
		runID,
	)
	r, err := scanPgRun(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound("run", runID)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get run %s", runID)
	}
	return r, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, mode, inputs, max_price, zip_count, state_count, created_at FROM runs`
	var args []any
	if filter.Mode != "" {
		args = append(args, string(filter.Mode))
		query += fmt.Sprintf(` WHERE mode = $%d`, len(args))
	}
	args = append(args, runLimit(filter))
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d`, len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		r, err := scanPgRun(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: iterate runs")
}

func (s *PostgresStore) RunStates(ctx context.Context, runID string) ([]model.StateAffordability, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT state, state_name, total_zips, affordable_count, stretch_count, unaffordable_count,
			pct_affordable, median_home_value, median_rent
		FROM run_states WHERE run_id = $1 ORDER BY rank`,
		runID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: run states %s", runID)
	}
	defer rows.Close()

	var states []model.StateAffordability
	for rows.Next() {
		var sa model.StateAffordability
		if err := rows.Scan(&sa.State, &sa.StateName, &sa.TotalZips, &sa.AffordableCount,
			&sa.StretchCount, &sa.UnaffordableCount, &sa.PctAffordable, &sa.MedianHomeValue, &sa.MedianRent); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run state")
		}
		states = append(states, sa)
	}
	return states, eris.Wrap(rows.Err(), "postgres: iterate run states")
}

func scanPgProfile(row scannable) (*model.Profile, error) {
	var (
		p          model.Profile
		inputsJSON []byte
	)
	if err := row.Scan(&p.ID, &p.Name, &inputsJSON, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(inputsJSON, &p.Inputs); err != nil {
		return nil, eris.Wrapf(err, "postgres: unmarshal inputs for profile %s", p.Name)
	}
	return &p, nil
}

func scanPgRun(row scannable) (*model.Run, error) {
	var (
		r          model.Run
		mode       string
		inputsJSON []byte
	)
	if err := row.Scan(&r.ID, &mode, &inputsJSON, &r.MaxPrice, &r.ZipCount, &r.StateCount, &r.CreatedAt); err != nil {
		return nil, err
	}
	r.Mode = model.RunMode(mode)
	if err := json.Unmarshal(inputsJSON, &r.Inputs); err != nil {
		return nil, eris.Wrapf(err, "postgres: unmarshal inputs for run %s", r.ID)
	}
	return &r, nil
}
