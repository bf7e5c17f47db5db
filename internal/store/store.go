// Package store persists saved affordability profiles and the history of
// aggregation runs.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/sells-group/zipafford/internal/model"
)

// ErrNotFound is wrapped by lookups and deletes that match no row.
var ErrNotFound = errors.New("not found")

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Mode  model.RunMode `json:"mode,omitempty"`
	Limit int           `json:"limit,omitempty"`
}

// Store defines the persistence interface for profiles and runs.
type Store interface {
	// Profiles
	SaveProfile(ctx context.Context, name string, in model.AffordabilityInputs) (*model.Profile, error)
	GetProfile(ctx context.Context, name string) (*model.Profile, error)
	ListProfiles(ctx context.Context) ([]model.Profile, error)
	DeleteProfile(ctx context.Context, name string) error

	// Runs
	RecordRun(ctx context.Context, run model.Run, states []model.StateAffordability) (*model.Run, error)
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)
	RunStates(ctx context.Context, runID string) ([]model.StateAffordability, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

const defaultRunLimit = 50

func runLimit(f RunFilter) int {
	if f.Limit <= 0 {
		return defaultRunLimit
	}
	return f.Limit
}

func notFound(entity, key string) error {
	return eris.Wrapf(ErrNotFound, "%s %s", entity, key)
}

func validName(name string) error {
	if name == "" {
		return eris.New("store: profile name is required")
	}
	return nil
}

var runStateColumns = []string{
	"run_id", "rank", "state", "state_name", "total_zips", "affordable_count",
	"stretch_count", "unaffordable_count", "pct_affordable", "median_home_value", "median_rent",
}

// runStateRows flattens states in ranked order, matching runStateColumns.
func runStateRows(runID string, states []model.StateAffordability) [][]any {
	rows := make([][]any, 0, len(states))
	for i, s := range states {
		rows = append(rows, []any{
			runID, i, s.State, s.StateName, s.TotalZips, s.AffordableCount,
			s.StretchCount, s.UnaffordableCount, s.PctAffordable, s.MedianHomeValue, s.MedianRent,
		})
	}
	return rows
}

func fillRun(run *model.Run, stateCount int) {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	if stateCount > 0 {
		run.StateCount = stateCount
	}
}
