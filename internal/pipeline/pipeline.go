// Package pipeline loads the housing dataset, classifies it for a profile and
// assembles nationwide, state and commute-zone results. Runs are recorded in
// the store when one is configured.
package pipeline

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/zipafford/internal/dataset"
	"github.com/sells-group/zipafford/internal/model"
	"github.com/sells-group/zipafford/internal/store"
)

// DatasetLoader supplies the joined housing and centroid tables.
type DatasetLoader interface {
	Load(ctx context.Context, src dataset.Sources) (*dataset.Dataset, error)
}

// Pipeline orchestrates load, classify, aggregate and record.
type Pipeline struct {
	loader  DatasetLoader
	sources dataset.Sources
	store   store.Store
}

// New creates a Pipeline. st may be nil, in which case runs are not recorded.
func New(loader DatasetLoader, sources dataset.Sources, st store.Store) *Pipeline {
	return &Pipeline{loader: loader, sources: sources, store: st}
}

func (p *Pipeline) load(ctx context.Context) (*dataset.Dataset, error) {
	ds, err := p.loader.Load(ctx, p.sources)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: load dataset")
	}
	return ds, nil
}

// recordRun stores the run and returns its ID. A failed write is logged and
// does not fail the caller's result.
func (p *Pipeline) recordRun(ctx context.Context, run model.Run, states []model.StateAffordability) string {
	if p.store == nil {
		return ""
	}
	rec, err := p.store.RecordRun(ctx, run, states)
	if err != nil {
		zap.L().Warn("pipeline: failed to record run",
			zap.String("mode", string(run.Mode)),
			zap.Error(err),
		)
		return ""
	}
	return rec.ID
}
