package app

import (
	"context"

	"skipcorr/adapters/stats/engine"
	"skipcorr/domain/core"
	"skipcorr/domain/stats"
	"skipcorr/internal"
	"skipcorr/internal/errors"
	"skipcorr/ports"
)

var errNoRepository = errors.ConfigInvalid("no run repository configured")

// CorrelationService orchestrates a full analysis: run the engine, persist
// the result when a repository is configured, and hand the run back.
type CorrelationService struct {
	engine *engine.Engine
	repo   ports.RunRepository // nil disables persistence
	log    *internal.Logger
}

// NewCorrelationService creates a correlation service
func NewCorrelationService(eng *engine.Engine, repo ports.RunRepository, logger *internal.Logger) *CorrelationService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &CorrelationService{engine: eng, repo: repo, log: logger}
}

// AnalyzeRequest bundles the sample matrix with the run options.
type AnalyzeRequest struct {
	Matrix  *stats.Matrix
	Options stats.Options
}

// Analyze runs the pipeline. Persistence failures do not discard a computed
// run; they are logged and the run is still returned.
func (s *CorrelationService) Analyze(ctx context.Context, req AnalyzeRequest) (*stats.Run, error) {
	run, err := s.engine.Analyze(ctx, req.Matrix, req.Options)
	if err != nil {
		return nil, err
	}
	s.log.Info("run %s: n=%d, %d pairs, method=%s, %dms",
		run.ID, run.N, len(run.Results), run.Options.Method, run.RuntimeMs)

	if s.repo != nil {
		if err := s.repo.SaveRun(ctx, run); err != nil {
			s.log.Error("failed to persist run %s: %v", run.ID, err)
		}
	}
	return run, nil
}

// GetRun loads a persisted run.
func (s *CorrelationService) GetRun(ctx context.Context, id core.RunID) (*stats.Run, error) {
	if s.repo == nil {
		return nil, errNoRepository
	}
	return s.repo.GetRun(ctx, id)
}
