package ports

import (
	"context"

	"skipcorr/domain/core"
	"skipcorr/domain/stats"
)

// RunRepository persists completed analysis runs and their per-pair results.
type RunRepository interface {
	SaveRun(ctx context.Context, run *stats.Run) error
	GetRun(ctx context.Context, id core.RunID) (*stats.Run, error)
}
