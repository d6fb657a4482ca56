package ports

import (
	"context"

	"skipcorr/domain/stats"
)

// CalibrationRequest parameterizes Monte Carlo calibration of the ECP
// critical p-value for a batch of tested pairs.
type CalibrationRequest struct {
	N          int
	Pairs      []stats.Pair
	Alpha      float64
	NBoot      int
	Iterations int
	Seed       int64
}

// CriticalPValueCalibrator derives the single significance threshold used by
// the ECP correction. Implementations are expensive and invoked at most once
// per analysis call.
type CriticalPValueCalibrator interface {
	Calibrate(ctx context.Context, req CalibrationRequest) (float64, error)
}
