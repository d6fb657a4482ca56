package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"skipcorr/domain/core"
	"skipcorr/domain/stats"
	"skipcorr/internal/errors"
)

// RunRepository persists analysis runs and their per-pair results.
type RunRepository struct {
	db *sqlx.DB
}

// NewRunRepository creates a new run repository
func NewRunRepository(db *sqlx.DB) *RunRepository {
	return &RunRepository{db: db}
}

// SaveRun stores the run and all pair results in one transaction.
func (r *RunRepository) SaveRun(ctx context.Context, run *stats.Run) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, n, method, alpha, nboot, seed, inference, critical_p, runtime_ms, started_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		run.ID.String(), run.N, string(run.Options.Method), run.Options.Alpha,
		run.Options.NBoot, run.Options.Seed, run.Options.Inference,
		run.CriticalP, run.RuntimeMs, run.StartedAt,
	)
	if err != nil {
		return errors.Wrap(err, "failed to insert run")
	}

	for i, res := range run.Results {
		outliers := make(pq.Int64Array, len(res.Outliers))
		for j, o := range res.Outliers {
			outliers[j] = int64(o)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO pair_results
				(run_id, idx, col_a, col_b, r, t, boot_p, student_p, ci_lower, ci_upper, significant, outliers)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			run.ID.String(), i, res.Pair.A, res.Pair.B,
			res.R, res.T, res.BootP, res.StudentP,
			res.CI.Lower, res.CI.Upper, res.Significant, outliers,
		)
		if err != nil {
			return errors.Wrapf(err, "failed to insert result for pair %s", res.Pair)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit run")
	}
	return nil
}

type runRow struct {
	ID        string    `db:"id"`
	N         int       `db:"n"`
	Method    string    `db:"method"`
	Alpha     float64   `db:"alpha"`
	NBoot     int       `db:"nboot"`
	Seed      int64     `db:"seed"`
	Inference bool      `db:"inference"`
	CriticalP float64   `db:"critical_p"`
	RuntimeMs int64     `db:"runtime_ms"`
	StartedAt time.Time `db:"started_at"`
}

type pairRow struct {
	RunID       string        `db:"run_id"`
	Idx         int           `db:"idx"`
	ColA        int           `db:"col_a"`
	ColB        int           `db:"col_b"`
	R           float64       `db:"r"`
	T           float64       `db:"t"`
	BootP       float64       `db:"boot_p"`
	StudentP    float64       `db:"student_p"`
	CILower     float64       `db:"ci_lower"`
	CIUpper     float64       `db:"ci_upper"`
	Significant bool          `db:"significant"`
	Outliers    pq.Int64Array `db:"outliers"`
}

// GetRun loads a run with its results in original pair order.
func (r *RunRepository) GetRun(ctx context.Context, id core.RunID) (*stats.Run, error) {
	var row runRow
	err := r.db.GetContext(ctx, &row, `SELECT * FROM runs WHERE id = $1`, id.String())
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("run " + id.String())
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load run")
	}

	var pairRows []pairRow
	err = r.db.SelectContext(ctx, &pairRows, `SELECT * FROM pair_results WHERE run_id = $1 ORDER BY idx`, id.String())
	if err != nil {
		return nil, errors.Wrap(err, "failed to load pair results")
	}

	run := &stats.Run{
		ID: core.RunID(row.ID),
		N:  row.N,
		Options: stats.Options{
			Method:    stats.Method(row.Method),
			Alpha:     row.Alpha,
			NBoot:     row.NBoot,
			Seed:      row.Seed,
			Inference: row.Inference,
		},
		CriticalP: row.CriticalP,
		RuntimeMs: row.RuntimeMs,
		StartedAt: row.StartedAt,
	}
	for _, pr := range pairRows {
		res := stats.PairResult{
			Pair:        stats.Pair{A: pr.ColA, B: pr.ColB},
			R:           pr.R,
			T:           pr.T,
			BootP:       pr.BootP,
			StudentP:    pr.StudentP,
			CI:          stats.Interval{Lower: pr.CILower, Upper: pr.CIUpper},
			Significant: pr.Significant,
		}
		for _, o := range pr.Outliers {
			res.Outliers = append(res.Outliers, int(o))
		}
		run.Results = append(run.Results, res)
		run.Options.Pairs = append(run.Options.Pairs, res.Pair)
	}
	return run, nil
}
