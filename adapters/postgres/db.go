package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"skipcorr/internal/errors"
)

// Connect opens and pings a postgres connection pool.
func Connect(ctx context.Context, url string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", url)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to postgres")
	}
	return db, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	n           INTEGER NOT NULL,
	method      TEXT NOT NULL,
	alpha       DOUBLE PRECISION NOT NULL,
	nboot       INTEGER NOT NULL,
	seed        BIGINT NOT NULL,
	inference   BOOLEAN NOT NULL DEFAULT FALSE,
	critical_p  DOUBLE PRECISION NOT NULL DEFAULT 0,
	runtime_ms  BIGINT NOT NULL DEFAULT 0,
	started_at  TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS pair_results (
	run_id      TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	idx         INTEGER NOT NULL,
	col_a       INTEGER NOT NULL,
	col_b       INTEGER NOT NULL,
	r           DOUBLE PRECISION,
	t           DOUBLE PRECISION,
	boot_p      DOUBLE PRECISION,
	student_p   DOUBLE PRECISION,
	ci_lower    DOUBLE PRECISION,
	ci_upper    DOUBLE PRECISION,
	significant BOOLEAN NOT NULL DEFAULT FALSE,
	outliers    BIGINT[],
	PRIMARY KEY (run_id, idx)
);
`

// Migrate creates the run tables if they do not exist.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return errors.Wrap(err, "failed to migrate run schema")
	}
	return nil
}
