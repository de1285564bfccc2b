package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/coalwatch/coalwatch/internal/pipeline"
)

// RefreshRun is one archived refresh run. The archive is a flat log of run
// summaries, not a time-series store: the snapshot itself lives in the blob
// store and is overwritten each run.
type RefreshRun struct {
	ID              int64     `db:"id" json:"id"`
	RanAt           time.Time `db:"ran_at" json:"ranAt"`
	FacilityCount   int       `db:"facility_count" json:"facilityCount"`
	UnitCount       int       `db:"unit_count" json:"unitCount"`
	ActiveUnitCount int       `db:"active_unit_count" json:"activeUnitCount"`
	CurrentPowerMW  float64   `db:"current_power_mw" json:"currentPowerMw"`
	SnapshotURL     string    `db:"snapshot_url" json:"snapshotUrl"`
}

type Repos struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Repos { return &Repos{db: db} }

const schema = `
CREATE TABLE IF NOT EXISTS refresh_runs (
	id BIGSERIAL PRIMARY KEY,
	ran_at TIMESTAMPTZ NOT NULL,
	facility_count INT NOT NULL,
	unit_count INT NOT NULL,
	active_unit_count INT NOT NULL,
	current_power_mw DOUBLE PRECISION NOT NULL,
	snapshot_url TEXT NOT NULL
)`

// EnsureSchema creates the run-history table when missing.
func (r *Repos) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, schema)
	return err
}

// RecordRun archives one refresh run; it satisfies pipeline.RunRecorder.
func (r *Repos) RecordRun(ctx context.Context, s pipeline.RunSummary) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO refresh_runs(ran_at, facility_count, unit_count, active_unit_count, current_power_mw, snapshot_url)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		s.RanAt, s.FacilityCount, s.UnitCount, s.ActiveUnitCount, s.CurrentPowerMW, s.SnapshotURL)
	return err
}

// RecentRuns lists the most recent archived runs, newest first.
func (r *Repos) RecentRuns(ctx context.Context, limit int) ([]RefreshRun, error) {
	var out []RefreshRun
	err := r.db.SelectContext(ctx, &out,
		`SELECT id, ran_at, facility_count, unit_count, active_unit_count, current_power_mw, snapshot_url
		 FROM refresh_runs ORDER BY ran_at DESC LIMIT $1`, limit)
	return out, err
}
