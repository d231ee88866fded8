package storage

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const defaultListLimit = 50

type Repository struct {
	Store *Store
}

func NewRepository(store *Store) *Repository {
	return &Repository{Store: store}
}

// CreateReportRun stores run and returns its id. A preset run.ID is kept so
// asynchronous requests can be tracked by the id handed to the caller.
func (r *Repository) CreateReportRun(ctx context.Context, run ReportRun) (string, error) {
	id := run.ID
	if id == "" {
		id = uuid.NewString()
	}
	if run.Variables == nil {
		run.Variables = []string{}
	}
	results := "[]"
	if len(run.Results) > 0 {
		results = string(run.Results)
	}
	_, err := r.Store.Pool.Exec(ctx, `
		INSERT INTO report_runs (id, machine_id, source, begin_at, end_at, variables, entries, failed_entries, arc_seconds, status, error, results, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12::jsonb,now())`,
		id, run.MachineID, run.Source, run.BeginAt, run.EndAt, run.Variables, run.Entries, run.FailedEntries, run.ArcSeconds, run.Status, run.Error, results,
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

const reportRunColumns = `id, machine_id, source, begin_at, end_at, variables, entries, failed_entries, arc_seconds, status, error, results::text, created_at`

func scanReportRun(row pgx.Row) (ReportRun, error) {
	var (
		run     ReportRun
		results string
	)
	err := row.Scan(&run.ID, &run.MachineID, &run.Source, &run.BeginAt, &run.EndAt, &run.Variables, &run.Entries, &run.FailedEntries, &run.ArcSeconds, &run.Status, &run.Error, &results, &run.CreatedAt)
	if err != nil {
		return run, err
	}
	if results != "" && results != "[]" {
		run.Results = json.RawMessage(results)
	}
	return run, nil
}

func (r *Repository) GetReportRun(ctx context.Context, id string) (ReportRun, error) {
	if _, err := uuid.Parse(id); err != nil {
		return ReportRun{}, ErrNotFound
	}
	row := r.Store.Pool.QueryRow(ctx, `SELECT `+reportRunColumns+` FROM report_runs WHERE id=$1`, id)
	run, err := scanReportRun(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return ReportRun{}, ErrNotFound
	}
	if err != nil {
		return ReportRun{}, err
	}
	return run, nil
}

// ListReportRuns returns the newest runs, optionally for one machine.
func (r *Repository) ListReportRuns(ctx context.Context, machineID string, limit int) ([]ReportRun, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := r.Store.Pool.Query(ctx, `
		SELECT `+reportRunColumns+`
		FROM report_runs
		WHERE ($1 = '' OR machine_id = $1)
		ORDER BY created_at DESC
		LIMIT $2`, machineID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	results := []ReportRun{}
	for rows.Next() {
		run, err := scanReportRun(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, run)
	}
	return results, rows.Err()
}
