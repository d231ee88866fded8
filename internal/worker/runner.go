package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"soldage-iot-backend/internal/bus"
	"soldage-iot-backend/internal/report"
	"soldage-iot-backend/internal/security"
	"soldage-iot-backend/internal/source"
	"soldage-iot-backend/internal/storage"
	"soldage-iot-backend/internal/telemetry"
)

type SourceResolver interface {
	SourceFor(name string) (source.ReadingSource, string, error)
}

type RunStore interface {
	CreateReportRun(ctx context.Context, run storage.ReportRun) (string, error)
	GetReportRun(ctx context.Context, id string) (storage.ReportRun, error)
	ListReportRuns(ctx context.Context, machineID string, limit int) ([]storage.ReportRun, error)
}

type Publisher interface {
	Publish(subject string, payload any) error
}

// Job is one multi-variable report to build. ReportID is preset for
// asynchronous requests.
type Job struct {
	ReportID  string
	MachineID string
	Source    string
	Variables []telemetry.VariableSelector
	BeginAt   time.Time
	EndAt     time.Time
}

func JobFromEvent(evt bus.ReportRequested) Job {
	vars := make([]telemetry.VariableSelector, 0, len(evt.Variables))
	for _, v := range evt.Variables {
		vars = append(vars, v.WithDefaults())
	}
	return Job{
		ReportID:  evt.ReportID,
		MachineID: evt.MachineID,
		Source:    evt.Source,
		Variables: vars,
		BeginAt:   evt.BeginAt,
		EndAt:     evt.EndAt,
	}
}

// Runner builds reports, records the run and announces it.
type Runner struct {
	Sources          SourceResolver
	Runs             RunStore
	Bus              Publisher
	Limits           security.Limits
	Logger           *slog.Logger
	Observer         report.Observer
	GeneratedSubject string
	// Location renders report labels; nil keeps UTC.
	Location         *time.Location
}

// Service returns a report service bound to the named source.
func (r *Runner) Service(sourceName string) (*report.Service, error) {
	if r.Sources == nil {
		return nil, fmt.Errorf("%w: no reading sources configured", report.ErrInvalidRequest)
	}
	src, name, err := r.Sources.SourceFor(sourceName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", report.ErrInvalidRequest, err)
	}
	return report.NewService(report.ServiceConfig{
		Source:     src,
		SourceName: name,
		Limits:     r.Limits,
		Logger:     r.logger(),
		Observer:   r.Observer,
		Location:   r.Location,
	}), nil
}

func (r *Runner) Run(ctx context.Context, job Job) (report.Report, storage.ReportRun, error) {
	run := storage.ReportRun{
		ID:        job.ReportID,
		MachineID: job.MachineID,
		Source:    job.Source,
		BeginAt:   job.BeginAt,
		EndAt:     job.EndAt,
		Variables: selectorNames(job.Variables),
	}
	svc, err := r.Service(job.Source)
	if err != nil {
		return report.Report{}, r.finish(ctx, job, run, err), err
	}
	run.Source = svc.SourceName()
	rep, err := svc.Report(ctx, report.ReportRequest{
		MachineID: job.MachineID,
		Variables: job.Variables,
		BeginAt:   job.BeginAt,
		EndAt:     job.EndAt,
	})
	if err != nil {
		return report.Report{}, r.finish(ctx, job, run, err), err
	}
	run.Entries = len(rep.Entries)
	run.FailedEntries = rep.Failed()
	run.ArcSeconds = int64(rep.ArcDuration() / time.Second)
	results, err := json.Marshal(report.Views(rep.Entries))
	if err != nil {
		err = fmt.Errorf("encode report entries: %w", err)
		return report.Report{}, r.finish(ctx, job, run, err), err
	}
	run.Results = results
	return rep, r.finish(ctx, job, run, nil), nil
}

func (r *Runner) finish(ctx context.Context, job Job, run storage.ReportRun, runErr error) storage.ReportRun {
	run.Status = storage.RunStatusCompleted
	if runErr != nil {
		run.Status = storage.RunStatusFailed
		run.Error = runErr.Error()
	}
	logger := r.logger()
	// synchronous requests rejected up front leave no trace
	if runErr != nil && job.ReportID == "" && !errors.Is(runErr, telemetry.ErrDataUnavailable) {
		return run
	}
	if r.Runs != nil {
		id, err := r.Runs.CreateReportRun(ctx, run)
		if err != nil {
			logger.Error("record report run failed", slog.String("machine_id", run.MachineID), slog.String("error", err.Error()))
		} else {
			run.ID = id
		}
	}
	if r.Bus != nil {
		evt := bus.ReportGenerated{
			ReportID:      run.ID,
			MachineID:     run.MachineID,
			Status:        run.Status,
			Entries:       run.Entries,
			FailedEntries: run.FailedEntries,
			Error:         run.Error,
		}
		if runErr == nil {
			evt.ArcDuration = report.FormatDuration(time.Duration(run.ArcSeconds) * time.Second)
		}
		if err := r.Bus.Publish(r.generatedSubject(), evt); err != nil {
			logger.Error("publish report event failed", slog.String("report_id", run.ID), slog.String("error", err.Error()))
		}
	}
	return run
}

func (r *Runner) generatedSubject() string {
	if r.GeneratedSubject == "" {
		return bus.SubjectReportGenerated
	}
	return r.GeneratedSubject
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

func selectorNames(vars []telemetry.VariableSelector) []string {
	names := make([]string, len(vars))
	for i, v := range vars {
		names[i] = v.Name
	}
	return names
}
