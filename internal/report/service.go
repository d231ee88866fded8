package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"soldage-iot-backend/internal/security"
	"soldage-iot-backend/internal/telemetry"
)

var ErrInvalidRequest = errors.New("invalid request")

// ReadingSource is the external reading-query collaborator.
type ReadingSource interface {
	FetchReadings(ctx context.Context, q telemetry.ReadingQuery) ([]telemetry.ReadingRecord, error)
}

type Observer interface {
	ObserveFetch(source string, elapsed time.Duration, err error)
	ObserveReport(entries, failed int, elapsed time.Duration)
}

type nopObserver struct{}

func (nopObserver) ObserveFetch(string, time.Duration, error) {}
func (nopObserver) ObserveReport(int, int, time.Duration)     {}

type ServiceConfig struct {
	Source     ReadingSource
	SourceName string
	Limits     security.Limits
	Logger     *slog.Logger
	Observer   Observer
	// Location renders labels; nil keeps UTC.
	Location   *time.Location
}

type Service struct {
	source     ReadingSource
	sourceName string
	limits     security.Limits
	logger     *slog.Logger
	observer   Observer
	location   *time.Location
}

func NewService(cfg ServiceConfig) *Service {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Observer == nil {
		cfg.Observer = nopObserver{}
	}
	if cfg.SourceName == "" {
		cfg.SourceName = "default"
	}
	return &Service{
		source:     cfg.Source,
		sourceName: cfg.SourceName,
		limits:     cfg.Limits,
		logger:     cfg.Logger,
		observer:   cfg.Observer,
		location:   cfg.Location,
	}
}

func (s *Service) SourceName() string { return s.sourceName }

type SeriesRequest struct {
	MachineID string
	Variable  telemetry.VariableSelector
	BeginAt   time.Time
	EndAt     time.Time
}

type ReportRequest struct {
	MachineID string
	Variables []telemetry.VariableSelector
	BeginAt   time.Time
	EndAt     time.Time
}

// Report is a generated multi-variable report.
type Report struct {
	MachineID   string                   `json:"machineId"`
	BeginAt     time.Time                `json:"beginAt"`
	EndAt       time.Time                `json:"endAt"`
	GeneratedAt time.Time                `json:"generatedAt"`
	Entries     []VariableReport         `json:"entries"`
	Latest      *telemetry.ReadingRecord `json:"latest,omitempty"`
}

func (r Report) Failed() int {
	n := 0
	for _, e := range r.Entries {
		if e.Failed() {
			n++
		}
	}
	return n
}

// ArcDuration sums the arc time of every arc-status entry.
func (r Report) ArcDuration() time.Duration {
	var total time.Duration
	for _, e := range r.Entries {
		if e.IsArc {
			total += e.ArcDuration
		}
	}
	return total
}

func (r Report) VariableNames() []string {
	names := make([]string, len(r.Entries))
	for i, e := range r.Entries {
		names[i] = e.Variable.Name
	}
	return names
}

// Series builds the live dashboard view of one variable.
func (s *Service) Series(ctx context.Context, req SeriesRequest) (VariableReport, error) {
	if err := s.validate(req.MachineID, req.BeginAt, req.EndAt); err != nil {
		return VariableReport{}, err
	}
	if _, err := req.Variable.Channel(); err != nil {
		return VariableReport{}, err
	}
	readings, err := s.fetch(ctx, req.MachineID, req.BeginAt, req.EndAt)
	if err != nil {
		return VariableReport{}, err
	}
	entry := BuildVariable(readings, req.MachineID, req.Variable, WithLocation(s.location))
	if entry.Err != nil {
		return VariableReport{}, entry.Err
	}
	return entry, nil
}

// Report builds every requested variable over one fetch of the window.
func (s *Service) Report(ctx context.Context, req ReportRequest) (Report, error) {
	if err := s.validate(req.MachineID, req.BeginAt, req.EndAt); err != nil {
		return Report{}, err
	}
	if len(req.Variables) == 0 {
		return Report{}, fmt.Errorf("%w: no variables selected", ErrInvalidRequest)
	}
	if s.limits.MaxVariables > 0 && len(req.Variables) > s.limits.MaxVariables {
		return Report{}, fmt.Errorf("%w: %d variables exceeds limit %d", ErrInvalidRequest, len(req.Variables), s.limits.MaxVariables)
	}
	start := time.Now()
	readings, err := s.fetch(ctx, req.MachineID, req.BeginAt, req.EndAt)
	if err != nil {
		return Report{}, err
	}
	entries, err := BuildReport(ctx, readings, req.MachineID, req.Variables, WithWorkers(s.limits.ReportWorkers), WithLocation(s.location))
	if err != nil {
		return Report{}, fmt.Errorf("build report: %w", err)
	}
	rep := Report{
		MachineID:   req.MachineID,
		BeginAt:     req.BeginAt,
		EndAt:       req.EndAt,
		GeneratedAt: time.Now().UTC(),
		Entries:     entries,
	}
	if latest, ok := LatestReading(readings, req.MachineID); ok {
		rep.Latest = &latest
	}
	failed := rep.Failed()
	for _, e := range entries {
		if e.Err != nil {
			s.logger.Warn("report entry failed", "machine_id", req.MachineID, "variable", e.Variable.Name, "error", e.Err)
		}
	}
	s.observer.ObserveReport(len(entries), failed, time.Since(start))
	return rep, nil
}

// Latest returns the newest reading of a machine inside the window, for the
// dashboard reading panel.
func (s *Service) Latest(ctx context.Context, machineID string, beginAt, endAt time.Time) (telemetry.ReadingRecord, bool, error) {
	if err := s.validate(machineID, beginAt, endAt); err != nil {
		return telemetry.ReadingRecord{}, false, err
	}
	readings, err := s.fetch(ctx, machineID, beginAt, endAt)
	if err != nil {
		return telemetry.ReadingRecord{}, false, err
	}
	latest, ok := LatestReading(readings, machineID)
	return latest, ok, nil
}

func (s *Service) validate(machineID string, beginAt, endAt time.Time) error {
	if err := telemetry.ValidateRange(beginAt, endAt); err != nil {
		return err
	}
	if machineID != "" && !security.IsSafeMachineID(machineID) {
		return fmt.Errorf("%w: machine id %q", ErrInvalidRequest, machineID)
	}
	if !s.limits.AllowsWindow(endAt.Sub(beginAt)) {
		return fmt.Errorf("%w: window exceeds %s", ErrInvalidRequest, s.limits.MaxWindow)
	}
	return nil
}

func (s *Service) fetch(ctx context.Context, machineID string, beginAt, endAt time.Time) ([]telemetry.ReadingRecord, error) {
	if s.source == nil {
		return nil, telemetry.Unavailable(s.sourceName, errors.New("no reading source configured"))
	}
	fetchCtx := ctx
	if s.limits.MaxQueryDuration > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, s.limits.MaxQueryDuration)
		defer cancel()
	}
	// one row over the cap lets a limit-honouring source reveal truncation
	limit := 0
	if s.limits.MaxRows > 0 {
		limit = s.limits.MaxRows + 1
	}
	query := telemetry.ReadingQuery{MachineID: machineID, BeginAt: beginAt, EndAt: endAt, Limit: limit}

	start := time.Now()
	readings, err := s.source.FetchReadings(fetchCtx, query)
	if err == nil {
		err = fetchCtx.Err()
	}
	elapsed := time.Since(start)
	s.observer.ObserveFetch(s.sourceName, elapsed, err)
	if err != nil {
		s.logger.Error("fetch readings failed",
			"source", s.sourceName,
			"machine_id", machineID,
			"duration_ms", elapsed.Milliseconds(),
			"error", err,
		)
		return nil, telemetry.Unavailable(s.sourceName, err)
	}
	if s.limits.MaxRows > 0 && len(readings) > s.limits.MaxRows {
		return nil, fmt.Errorf("%w: %d readings exceeds limit %d, narrow the window", ErrInvalidRequest, len(readings), s.limits.MaxRows)
	}
	return FilterReadings(readings, machineID, beginAt, endAt)
}

// ParseVariables turns a comma separated list into catalog selectors.
// Unknown names are kept so they fail on their own report entry.
func ParseVariables(list string) []telemetry.VariableSelector {
	var out []telemetry.VariableSelector
	for _, name := range strings.Split(list, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		out = append(out, telemetry.VariableSelector{Name: name}.WithDefaults())
	}
	return out
}
