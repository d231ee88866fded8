package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"soldage-iot-backend/internal/bus"
	"soldage-iot-backend/internal/report"
	"soldage-iot-backend/internal/security"
	"soldage-iot-backend/internal/storage"
	"soldage-iot-backend/internal/telemetry"
	"soldage-iot-backend/internal/worker"
)

type Handler struct {
	Runner         *worker.Runner
	Runs           worker.RunStore
	Bus            worker.Publisher
	Metrics        http.Handler
	Timeout        time.Duration
	RequestSubject string
	Logger         *slog.Logger
}

type errorResponse struct {
	Ok        bool   `json:"ok"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable,omitempty"`
}

type reportRequest struct {
	Variables []telemetry.VariableSelector `json:"variables"`
	BeginDate string                       `json:"begin_date"`
	FinalDate string                       `json:"final_date"`
	Source    string                       `json:"source"`
	Async     bool                         `json:"async"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.handleHealth)
	r.Get("/variables", h.handleVariables)
	r.Route("/machines/{machineID}", func(r chi.Router) {
		r.Get("/series", h.handleSeries)
		r.Get("/latest", h.handleLatest)
		r.Post("/reports", h.handleReportCreate)
	})
	r.Route("/reports", func(r chi.Router) {
		r.Get("/", h.handleReportList)
		r.Get("/{id}", h.handleReportGet)
	})
	if h.Metrics != nil {
		r.Handle("/metrics", h.Metrics)
	}
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (h *Handler) handleVariables(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "variables": telemetry.Catalog()})
}

func (h *Handler) handleSeries(w http.ResponseWriter, r *http.Request) {
	machineID := chi.URLParam(r, "machineID")
	query := r.URL.Query()
	beginAt, endAt, err := parseWindow(query.Get("begin_date"), query.Get("final_date"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	name := query.Get("variable")
	if strings.TrimSpace(name) == "" {
		h.writeError(w, fmt.Errorf("%w: variable is required", report.ErrInvalidRequest))
		return
	}
	svc, err := h.Runner.Service(query.Get("source"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	ctx, cancel := h.context(r)
	defer cancel()
	entry, err := svc.Series(ctx, report.SeriesRequest{
		MachineID: machineID,
		Variable:  telemetry.VariableSelector{Name: name}.WithDefaults(),
		BeginAt:   beginAt,
		EndAt:     endAt,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "machineId": machineID, "series": entry.View()})
}

func (h *Handler) handleLatest(w http.ResponseWriter, r *http.Request) {
	machineID := chi.URLParam(r, "machineID")
	query := r.URL.Query()
	beginAt, endAt, err := parseWindow(query.Get("begin_date"), query.Get("final_date"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	svc, err := h.Runner.Service(query.Get("source"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	ctx, cancel := h.context(r)
	defer cancel()
	latest, ok, err := svc.Latest(ctx, machineID, beginAt, endAt)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "reading": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "reading": latest})
}

func (h *Handler) handleReportCreate(w http.ResponseWriter, r *http.Request) {
	machineID := chi.URLParam(r, "machineID")
	var req reportRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Ok: false, Code: "INVALID_REQUEST", Message: err.Error()})
		return
	}
	beginAt, endAt, err := parseWindow(req.BeginDate, req.FinalDate)
	if err != nil {
		h.writeError(w, err)
		return
	}
	vars := make([]telemetry.VariableSelector, len(req.Variables))
	for i, v := range req.Variables {
		vars[i] = v.WithDefaults()
	}

	if req.Async {
		h.enqueueReport(w, machineID, req.Source, vars, beginAt, endAt)
		return
	}

	ctx, cancel := h.context(r)
	defer cancel()
	rep, run, err := h.Runner.Run(ctx, worker.Job{
		MachineID: machineID,
		Source:    req.Source,
		Variables: vars,
		BeginAt:   beginAt,
		EndAt:     endAt,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":          true,
		"reportId":    run.ID,
		"machineId":   rep.MachineID,
		"beginAt":     rep.BeginAt,
		"endAt":       rep.EndAt,
		"generatedAt": rep.GeneratedAt,
		"entries":     report.Views(rep.Entries),
		"latest":      rep.Latest,
	})
}

func (h *Handler) enqueueReport(w http.ResponseWriter, machineID, source string, vars []telemetry.VariableSelector, beginAt, endAt time.Time) {
	if h.Bus == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Ok: false, Code: "ASYNC_UNAVAILABLE", Message: "asynchronous reports are not configured", Retryable: false})
		return
	}
	if err := telemetry.ValidateRange(beginAt, endAt); err != nil {
		h.writeError(w, err)
		return
	}
	if !security.IsSafeMachineID(machineID) {
		h.writeError(w, fmt.Errorf("%w: invalid machine id", report.ErrInvalidRequest))
		return
	}
	if len(vars) == 0 {
		h.writeError(w, fmt.Errorf("%w: at least one variable is required", report.ErrInvalidRequest))
		return
	}
	evt := bus.ReportRequested{
		ReportID:  uuid.NewString(),
		MachineID: machineID,
		Source:    source,
		Variables: vars,
		BeginAt:   beginAt,
		EndAt:     endAt,
	}
	subject := h.RequestSubject
	if subject == "" {
		subject = bus.SubjectReportRequested
	}
	if err := h.Bus.Publish(subject, evt); err != nil {
		h.logger().Error("publish report request failed", slog.String("machine_id", machineID), slog.String("error", err.Error()))
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Ok: false, Code: "ASYNC_UNAVAILABLE", Message: "failed to queue report", Retryable: true})
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"ok": true, "reportId": evt.ReportID})
}

func (h *Handler) handleReportList(w http.ResponseWriter, r *http.Request) {
	if h.Runs == nil {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "reports": []storage.ReportRun{}})
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			h.writeError(w, fmt.Errorf("%w: limit must be a positive integer", report.ErrInvalidRequest))
			return
		}
		limit = parsed
	}
	ctx, cancel := h.context(r)
	defer cancel()
	runs, err := h.Runs.ListReportRuns(ctx, r.URL.Query().Get("machine_id"), limit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "reports": runs})
}

func (h *Handler) handleReportGet(w http.ResponseWriter, r *http.Request) {
	if h.Runs == nil {
		h.writeError(w, storage.ErrNotFound)
		return
	}
	ctx, cancel := h.context(r)
	defer cancel()
	run, err := h.Runs.GetReportRun(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "report": run})
}

func (h *Handler) context(r *http.Request) (context.Context, context.CancelFunc) {
	if h.Timeout <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), h.Timeout)
}

func (h *Handler) logger() *slog.Logger {
	if h.Logger == nil {
		return slog.Default()
	}
	return h.Logger
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, telemetry.ErrInvalidRange):
		return "INVALID_RANGE"
	case errors.Is(err, telemetry.ErrUnknownVariable):
		return "UNKNOWN_VARIABLE"
	case errors.Is(err, telemetry.ErrDataUnavailable):
		return "DATA_UNAVAILABLE"
	case errors.Is(err, report.ErrInvalidRequest):
		return "INVALID_REQUEST"
	case errors.Is(err, storage.ErrNotFound):
		return "NOT_FOUND"
	default:
		return "INTERNAL"
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	code := errorCode(err)
	switch code {
	case "INVALID_RANGE", "UNKNOWN_VARIABLE", "INVALID_REQUEST":
		writeJSON(w, http.StatusBadRequest, errorResponse{Ok: false, Code: code, Message: err.Error()})
	case "DATA_UNAVAILABLE":
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Ok: false, Code: code, Message: err.Error(), Retryable: true})
	case "NOT_FOUND":
		writeJSON(w, http.StatusNotFound, errorResponse{Ok: false, Code: code, Message: "not found"})
	default:
		h.logger().Error("request failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Ok: false, Code: code, Message: "internal error"})
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
