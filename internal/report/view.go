package report

import (
	"errors"

	"soldage-iot-backend/internal/telemetry"
)

// EntryView is the rendered form of a VariableReport handed to chart, table
// and print consumers. It is also what report runs persist.
type EntryView struct {
	Variable    telemetry.VariableSelector `json:"variable"`
	Labels      []string                   `json:"labels"`
	Values      []string                   `json:"values"`
	Rows        []ReportRow                `json:"rows"`
	ArcDuration string                     `json:"arcDuration,omitempty"`
	Error       *EntryError                `json:"error,omitempty"`
}

type EntryError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (v VariableReport) View() EntryView {
	labels, values := v.ChartSeries()
	view := EntryView{
		Variable:    v.Variable,
		Labels:      labels,
		Values:      values,
		Rows:        v.Rows,
		ArcDuration: v.ArcDurationText(),
	}
	if v.Err != nil {
		view.Error = &EntryError{Code: entryErrorCode(v.Err), Message: v.Err.Error()}
	}
	return view
}

// Views renders entries in order.
func Views(entries []VariableReport) []EntryView {
	out := make([]EntryView, len(entries))
	for i, e := range entries {
		out[i] = e.View()
	}
	return out
}

func entryErrorCode(err error) string {
	if errors.Is(err, telemetry.ErrUnknownVariable) {
		return "UNKNOWN_VARIABLE"
	}
	return "INTERNAL"
}
