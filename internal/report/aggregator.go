package report

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"soldage-iot-backend/internal/telemetry"
)

const defaultWorkers = 4

// ReportRow is the tabular view of one projected reading.
type ReportRow struct {
	Timestamp time.Time `json:"timestamp"`
	Moment    string    `json:"moment"`
	Machine   string    `json:"machine"`
	Variable  string    `json:"variable"`
	Value     string    `json:"value"`
}

// VariableReport is the result for one selector. Err is set when the entry
// itself failed; sibling entries are unaffected.
type VariableReport struct {
	Variable    telemetry.VariableSelector `json:"variable"`
	MachineID   string                     `json:"machineId"`
	Points      []TimeSeriesPoint          `json:"points"`
	Rows        []ReportRow                `json:"rows"`
	IsArc       bool                       `json:"isArc"`
	ArcDuration time.Duration              `json:"arcDuration"`
	Err         error                      `json:"-"`

	loc *time.Location
}

func (v VariableReport) Failed() bool { return v.Err != nil }

// ChartSeries returns labels and one-decimal values for chart renderers.
func (v VariableReport) ChartSeries() ([]string, []string) {
	labels := make([]string, len(v.Points))
	values := make([]string, len(v.Points))
	for i, p := range v.Points {
		labels[i] = p.LabelIn(v.loc)
		values[i] = p.Text()
	}
	return labels, values
}

// ArcDurationText is the HH:MM:SS arc time, empty for non arc entries.
func (v VariableReport) ArcDurationText() string {
	if !v.IsArc {
		return ""
	}
	return FormatDuration(v.ArcDuration)
}

type buildOptions struct {
	workers int
	loc     *time.Location
}

type BuildOption func(*buildOptions)

// WithWorkers bounds how many entries are computed at once.
func WithWorkers(n int) BuildOption {
	return func(o *buildOptions) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithLocation sets the zone chart labels and table moments are rendered in.
// Timestamps themselves stay untouched.
func WithLocation(loc *time.Location) BuildOption {
	return func(o *buildOptions) {
		o.loc = loc
	}
}

func newBuildOptions(opts []BuildOption) buildOptions {
	options := buildOptions{workers: defaultWorkers}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

// BuildReport computes one VariableReport per selector. Entries are computed
// in parallel and returned in selector order. The only error returned is the
// context's; per-variable failures are carried on the entries.
func BuildReport(ctx context.Context, readings []telemetry.ReadingRecord, machineID string, selectors []telemetry.VariableSelector, opts ...BuildOption) ([]VariableReport, error) {
	options := newBuildOptions(opts)
	scoped := FilterByMachine(readings, machineID)
	reports := make([]VariableReport, len(selectors))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(options.workers)
	for i, sel := range selectors {
		i, sel := i, sel
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			reports[i] = buildVariable(scoped, machineID, sel, options.loc)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return reports, nil
}

// BuildVariable computes a single selection, as the live dashboard does.
func BuildVariable(readings []telemetry.ReadingRecord, machineID string, sel telemetry.VariableSelector, opts ...BuildOption) VariableReport {
	return buildVariable(FilterByMachine(readings, machineID), machineID, sel, newBuildOptions(opts).loc)
}

func buildVariable(scoped []telemetry.ReadingRecord, machineID string, sel telemetry.VariableSelector, loc *time.Location) VariableReport {
	sel = sel.WithDefaults()
	entry := VariableReport{
		Variable:  sel,
		MachineID: machineID,
		Points:    []TimeSeriesPoint{},
		Rows:      []ReportRow{},
		loc:       loc,
	}
	ch, err := sel.Channel()
	if err != nil {
		entry.Err = err
		return entry
	}
	items, err := project(scoped, ch)
	if err != nil {
		entry.Err = err
		return entry
	}
	entry.Points = make([]TimeSeriesPoint, len(items))
	entry.Rows = make([]ReportRow, len(items))
	for i, item := range items {
		entry.Points[i] = item.point
		entry.Rows[i] = ReportRow{
			Timestamp: item.point.Timestamp,
			Moment:    item.point.LabelIn(loc),
			Machine:   item.reading.MachineLabel(),
			Variable:  sel.Label,
			Value:     item.point.Text(),
		}
	}
	if ch == telemetry.ArcStatus {
		entry.IsArc = true
		entry.ArcDuration = TotalOnDuration(entry.Points)
	}
	return entry
}
