package report

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"soldage-iot-backend/internal/telemetry"
)

func TestBuildReportEndToEnd(t *testing.T) {
	readings := []telemetry.ReadingRecord{
		arcReading("M1", 3, true),
		arcReading("M1", 2, false),
		arcReading("M1", 1, true),
		arcReading("M1", 0, true),
	}
	sel := telemetry.VariableSelector{Name: "arc_status"}
	reports, err := BuildReport(context.Background(), readings, "M1", []telemetry.VariableSelector{sel})
	if err != nil {
		t.Fatalf("BuildReport: %v", err)
	}
	entry := reports[0]
	labels, values := entry.ChartSeries()
	if want := []string{"1.0", "1.0", "0.0", "1.0"}; !reflect.DeepEqual(values, want) {
		t.Fatalf("expected %v, got %v", want, values)
	}
	if labels[0] != "01/02/2024 10:00:00" {
		t.Fatalf("unexpected first label %s", labels[0])
	}
	if !entry.IsArc || entry.ArcDuration != 2*time.Second {
		t.Fatalf("expected 2s arc time, got %s (arc=%v)", entry.ArcDuration, entry.IsArc)
	}
	if entry.ArcDurationText() != "00:00:02" {
		t.Fatalf("unexpected arc text %s", entry.ArcDurationText())
	}
	if entry.Variable.Label != "Status do Arco" {
		t.Fatalf("expected catalog label, got %q", entry.Variable.Label)
	}
	row := entry.Rows[2]
	if row.Machine != "SOLD-M1" || row.Value != "0.0" || row.Variable != "Status do Arco" {
		t.Fatalf("unexpected row %+v", row)
	}
}

func TestBuildReportPreservesSelectorOrder(t *testing.T) {
	readings := []telemetry.ReadingRecord{
		{MachineID: "M1", Timestamp: at(0), GasFlow: 12, WeldingVoltage: 24},
		{MachineID: "M1", Timestamp: at(1), GasFlow: 13, WeldingVoltage: 25},
	}
	selectors := []telemetry.VariableSelector{
		{Name: "weldingVoltage", Label: "V"},
		{Name: "arcStatus", Label: "Arc"},
		{Name: "gasFlow", Label: "Gas"},
	}
	for _, workers := range []int{1, 3} {
		reports, err := BuildReport(context.Background(), readings, "M1", selectors, WithWorkers(workers))
		if err != nil {
			t.Fatalf("BuildReport: %v", err)
		}
		if len(reports) != len(selectors) {
			t.Fatalf("expected %d entries, got %d", len(selectors), len(reports))
		}
		for i, sel := range selectors {
			if reports[i].Variable.Name != sel.Name || reports[i].Variable.Label != sel.Label {
				t.Fatalf("entry %d: expected %s, got %s", i, sel.Name, reports[i].Variable.Name)
			}
		}
	}
}

func TestBuildReportEmptyReadings(t *testing.T) {
	selectors := []telemetry.VariableSelector{{Name: "arcStatus"}, {Name: "currentL1"}}
	reports, err := BuildReport(context.Background(), nil, "M1", selectors)
	if err != nil {
		t.Fatalf("BuildReport: %v", err)
	}
	for i, r := range reports {
		if r.Failed() {
			t.Fatalf("entry %d failed: %v", i, r.Err)
		}
		if len(r.Points) != 0 || r.ArcDuration != 0 {
			t.Fatalf("entry %d: expected empty series", i)
		}
	}
	if reports[0].ArcDurationText() != "00:00:00" {
		t.Fatalf("expected zero arc text, got %s", reports[0].ArcDurationText())
	}
}

func TestBuildReportUnknownVariableFailsOnlyItsEntry(t *testing.T) {
	readings := []telemetry.ReadingRecord{arcReading("M1", 0, true), arcReading("M1", 4, false)}
	selectors := []telemetry.VariableSelector{{Name: "arcStatus"}, {Name: "torque"}, {Name: "wireSpeed"}}
	reports, err := BuildReport(context.Background(), readings, "M1", selectors)
	if err != nil {
		t.Fatalf("BuildReport: %v", err)
	}
	if !errors.Is(reports[1].Err, telemetry.ErrUnknownVariable) {
		t.Fatalf("expected unknown variable on entry 1, got %v", reports[1].Err)
	}
	if reports[0].Failed() || reports[2].Failed() {
		t.Fatalf("sibling entries should succeed")
	}
	if reports[0].ArcDuration != 4*time.Second {
		t.Fatalf("expected 4s arc time, got %s", reports[0].ArcDuration)
	}
	if len(reports[2].Points) != 2 {
		t.Fatalf("expected 2 wire speed points, got %d", len(reports[2].Points))
	}
}

func TestBuildReportScopesToMachine(t *testing.T) {
	readings := []telemetry.ReadingRecord{
		arcReading("M1", 0, true),
		arcReading("M2", 1, false),
		arcReading("M1", 5, false),
	}
	reports, err := BuildReport(context.Background(), readings, "M1", []telemetry.VariableSelector{{Name: "arcStatus"}})
	if err != nil {
		t.Fatalf("BuildReport: %v", err)
	}
	if len(reports[0].Points) != 2 || reports[0].ArcDuration != 5*time.Second {
		t.Fatalf("expected M1 only, got %d points and %s", len(reports[0].Points), reports[0].ArcDuration)
	}
}

func TestBuildReportCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := BuildReport(ctx, nil, "M1", []telemetry.VariableSelector{{Name: "arcStatus"}})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestBuildVariableRendersInLocation(t *testing.T) {
	readings := []telemetry.ReadingRecord{arcReading("M1", 0, true), arcReading("M1", 1, false)}
	brt := time.FixedZone("BRT", -3*60*60)

	entry := BuildVariable(readings, "M1", telemetry.VariableSelector{Name: "arcStatus"}, WithLocation(brt))
	if entry.Rows[0].Moment != "01/02/2024 07:00:00" {
		t.Fatalf("expected moment in BRT, got %s", entry.Rows[0].Moment)
	}
	labels, _ := entry.ChartSeries()
	if labels[1] != "01/02/2024 07:00:01" {
		t.Fatalf("expected label in BRT, got %s", labels[1])
	}
	if !entry.Rows[0].Timestamp.Equal(at(0)) || entry.Rows[0].Timestamp.Location() != time.UTC {
		t.Fatalf("timestamps must stay untouched, got %s", entry.Rows[0].Timestamp)
	}

	utc := BuildVariable(readings, "M1", telemetry.VariableSelector{Name: "arcStatus"})
	if utc.Rows[0].Moment != "01/02/2024 10:00:00" {
		t.Fatalf("expected UTC moment by default, got %s", utc.Rows[0].Moment)
	}
}
