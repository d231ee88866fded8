package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"soldage-iot-backend/internal/report"
	"soldage-iot-backend/internal/telemetry"
)

var seriesCmd = &cobra.Command{
	Use:   "series <machine-id> <variable>",
	Short: "Print one variable as a time series",
	Args:  cobra.ExactArgs(2),
	RunE:  runSeries,
}

func init() {
	rootCmd.AddCommand(seriesCmd)
}

func runSeries(cmd *cobra.Command, args []string) error {
	beginAt, endAt, err := parseWindow()
	if err != nil {
		return err
	}
	svc, cleanup, err := openService()
	if err != nil {
		return err
	}
	defer cleanup()

	entry, err := svc.Series(context.Background(), report.SeriesRequest{
		MachineID: args[0],
		Variable:  telemetry.VariableSelector{Name: args[1]}.WithDefaults(),
		BeginAt:   beginAt,
		EndAt:     endAt,
	})
	if err != nil {
		return err
	}
	printEntry(entry)
	return nil
}

func printEntry(entry report.VariableReport) {
	title := entry.Variable.Label
	if title == "" {
		title = entry.Variable.Name
	}
	if entry.Variable.Unit != "" {
		title += " (" + entry.Variable.Unit + ")"
	}
	fmt.Printf("\n%s:\n", title)
	if entry.Err != nil {
		fmt.Printf("  error: %v\n", entry.Err)
		return
	}
	if len(entry.Rows) == 0 {
		fmt.Println("  no readings in window")
		return
	}
	fmt.Println("----------------------------------------------------")
	fmt.Printf("%-20s  %-18s  %10s\n", "Moment", "Machine", "Value")
	fmt.Println("----------------------------------------------------")
	for _, row := range entry.Rows {
		fmt.Printf("%-20s  %-18s  %10s\n", row.Moment, row.Machine, row.Value)
	}
	fmt.Println("----------------------------------------------------")
	if entry.IsArc {
		fmt.Printf("Arc on: %s (%d samples)\n", entry.ArcDurationText(), len(entry.Rows))
		return
	}
	fmt.Printf("%d samples\n", len(entry.Rows))
}
