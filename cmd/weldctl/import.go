package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	dbconnector "soldage-iot-backend"
	"soldage-iot-backend/internal/source"
)

var importCmd = &cobra.Command{
	Use:   "import <readings.json>",
	Short: "Load readings exported from the upstream API into a local SQLite file",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	path := dbPath
	if path == "" {
		path = "readings.db"
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}
	readings, err := source.DecodeReadings(data)
	if err != nil {
		return err
	}

	db, err := dbconnector.OpenSQLite(path, "readings")
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	inserted, err := db.InsertReadings(ctx, readings)
	if err != nil {
		return fmt.Errorf("storing readings: %w", err)
	}
	fmt.Printf("Imported %d of %d readings into %s\n", inserted, len(readings), path)
	return nil
}
