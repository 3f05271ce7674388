// Command samplecsv writes a deterministic synthetic indicator table as
// CSV, for demos and test fixtures.
package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"econdata/internal/exporter"
	"econdata/internal/sample"
)

func main() {
	out := flag.String("out", "sample_indicators.csv", "output CSV path")
	months := flag.Int("months", 100, "number of monthly observations")
	start := flag.String("start", "2015-01-01", "first month (2006-01-02)")
	seed := flag.Int64("seed", 42, "random seed")
	flag.Parse()

	startDate, err := time.Parse("2006-01-02", *start)
	if err != nil {
		slog.Error("Invalid start date", "start", *start, "error", err)
		os.Exit(1)
	}

	table, err := sample.Generate(*months, startDate, *seed)
	if err != nil {
		slog.Error("Failed to generate sample data", "error", err)
		os.Exit(1)
	}

	if err := exporter.SaveTableCSV(*out, table, exporter.Options{}); err != nil {
		slog.Error("Failed to write CSV", "path", *out, "error", err)
		os.Exit(1)
	}

	slog.Info("Sample data written",
		slog.String("path", *out),
		slog.Int("rows", table.NumRows()))
}
