// Command econfetch fetches a few indicators from FRED and the World
// Bank, merges them onto a shared date axis and writes the result as CSV.
// It exits 0 when every requested series arrived and 1 otherwise.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"econdata/internal/config"
	"econdata/internal/exporter"
	"econdata/internal/fetch"
	"econdata/internal/fred"
	"econdata/internal/infrastructure"
	"econdata/internal/series"
	"econdata/internal/worldbank"
	"econdata/pkg/contracts/domain"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to a YAML config file (optional)")
	fredSeries := flag.String("fred", "GDP,UNRATE", "comma-separated FRED series identifiers")
	indicator := flag.String("indicator", "NY.GDP.MKTP.CD", "World Bank indicator code")
	countries := flag.String("countries", "USA,JPN", "comma-separated ISO3 country codes for the indicator")
	start := flag.String("start", "2010-01-01", "start date (2006-01-02)")
	end := flag.String("end", "", "end date (2006-01-02), empty for latest")
	fill := flag.String("fill", "none", "missing-value policy: none | ffill | interpolate | drop")
	out := flag.String("out", "", "output CSV path, empty writes to stdout")
	parallel := flag.Int("parallel", 4, "concurrent fetches per source")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Warn("Failed to load config, using defaults", "error", err)
		cfg = config.Default()
	}

	logger, closer, err := infrastructure.NewLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	} else if closer != nil {
		defer closer.Close()
	}

	r, err := parseRange(*start, *end)
	if err != nil {
		logger.Error("Invalid date range", slog.String("error", err.Error()))
		return 1
	}
	policy, err := series.ParseFillPolicy(*fill)
	if err != nil {
		logger.Error("Invalid fill policy", slog.String("error", err.Error()))
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = infrastructure.EnsureTraceID(ctx)

	logger.Info("Starting fetch",
		slog.String("fred_series", *fredSeries),
		slog.String("indicator", *indicator),
		slog.String("countries", *countries),
		slog.String("start", *start),
		slog.String("end", *end))

	var fetched []domain.Series
	failed := false

	fredIDs := splitList(*fredSeries)
	if len(fredIDs) > 0 {
		source := fetch.Parallel(fred.NewFromConfig(cfg, logger), *parallel)
		batch := source.FetchMultiple(ctx, fredIDs, r)
		fetched = append(fetched, batch.All()...)
		for _, id := range batch.FailedIDs() {
			logger.Error("FRED series failed",
				slog.String("series_id", id),
				slog.String("error", batch.Errors[id].Error()))
			failed = true
		}
	}

	if *indicator != "" {
		wb := worldbank.NewFromConfig(cfg, logger)
		byCountry, err := wb.FetchIndicator(ctx, *indicator, splitList(*countries), r)
		if err != nil {
			logger.Error("World Bank indicator failed",
				slog.String("indicator", *indicator),
				slog.String("error", err.Error()))
			failed = true
		}
		codes := make([]string, 0, len(byCountry))
		for code := range byCountry {
			codes = append(codes, code)
		}
		sort.Strings(codes)
		for _, code := range codes {
			fetched = append(fetched, *byCountry[code])
		}
	}

	if len(fetched) == 0 {
		logger.Error("Nothing fetched")
		return 1
	}

	table, err := series.Merge(fetched, policy)
	if err != nil {
		logger.Error("Merge failed", slog.String("error", err.Error()))
		return 1
	}

	if *out == "" {
		if err := exporter.WriteTableCSV(os.Stdout, table, exporter.Options{}); err != nil {
			logger.Error("Failed to write CSV", slog.String("error", err.Error()))
			return 1
		}
	} else {
		if err := exporter.SaveTableCSV(*out, table, exporter.Options{BOMPrefix: true}); err != nil {
			logger.Error("Failed to write CSV", slog.String("error", err.Error()))
			return 1
		}
	}

	logger.Info("Fetch complete",
		slog.Int("series", len(fetched)),
		slog.Int("rows", table.NumRows()),
		slog.Bool("partial", failed))

	if failed {
		return 1
	}
	return 0
}

func parseRange(start, end string) (fetch.Range, error) {
	var r fetch.Range
	if start != "" {
		t, err := time.Parse("2006-01-02", start)
		if err != nil {
			return r, fmt.Errorf("invalid start date %q: %w", start, err)
		}
		r.Start = t
	}
	if end != "" {
		t, err := time.Parse("2006-01-02", end)
		if err != nil {
			return r, fmt.Errorf("invalid end date %q: %w", end, err)
		}
		r.End = t
	}
	if !r.Start.IsZero() && !r.End.IsZero() && r.End.Before(r.Start) {
		return r, fmt.Errorf("end date %s precedes start date %s", end, start)
	}
	return r, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
