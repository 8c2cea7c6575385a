// Command cleancsv cleans tabular files from the command line. It resolves
// the input arguments (paths, directories, glob patterns) into csv/xls/xlsx
// files, runs each through the cleaning pipeline, and writes the cleaned
// tables and optional reports to the output directory.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"datawash/internal/cleaning"
	"datawash/internal/config"
	"datawash/internal/exporter"
	"datawash/internal/files"
	"datawash/internal/infrastructure"
	"datawash/internal/reader"
	"datawash/internal/validation"
	"datawash/pkg/contracts"
	"datawash/pkg/contracts/domain"
)

// fileOutcome records one input file's run for the end-of-run summary.
type fileOutcome struct {
	input   files.FileInfo
	outPath string
	stats   domain.CleaningStats
	rowsOut int
	err     error
}

func main() {
	inFlag := flag.String("in", "", "comma-separated input files, directories, or glob patterns (positional arguments work too)")
	outDir := flag.String("out", "cleaned", "output directory for cleaned files")
	strategy := flag.String("strategy", domain.StrategyMean, "missing-value strategy: mean, median, mode, or constant")
	constant := flag.String("constant", "", "replacement value when -strategy is constant")
	outliers := flag.Bool("outliers", false, "remove IQR outlier rows from numeric columns")
	fixTypes := flag.Bool("fix-types", false, "coerce columns to their inferred types")
	noStandardize := flag.Bool("no-standardize", false, "keep original column headers")
	format := flag.String("format", domain.FormatCSV, "output format: csv or xlsx")
	report := flag.Bool("report", false, "write a cleaning report next to each output file")
	latest := flag.Bool("latest", false, "clean only the most recently modified input file")
	workers := flag.Int("workers", 4, "maximum number of files cleaned concurrently")
	verbose := flag.Bool("v", false, "enable debug logging")
	showVersion := flag.Bool("version", false, "print version information and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(contracts.GetFullVersionString())
		return
	}

	inputs := flag.Args()
	for _, part := range strings.Split(*inFlag, ",") {
		if part = strings.TrimSpace(part); part != "" {
			inputs = append(inputs, part)
		}
	}
	if len(inputs) == 0 {
		fmt.Fprintln(os.Stderr, "cleancsv: no inputs; pass file paths, directories, or glob patterns")
		flag.Usage()
		os.Exit(2)
	}

	opts := domain.Options{
		RemoveOutliers:         *outliers,
		FixDataTypes:           *fixTypes,
		StandardizeColumnNames: !*noStandardize,
		MissingValueStrategy:   *strategy,
		ConstantValue:          *constant,
	}
	if err := validateOptions(opts); err != nil {
		fmt.Fprintf(os.Stderr, "cleancsv: %v\n", err)
		os.Exit(2)
	}
	if *format != domain.FormatCSV && *format != domain.FormatXLSX {
		fmt.Fprintf(os.Stderr, "cleancsv: unsupported output format %q (want csv or xlsx)\n", *format)
		os.Exit(2)
	}
	if *workers < 1 {
		fmt.Fprintln(os.Stderr, "cleancsv: -workers must be at least 1")
		os.Exit(2)
	}

	level := "info"
	if *verbose {
		level = "debug"
	}
	logger, err := infrastructure.InitializeLogger(config.LoggingConfig{
		Level:  level,
		Format: "text",
		Output: "stdout",
	})
	if err != nil {
		slog.Error("Failed to initialize logger", slog.String("error", err.Error()))
		os.Exit(1)
	}

	discovery := files.NewDiscovery("")
	found, err := discovery.Resolve(inputs)
	if err != nil {
		logger.Error("Input resolution failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if *latest {
		found = latestOnly(found)
	}
	logger.Info("Resolved input files",
		slog.Int("count", len(found)),
		slog.String("output_dir", *outDir),
		slog.String("format", *format))
	fmt.Printf("Found %d input files\n", len(found))

	// Resolve only stats the inputs; open each one so permission problems
	// surface before any worker starts writing output.
	fileValidator := validation.NewFileValidator(logger)
	for _, f := range found {
		if err := fileValidator.ValidateFile(f.Path); err != nil {
			logger.Error("Input file is not usable",
				slog.String("file", f.Path),
				slog.String("error", err.Error()))
			os.Exit(1)
		}
	}
	if err := fileValidator.ValidateOutputDirectory(*outDir); err != nil {
		logger.Error("Output directory is not usable",
			slog.String("dir", *outDir),
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	cleaner := cleaning.NewCleaner(logger, nil)
	outcomes := make([]fileOutcome, len(found))
	start := time.Now()

	// Per-file failures land in the outcome slice so one bad file does not
	// abort the batch; the group is used only to bound concurrency.
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(*workers)
	for i, f := range found {
		g.Go(func() error {
			outcomes[i] = processFile(ctx, logger, cleaner, f, opts, *outDir, *format, *report)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Error("Cleaning aborted", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var processed, failed, rowsIn, rowsOut, duplicates, nulls, outlierRows int
	for _, oc := range outcomes {
		if oc.err != nil {
			failed++
			continue
		}
		processed++
		rowsIn += oc.stats.TotalRows
		rowsOut += oc.rowsOut
		duplicates += oc.stats.DuplicatesRemoved
		nulls += oc.stats.NullValuesFixed
		outlierRows += oc.stats.OutlierCount
	}

	logger.Info("Cleaning complete",
		slog.Int("files", len(found)),
		slog.Int("processed", processed),
		slog.Int("failed", failed),
		slog.Int("rows_in", rowsIn),
		slog.Int("rows_out", rowsOut),
		slog.Int("duplicates_removed", duplicates),
		slog.Int("null_values_fixed", nulls),
		slog.Int("outlier_rows_removed", outlierRows),
		slog.Duration("elapsed", time.Since(start).Round(time.Millisecond)))
	fmt.Printf("Processing complete: %d of %d files cleaned\n", processed, len(found))

	if failed > 0 {
		for _, oc := range outcomes {
			if oc.err != nil {
				fmt.Fprintf(os.Stderr, "  %s: %v\n", oc.input.Path, oc.err)
			}
		}
		os.Exit(1)
	}
}

// latestOnly narrows the resolved inputs to the most recently modified file.
func latestOnly(found []files.FileInfo) []files.FileInfo {
	newest, ok := files.GetLatestFile(found)
	if !ok {
		return found
	}
	return []files.FileInfo{newest}
}

// processFile runs the full pipeline for one input: read, clean, export,
// and optionally report. Each file gets its own trace ID so concurrent runs
// stay distinguishable in the logs.
func processFile(ctx context.Context, logger *slog.Logger, cleaner *cleaning.Cleaner, f files.FileInfo, opts domain.Options, outDir, format string, withReport bool) fileOutcome {
	ctx = infrastructure.EnsureTraceID(ctx)
	oc := fileOutcome{input: f}

	logger.InfoContext(ctx, "Processing file",
		slog.String("file", f.Path),
		slog.String("format", f.Format),
		slog.Int64("size_bytes", f.Size))

	table, err := reader.ReadFile(f.Path)
	if err != nil {
		oc.err = fmt.Errorf("read %s: %w", f.Path, err)
		logger.ErrorContext(ctx, "Failed to read file",
			slog.String("file", f.Path),
			slog.String("error", err.Error()))
		return oc
	}

	result, err := cleaner.Clean(ctx, table, opts)
	if err != nil {
		oc.err = fmt.Errorf("clean %s: %w", f.Path, err)
		logger.ErrorContext(ctx, "Cleaning failed",
			slog.String("file", f.Path),
			slog.String("error", err.Error()))
		return oc
	}
	oc.stats = result.Stats
	oc.rowsOut = result.Table.RowCount()

	outPath := filepath.Join(outDir, exporter.ExportFilename(f.Name, domain.ViewCleaned, format))
	if err := writeOutput(outPath, result.Table, format); err != nil {
		oc.err = fmt.Errorf("write %s: %w", outPath, err)
		logger.ErrorContext(ctx, "Failed to write output",
			slog.String("path", outPath),
			slog.String("error", err.Error()))
		return oc
	}
	oc.outPath = outPath

	if withReport {
		reportPath := strings.TrimSuffix(outPath, filepath.Ext(outPath)) + "_report.txt"
		if err := writeReport(reportPath, f, opts, result); err != nil {
			oc.err = fmt.Errorf("report %s: %w", reportPath, err)
			logger.ErrorContext(ctx, "Failed to write report",
				slog.String("path", reportPath),
				slog.String("error", err.Error()))
			return oc
		}
	}

	logger.InfoContext(ctx, "File cleaned",
		slog.String("file", f.Path),
		slog.String("output", outPath),
		slog.Int("rows_in", oc.stats.TotalRows),
		slog.Int("rows_out", oc.rowsOut),
		slog.Int("duplicates_removed", oc.stats.DuplicatesRemoved),
		slog.Int("null_values_fixed", oc.stats.NullValuesFixed),
		slog.Int("outliers_removed", oc.stats.OutlierCount))
	return oc
}

// writeOutput serializes the cleaned table in the requested format.
func writeOutput(path string, t *domain.Table, format string) error {
	if format == domain.FormatCSV {
		return exporter.WriteCSVFile(path, t)
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := exporter.WriteXLSX(file, t, "Data"); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// writeReport renders the same report the HTTP report endpoint serves,
// backed by a transient dataset record for this run.
func writeReport(path string, f files.FileInfo, opts domain.Options, result *cleaning.Result) error {
	now := time.Now()
	ds := &domain.Dataset{
		Filename:    f.Name,
		Format:      f.Format,
		SizeBytes:   f.Size,
		UploadedAt:  f.ModTime,
		Stats:       &result.Stats,
		Options:     &opts,
		IsProcessed: true,
		ProcessedAt: &now,
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := exporter.WriteReport(file, ds); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// validateOptions checks the cleaning options against their struct tags and
// translates the first violation into a flag-style message.
func validateOptions(opts domain.Options) error {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	err := v.Struct(opts)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		e := verrs[0]
		switch e.Tag() {
		case "oneof":
			return fmt.Errorf("%s must be one of: %s", e.Field(), strings.ReplaceAll(e.Param(), " ", ", "))
		case "required_if":
			return fmt.Errorf("-constant is required when -strategy is constant")
		case "required":
			return fmt.Errorf("%s is required", e.Field())
		default:
			return fmt.Errorf("%s failed %s validation", e.Field(), e.Tag())
		}
	}
	return err
}
