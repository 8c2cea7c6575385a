package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"datawash/internal/cleaning"
	"datawash/internal/files"
	"datawash/pkg/contracts/domain"
)

func testOptions() domain.Options {
	return domain.Options{
		StandardizeColumnNames: true,
		MissingValueStrategy:   domain.StrategyMean,
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// resolveInput writes content to dir/name and resolves it the way main does.
func resolveInput(t *testing.T, dir, name, content string) files.FileInfo {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	found, err := files.NewDiscovery("").Resolve([]string{path})
	require.NoError(t, err)
	require.Len(t, found, 1)
	return found[0]
}

func TestProcessFileCSV(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")
	require.NoError(t, os.MkdirAll(outDir, 0755))

	input := resolveInput(t, dir, "scores.csv", "Name,Score\na,1\na,1\nb,\nc,3\n")
	logger := testLogger()
	cleaner := cleaning.NewCleaner(logger, nil)

	oc := processFile(context.Background(), logger, cleaner, input, testOptions(), outDir, domain.FormatCSV, true)
	require.NoError(t, oc.err)

	assert.Equal(t, 4, oc.stats.TotalRows)
	assert.Equal(t, 1, oc.stats.DuplicatesRemoved)
	assert.Equal(t, 1, oc.stats.NullValuesFixed)
	assert.Equal(t, 3, oc.rowsOut)
	assert.Equal(t, filepath.Join(outDir, "scores_cleaned.csv"), oc.outPath)

	out, err := os.ReadFile(oc.outPath)
	require.NoError(t, err)
	content := string(out)
	assert.Contains(t, content, "name,score")
	// The missing score is replaced with the column mean of 1 and 3.
	assert.Contains(t, content, "b,2")

	report, err := os.ReadFile(strings.TrimSuffix(oc.outPath, ".csv") + "_report.txt")
	require.NoError(t, err)
	assert.Contains(t, string(report), "Dataset Cleaning Report")
	assert.Contains(t, string(report), "scores.csv")
	assert.Contains(t, string(report), "Duplicates removed")
}

func TestProcessFileXLSX(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")
	require.NoError(t, os.MkdirAll(outDir, 0755))

	input := resolveInput(t, dir, "scores.csv", "Name,Score\na,1\nb,2\n")
	logger := testLogger()
	cleaner := cleaning.NewCleaner(logger, nil)

	oc := processFile(context.Background(), logger, cleaner, input, testOptions(), outDir, domain.FormatXLSX, false)
	require.NoError(t, oc.err)
	assert.Equal(t, filepath.Join(outDir, "scores_cleaned.xlsx"), oc.outPath)

	f, err := excelize.OpenFile(oc.outPath)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Data")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"name", "score"}, rows[0])
}

func TestProcessFileReadError(t *testing.T) {
	dir := t.TempDir()
	logger := testLogger()
	cleaner := cleaning.NewCleaner(logger, nil)

	missing := files.FileInfo{
		Path:   filepath.Join(dir, "missing.csv"),
		Name:   "missing.csv",
		Format: domain.FormatCSV,
	}

	oc := processFile(context.Background(), logger, cleaner, missing, testOptions(), dir, domain.FormatCSV, false)
	require.Error(t, oc.err)
	assert.Contains(t, oc.err.Error(), "read")
}

func TestProcessFileCleaningError(t *testing.T) {
	dir := t.TempDir()
	input := resolveInput(t, dir, "scores.csv", "Name,Score\na,\n")
	logger := testLogger()
	cleaner := cleaning.NewCleaner(logger, nil)

	opts := testOptions()
	opts.MissingValueStrategy = "drop"

	oc := processFile(context.Background(), logger, cleaner, input, opts, dir, domain.FormatCSV, false)
	require.Error(t, oc.err)
	assert.True(t, errors.Is(oc.err, cleaning.ErrUnsupportedStrategy))
}

func TestLatestOnly(t *testing.T) {
	now := time.Now()
	inputs := []files.FileInfo{
		{Name: "old.csv", ModTime: now.Add(-time.Hour)},
		{Name: "new.csv", ModTime: now},
		{Name: "mid.csv", ModTime: now.Add(-time.Minute)},
	}

	got := latestOnly(inputs)
	require.Len(t, got, 1)
	assert.Equal(t, "new.csv", got[0].Name)

	assert.Empty(t, latestOnly(nil))
}

func TestValidateOptions(t *testing.T) {
	tests := []struct {
		name    string
		opts    domain.Options
		wantErr string
	}{
		{
			name: "mean",
			opts: domain.Options{MissingValueStrategy: domain.StrategyMean},
		},
		{
			name: "constant with value",
			opts: domain.Options{MissingValueStrategy: domain.StrategyConstant, ConstantValue: "n/a"},
		},
		{
			name:    "constant without value",
			opts:    domain.Options{MissingValueStrategy: domain.StrategyConstant},
			wantErr: "-constant is required",
		},
		{
			name:    "unknown strategy",
			opts:    domain.Options{MissingValueStrategy: "drop"},
			wantErr: "must be one of",
		},
		{
			name:    "empty strategy",
			opts:    domain.Options{},
			wantErr: "is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateOptions(tt.opts)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
