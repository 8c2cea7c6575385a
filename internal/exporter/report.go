package exporter

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"datawash/pkg/contracts/domain"
)

// WriteReport renders a human-readable summary of the dataset's cleaning
// run: input shape, per-stage counters, the inferred type tally, and the
// column renames. The dataset must have been processed.
func WriteReport(w io.Writer, ds *domain.Dataset) error {
	if ds.Stats == nil {
		return fmt.Errorf("dataset %d has no cleaning stats", ds.ID)
	}
	stats := ds.Stats

	var b strings.Builder
	b.WriteString("Dataset Cleaning Report\n")
	b.WriteString("=======================\n\n")

	fmt.Fprintf(&b, "File:      %s\n", ds.Filename)
	fmt.Fprintf(&b, "Format:    %s\n", ds.Format)
	fmt.Fprintf(&b, "Uploaded:  %s\n", ds.UploadedAt.Format("2006-01-02 15:04:05"))
	if ds.ProcessedAt != nil {
		fmt.Fprintf(&b, "Processed: %s\n", ds.ProcessedAt.Format("2006-01-02 15:04:05"))
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "Input\n")
	fmt.Fprintf(&b, "  Rows:    %d\n", stats.TotalRows)
	fmt.Fprintf(&b, "  Columns: %d\n\n", stats.TotalColumns)

	rowsOut := stats.TotalRows - stats.DuplicatesRemoved - stats.OutlierCount
	fmt.Fprintf(&b, "Cleaning\n")
	fmt.Fprintf(&b, "  Duplicates removed:   %d\n", stats.DuplicatesRemoved)
	fmt.Fprintf(&b, "  Missing values fixed: %d\n", stats.NullValuesFixed)
	fmt.Fprintf(&b, "  Outliers removed:     %d\n", stats.OutlierCount)
	fmt.Fprintf(&b, "  Rows remaining:       %d", rowsOut)
	if stats.TotalRows > 0 {
		removedPct := float64(stats.DuplicatesRemoved+stats.OutlierCount) / float64(stats.TotalRows) * 100
		fmt.Fprintf(&b, " (%s%% removed)", formatFloat(removedPct))
	}
	b.WriteString("\n\n")

	if len(stats.DataTypeSummary) > 0 {
		fmt.Fprintf(&b, "Column types\n")
		types := make([]string, 0, len(stats.DataTypeSummary))
		for name := range stats.DataTypeSummary {
			types = append(types, name)
		}
		sort.Strings(types)
		for _, name := range types {
			fmt.Fprintf(&b, "  %-8s %d\n", name+":", stats.DataTypeSummary[name])
		}
		b.WriteString("\n")
	}

	if len(stats.ColumnsRenamed) > 0 {
		fmt.Fprintf(&b, "Columns\n")
		for _, cr := range stats.ColumnsRenamed {
			fmt.Fprintf(&b, "  %q -> %s (%s)\n", cr.Original, cr.Cleaned, cr.Type)
		}
		b.WriteString("\n")
	}

	if ds.Options != nil {
		opts := ds.Options
		fmt.Fprintf(&b, "Options\n")
		fmt.Fprintf(&b, "  standardize_column_names: %t\n", opts.StandardizeColumnNames)
		fmt.Fprintf(&b, "  remove_outliers:          %t\n", opts.RemoveOutliers)
		fmt.Fprintf(&b, "  fix_data_types:           %t\n", opts.FixDataTypes)
		fmt.Fprintf(&b, "  missing_value_strategy:   %s\n", opts.MissingValueStrategy)
		if opts.MissingValueStrategy == domain.StrategyConstant {
			fmt.Fprintf(&b, "  constant_value:           %q\n", opts.ConstantValue)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
