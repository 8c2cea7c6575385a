package exporter

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datawash/pkg/contracts/domain"
)

func sampleTable() *domain.Table {
	return &domain.Table{
		Columns: []string{"name", "score"},
		Rows: []domain.Row{
			{"name": domain.StringValue("Ada"), "score": domain.IntValue(10)},
			{"name": domain.StringValue("Bo"), "score": domain.FloatValue(7.5)},
			{"name": domain.StringValue("Cy"), "score": domain.NullValue()},
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer

	err := WriteCSV(&buf, sampleTable(), CSVOptions{})
	require.NoError(t, err)

	assert.Equal(t, "name,score\nAda,10\nBo,7.5\nCy,\n", buf.String())
}

func TestWriteCSVWithBOM(t *testing.T) {
	var buf bytes.Buffer

	err := WriteCSV(&buf, sampleTable(), CSVOptions{BOM: true})
	require.NoError(t, err)

	out := buf.Bytes()
	require.True(t, bytes.HasPrefix(out, utf8BOM))
	assert.True(t, strings.HasPrefix(string(out[len(utf8BOM):]), "name,score\n"))
}

func TestWriteCSVQuotesSpecialCells(t *testing.T) {
	table := &domain.Table{
		Columns: []string{"note"},
		Rows:    []domain.Row{{"note": domain.StringValue(`said "hi", left`)}},
	}
	var buf bytes.Buffer

	err := WriteCSV(&buf, table, CSVOptions{})
	require.NoError(t, err)

	assert.Equal(t, "note\n\"said \"\"hi\"\", left\"\n", buf.String())
}

func TestWriteCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "cleaned.csv")

	err := WriteCSVFile(path, sampleTable())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, utf8BOM))
	assert.Contains(t, string(data), "Ada,10")
}

func TestExportFilename(t *testing.T) {
	tests := []struct {
		name     string
		original string
		view     string
		format   string
		want     string
	}{
		{name: "csv", original: "sales.csv", view: "cleaned", format: "csv", want: "sales_cleaned.csv"},
		{name: "format change", original: "sales.xlsx", view: "cleaned", format: "csv", want: "sales_cleaned.csv"},
		{name: "raw view", original: "sales.csv", view: "raw", format: "xlsx", want: "sales_raw.xlsx"},
		{name: "path stripped", original: "uploads/2024/sales.csv", view: "cleaned", format: "csv", want: "sales_cleaned.csv"},
		{name: "empty base", original: ".csv", view: "cleaned", format: "csv", want: "dataset_cleaned.csv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExportFilename(tt.original, tt.view, tt.format))
		})
	}
}
