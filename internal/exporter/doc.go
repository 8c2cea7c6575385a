// Package exporter serializes cleaned datasets for download.
//
// This package contains three main components:
//
// CSV writing: table serialization with an optional UTF-8 BOM so Excel
// recognizes the encoding, plus a file-target convenience for the CLI.
//
// XLSX writing: spreadsheet export through excelize, with typed cells for
// numeric values.
//
// Report writing: a human-readable text summary of a dataset's cleaning
// run, covering counters, inferred column types, and renames.
//
// Example usage:
//
//	var buf bytes.Buffer
//	err := exporter.WriteCSV(&buf, table, exporter.CSVOptions{BOM: true})
//
//	err = exporter.WriteXLSX(w, table, "Cleaned Data")
//
//	err = exporter.WriteReport(w, dataset)
package exporter
