package services

import "errors"

// Dataset service errors
var (
	// Lookup errors
	ErrDatasetNotFound = errors.New("dataset not found")

	// Upload errors
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrInvalidFile       = errors.New("file could not be parsed")

	// State errors
	ErrDatasetNotProcessed = errors.New("dataset not processed")

	// Read errors
	ErrInvalidView             = errors.New("invalid table view")
	ErrUnsupportedExportFormat = errors.New("unsupported export format")
)
