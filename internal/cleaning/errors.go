package cleaning

import "errors"

// Sentinel errors returned by the pipeline. Callers match with errors.Is;
// the HTTP layer maps them to API error codes.
var (
	// ErrInvalidInput reports an empty or non-uniform input table. The run
	// produces no output.
	ErrInvalidInput = errors.New("invalid input dataset")

	// ErrUnsupportedStrategy reports a missing-value strategy outside
	// mean, median, mode, and constant.
	ErrUnsupportedStrategy = errors.New("unsupported missing-value strategy")
)
