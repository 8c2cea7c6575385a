// Package services implements the business logic layer of datawash. It sits
// between the HTTP handlers and the dataset store, so that handlers stay
// focused on transport concerns and business rules remain centralized and
// testable.
//
// # Architecture
//
// Services follow these principles:
//
//	1. Interface-driven dependencies (Store, Notifier, Metrics) for testability
//	2. Context propagation for cancellation and tracing
//	3. Dependency injection through constructors
//	4. Sentinel errors that handlers translate to HTTP status codes
//
// # Available Services
//
//	- DatasetService: upload, processing, preview, summary, export, report,
//	  and deletion of datasets
//	- HealthService: liveness, readiness, and system statistics
//
// # DatasetService
//
// DatasetService owns the dataset lifecycle. Upload parses the file into the
// raw table and stores it; Process runs the cleaning pipeline and attaches
// the cleaned table, stats, and options to the record. Preview, Summarize,
// Export, and Report read either the raw or the cleaned view. Lifecycle
// changes are published through the Notifier (the websocket hub) and counted
// through the Metrics recorder.
//
// # Error Handling
//
// Services return sentinel errors that the transport layer maps onto HTTP
// responses:
//
//	- ErrDatasetNotFound: unknown dataset ID (404)
//	- ErrUnsupportedFormat: upload extension not csv/xls/xlsx (400)
//	- ErrInvalidFile: file did not parse (400)
//	- ErrDatasetNotProcessed: cleaned view requested before Process (409)
//	- ErrInvalidView: view other than raw/cleaned (400)
//	- ErrUnsupportedExportFormat: export format not csv/xlsx (400)
//
// Cleaning errors (cleaning.ErrInvalidInput, cleaning.ErrUnsupportedStrategy)
// pass through wrapped so handlers can translate them as well.
//
// # Testing
//
// Services are tested with in-memory stores and hand-written fakes for the
// Notifier and Metrics interfaces; no network or filesystem is involved.
package services
