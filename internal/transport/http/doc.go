// Package http implements the HTTP handlers of the datawash API. It is a
// thin layer between chi routing and the service layer: handlers parse and
// validate requests, call services, and render responses.
//
// # Architecture
//
// Handlers follow these principles:
//
//	1. Thin handlers - minimal logic, delegate to services
//	2. HTTP-only concerns - request parsing, response formatting
//	3. Error translation - service sentinels become API error responses
//	4. Consistent envelopes - every success body is {"status": "success", "data": ...}
//
// # Request Flow
//
//	HTTP Request → Chi Router → Middleware → Handler → Service → Store
//	                                              ↓
//	HTTP Response ← render.JSON ← Handler ←──────┘
//
// # Handlers
//
//	- DatasetHandler: /api/datasets - upload, list, get, process, preview,
//	  summary, export, report, delete
//	- HealthHandler: /api/health, /api/version, /api/stats
//	- MetricsHandler: /api/metrics - observability snapshot and the
//	  Prometheus scrape passthrough
//
// # Error Handling
//
// Service sentinels are mapped to API errors in one place per handler and
// rendered as RFC 7807 problem details:
//
//	{
//	    "type": "/errors/dataset/not-found",
//	    "title": "Not Found",
//	    "status": 404,
//	    "detail": "Dataset 42 not found",
//	    "instance": "/api/datasets/42",
//	    "error_code": "DATASET_NOT_FOUND",
//	    "details": {"dataset_id": 42},
//	    "trace_id": "req-00042"
//	}
//
// # Testing
//
// Handlers are tested with httptest and mocked service interfaces; tests
// assert both status codes and response envelopes.
package http
