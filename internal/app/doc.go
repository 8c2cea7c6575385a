// Package app wires the datawash server together and owns its lifecycle.
//
// NewApplication builds the whole dependency graph in order: configuration,
// the process-wide logger, OpenTelemetry providers, business and system
// metrics, the websocket hub, the in-memory dataset store, the cleaning
// pipeline, and finally the HTTP router and server. Construction either
// succeeds completely or returns an error; nothing inside calls os.Exit.
//
//	application, err := app.NewApplication()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := application.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// Run blocks until SIGINT, SIGTERM, or a fatal listener error, then drains
// the server within the configured shutdown timeout, stops the hub and the
// metrics sampler, and flushes the OpenTelemetry providers.
//
// # Router layout
//
// The router applies RequestID and RealIP to every request. The /ws endpoint
// is registered with only a tracing wrapper, because the websocket upgrade
// cannot run behind middleware that wraps the ResponseWriter. All remaining
// routes sit inside a group carrying tracing, structured request logging,
// panic recovery, security headers, optional CORS and rate limiting, and
// response compression. The Prometheus scrape endpoint is mounted outside the
// group so scrapes stay cheap and unthrottled.
package app
