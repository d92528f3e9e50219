// Package controller contains HTTP middlewares and helper handlers used by the API server.
//
// Provided middlewares:
//   - WithCORS: Adds CORS headers for the allowed origins and handles OPTIONS preflight.
//   - WithLogger: Attaches a request-scoped logger and request ID to the context and logs access info.
//   - WithMetrics: Counts requests and measures their latency on an OpenTelemetry meter.
//
// Provided helpers:
//   - ClientIP: Resolves the visitor address behind proxies.
//   - PprofMux: Returns a ServeMux exposing net/http/pprof handlers.
package controller
