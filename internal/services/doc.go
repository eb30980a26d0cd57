// Package services implements the business logic layer of the dashboard.
// It sits between the HTTP handlers and the loader, aggregation and chart
// packages.
//
// # Sessions
//
// SessionStore keeps one immutable TransactionTable per browser session.
// A session has no table ("no file loaded") until an upload succeeds; every
// selection operation of such a session fails with ErrNoFile. Uploading again
// replaces the table. Sessions idle longer than the configured TTL are
// dropped.
//
// # Available Services
//
//	- DashboardService: upload, catalog, series and chart rendering
//	- HealthService: liveness, readiness and version information
//
// # Error Handling
//
// Services return the errors of the packages they call unchanged
// (*dataprocessing.FormatError, *dataprocessing.ParseError,
// analytics.ErrMetricUnavailable, exporter.ErrEmptySeries, *validation.Error)
// alongside ErrNoFile. The transport layer maps them to problem details.
package services
