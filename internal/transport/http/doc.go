// Package http implements the HTTP handlers of the sales dashboard. Handlers
// stay thin: they read the session cookie and request parameters, call the
// services layer and format the response.
//
// # Routes
//
//	GET  /                     dashboard page, ?metrica=<slug> selects a metric
//	POST /upload               page form target, field "archivo"
//	GET  /chart/{metric}.png   chart of the session's table
//	POST /api/upload           same as /upload, answers with JSON
//	GET  /api/metrics          metric catalog
//	GET  /api/series/{metric}  aggregated series
//	GET  /api/health[/ready|/live], /api/version
//
// # Sessions
//
// The session ID travels in an HttpOnly cookie set on the first successful
// upload. Requests without it, or with an expired one, are in the "no file
// loaded" state: the page shows the upload prompt and the chart and API
// routes answer 409 NO_FILE_LOADED.
//
// # Error Handling
//
// API and chart errors are RFC 7807 problem details written by
// errors.ErrorHandler. toAPIError maps loader, validation and aggregation
// errors to their codes first. Page errors are rendered inline in the HTML.
package http
