// Package api exposes the keyword extraction service over HTTP.
//
// Synchronous extraction lives under /api/v1/keywords, asynchronous jobs
// under /api/v1/jobs, and probe endpoints at /health and /ready. Every
// response carries an X-Request-ID header for correlation.
package api
