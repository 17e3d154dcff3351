// Package mcp exposes keyword extraction as Model Context Protocol tools
// over stdio.
//
// Three tools are registered: extract_keywords runs one document through the
// pipeline, extract_keywords_batch processes up to 100 documents in one
// call, and get_service_status reports scorer readiness and job queue
// statistics. Tool failures are returned as MCPError values carrying a
// JSON-RPC error code.
package mcp
