// Package storage persists asynchronous extraction jobs in SQLite.
//
// Two SQLite drivers are supported through build tags: the default pure Go
// driver (modernc.org/sqlite) needs no C toolchain, while the sqlite_cgo tag
// selects github.com/mattn/go-sqlite3 for faster queries. Schema changes go
// through versioned migrations tracked in the schema_version table.
package storage
