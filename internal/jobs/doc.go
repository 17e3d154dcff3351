// Package jobs runs extraction requests asynchronously through a persistent
// worker queue. Jobs survive restarts: pending and interrupted work is
// requeued from the store when the queue starts, and transient scorer
// failures are retried with exponential backoff before a job is marked
// failed.
package jobs
