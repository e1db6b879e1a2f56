// Package history tracks expense submissions so frequency constraints
// can count prior occurrences. It provides an in-memory store for tests
// and single-run tooling, a SQLite store for durable single-instance
// deployments, and a cron-driven retention pruner.
package history
