// Package metrics exposes Prometheus metrics for the ruler service:
// evaluation counts and latencies, rulebook reloads, and HTTP traffic.
package metrics
