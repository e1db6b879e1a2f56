// Package logging configures the process-wide structured logger on top
// of log/slog.
package logging
