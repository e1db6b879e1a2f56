// Package store keeps loaded rulebooks available to the rest of the
// process: a thread-safe registry with atomic replacement, a directory
// loader, and an fsnotify-based watcher that hot-reloads rulebooks when
// their files change.
package store
