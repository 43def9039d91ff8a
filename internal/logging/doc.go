// Package logging assembles the structured slog loggers used across
// articast components.
//
// It owns the console and JSON handlers, centralizes level parsing, and
// exposes standardized field constants so pipeline code tags log lines with
// task ids, segment indices, and voices the same way everywhere. It also
// provides a no-op logger for tests and wiring code that cannot fail.
package logging
