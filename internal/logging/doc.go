// Package logging assembles structured slog loggers used across mediasig.
//
// It owns the console (tint) and JSON handlers, fans output out to the
// terminal and the log file, and exposes context-aware helpers so stage code
// tags log lines with job IDs, analysis kinds, stages and correlation IDs.
// NewNop returns a discarding logger for tests and wiring code that cannot
// fail.
package logging
