// Package daemon owns the long-running mediasig process.
//
// It acquires a flock on the state directory so only one instance serves a
// given configuration, starts the HTTP API on the configured bind address, and
// drains in-flight analysis jobs before releasing the lock on shutdown.
//
// Request handling lives in internal/api and job bookkeeping in internal/jobs;
// this package only sequences their startup and shutdown.
package daemon
