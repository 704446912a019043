// Package main hosts the mediasig CLI entrypoint and command graph.
//
// The Cobra command tree runs one-shot analyses in-process, starts the HTTP
// daemon, talks to a running daemon for asynchronous jobs, reports external
// tool availability, and scaffolds configuration. Heavy lifting lives in the
// internal packages; commands here only resolve configuration and render
// results.
package main
