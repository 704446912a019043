// Package services defines shared utilities consumed by the analysis stages
// and their external tool adapters.
//
// Key responsibilities:
//   - Context helpers that stamp job IDs, analysis kinds, stage names, and
//     correlation identifiers for logging.
//   - Sentinel error markers plus the Wrap helper that classify failures into
//     the pipeline taxonomy (validation, extraction, tool invocation, decode,
//     model).
//
// Subpackages hold one adapter per external capability (WhisperX, OpenAI).
package services
