// Package analysis routes an analysis request to the stage pipeline for its
// kind and wraps the outcome in a uniform result envelope.
//
// Stage failures never escape Dispatch: each one is logged with its
// diagnostics and collapsed into the empty value for its field (absent
// fingerprint, empty hash list, empty transcript and embedding). Only
// request-shape problems are returned, as services.ErrValidation.
package analysis
