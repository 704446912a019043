// Package api serves the mediasig HTTP surface and the client used by the CLI.
//
// # Routes
//
//	GET  /health            liveness, plain "ok"
//	GET  /v1/status         dependency and preflight report
//	POST /v1/analyze        synchronous analysis, returns the result envelope
//	POST /v1/jobs           submit an analysis of a server-local file
//	POST /v1/jobs/upload    multipart upload; the stored file is owned by the job
//	GET  /v1/jobs           list jobs
//	GET  /v1/jobs/{id}      poll one job
//
// # Design Notes
//
// Envelopes use camelCase keys. A poll response is the job status merged with
// the result fields, so a finished text job reads
// {"status":"done","scanType":"text","transcript":"","embedding":[...]}.
// Validation failures map to 400, unknown jobs to 404; anything else is a 500
// carrying a FailureEnvelope, with the error chain as trace only when
// api.include_trace is set.
package api
