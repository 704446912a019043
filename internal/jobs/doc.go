// Package jobs runs analysis requests asynchronously and tracks their status.
//
// A job is created in StatusProcessing and transitions exactly once to
// StatusDone or StatusError. Jobs live for the process lifetime: the SQLite
// store empties its table on open, and nothing is ever evicted. There is no
// cancellation; a submitted job runs to completion on a context detached from
// the submitting request.
package jobs
