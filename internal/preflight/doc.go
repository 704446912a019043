// Package preflight runs environment checks before the pipeline accepts work:
// scratch and upload directory permissions, free space, and reachability of
// the OpenAI-compatible model endpoints. Results feed `mediasig deps` and the
// daemon's status endpoint.
package preflight
