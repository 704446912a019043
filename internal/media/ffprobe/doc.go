// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Inspect executes ffprobe and returns the parsed Result. Helpers on Result
// and Stream derive what frame sampling needs: the primary video stream, its
// frame rate (rational strings such as "30000/1001") and its frame count.
package ffprobe
