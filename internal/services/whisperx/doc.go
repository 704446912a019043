// Package whisperx runs WhisperX speech recognition through uvx.
//
// Service implements the transcription port: each call gets a private output
// directory, WhisperX writes its JSON segments there, and the joined segment
// text is returned. The directory is removed before the call returns.
package whisperx
