// Package language normalizes transcription language hints.
//
// Hints arrive as BCP-47 tags ("en-US"), ISO 639-1/639-2 codes ("en", "eng",
// "fre") or English words ("french") and are reduced to the ISO 639-1 base
// code that WhisperX and OpenAI transcription accept. Parsing relies on
// golang.org/x/text/language.
package language
