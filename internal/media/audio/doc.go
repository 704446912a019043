// Package audio converts arbitrary media into the canonical analysis format:
// 16 kHz mono signed 16-bit PCM WAV. Inputs already in an accepted audio
// container (.wav, .mp3) pass through untouched.
package audio
