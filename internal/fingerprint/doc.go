// Package fingerprint produces compact acoustic fingerprints.
//
// The landmark engine is external (audfprint, reached through the Engine
// port). Fingerprinter owns the temp database file, hex-encodes what the engine
// wrote and truncates it to MaxHexLength characters. When a reference database
// is supplied the engine's own matcher reports candidate matches; mediasig never
// compares fingerprints itself.
package fingerprint
