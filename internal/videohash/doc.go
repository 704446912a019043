// Package videohash samples frames from a video at a fixed cadence and reduces
// each frame to a 64-bit perceptual hash (pHash).
//
// Frames come from a FrameSource port so the sampling schedule and hashing can
// be exercised without ffmpeg. Hashes render as 16 lowercase hex characters,
// most significant bit first, row-major over the 8x8 low-frequency DCT block.
package videohash
