// Package guard checks media inputs before any stage touches them: the path
// must name an existing readable regular file, and per-kind size ceilings
// decide whether a stage may process it at all.
package guard

import (
	"errors"
	"io/fs"
	"os"

	"golang.org/x/sys/unix"

	"mediasig/internal/services"
)

// DefaultMaxVideoBytes is the video ceiling applied when none is configured.
const DefaultMaxVideoBytes int64 = 500 * 1024 * 1024

// Info describes a checked input.
type Info struct {
	Exists    bool
	SizeBytes int64
}

// Check stats path without opening it. Missing, unreadable and non-regular
// paths are validation errors; Info.Exists reports whether anything was found.
func Check(path string) (Info, error) {
	if path == "" {
		return Info{}, services.Wrap(services.ErrValidation, "guard", "check input", "file path required", nil)
	}
	st, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Info{}, services.Wrap(services.ErrValidation, "guard", "check input", "file not found: "+path, nil)
		}
		return Info{}, services.Wrap(services.ErrValidation, "guard", "check input", "stat "+path, err)
	}
	info := Info{Exists: true, SizeBytes: st.Size()}
	if st.IsDir() {
		return info, services.Wrap(services.ErrValidation, "guard", "check input", path+" is a directory", nil)
	}
	if !st.Mode().IsRegular() {
		return info, services.Wrap(services.ErrValidation, "guard", "check input", path+" is not a regular file", nil)
	}
	if err := unix.Access(path, unix.R_OK); err != nil {
		return info, services.Wrap(services.ErrValidation, "guard", "check input", path+" is not readable", err)
	}
	return info, nil
}

// Limits holds per-kind size ceilings in bytes. Zero disables a ceiling.
type Limits struct {
	Video      int64
	Audio      int64
	Transcript int64
}

// DefaultLimits caps video only.
func DefaultLimits() Limits {
	return Limits{Video: DefaultMaxVideoBytes}
}

// For returns the ceiling for an analysis kind; "text" shares the transcript ceiling.
func (l Limits) For(kind string) int64 {
	switch kind {
	case "video":
		return l.Video
	case "audio":
		return l.Audio
	case "transcript", "text":
		return l.Transcript
	}
	return 0
}

// Exceeds reports whether size is over the ceiling for kind.
func (l Limits) Exceeds(kind string, size int64) bool {
	limit := l.For(kind)
	return limit > 0 && size > limit
}

// Stat is the size lookup used by stages that short-circuit on Exceeds
// without opening the file.
func Stat(path string) (int64, error) {
	st, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return st.Size(), nil
}
