package fileutil

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrTooLarge reports a stream that exceeded the caller's byte ceiling.
var ErrTooLarge = errors.New("stream exceeds size limit")

// StoredFile describes a stream persisted by StoreStream.
type StoredFile struct {
	Path   string
	Size   int64
	SHA256 string
}

// PrivateTempDir creates a fresh directory under base (os.TempDir when empty)
// and returns it together with a cleanup func that removes it recursively.
func PrivateTempDir(base, pattern string) (string, func(), error) {
	if strings.TrimSpace(base) == "" {
		base = os.TempDir()
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return "", func() {}, fmt.Errorf("ensure temp base: %w", err)
	}
	dir, err := os.MkdirTemp(base, pattern)
	if err != nil {
		return "", func() {}, fmt.Errorf("create temp dir: %w", err)
	}
	return dir, func() { _ = os.RemoveAll(dir) }, nil
}

// StoreStream copies r into a new file inside dir, keeping the extension of
// name so downstream format sniffing still works. maxBytes <= 0 disables the
// ceiling. The partial file is removed on any failure.
func StoreStream(dir, name string, r io.Reader, maxBytes int64) (StoredFile, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return StoredFile{}, fmt.Errorf("ensure upload dir: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(filepath.Base(name)))
	out, err := os.CreateTemp(dir, "upload-*"+ext)
	if err != nil {
		return StoredFile{}, fmt.Errorf("create upload file: %w", err)
	}
	path := out.Name()
	fail := func(err error) (StoredFile, error) {
		_ = out.Close()
		_ = os.Remove(path)
		return StoredFile{}, err
	}

	src := r
	if maxBytes > 0 {
		src = io.LimitReader(r, maxBytes+1)
	}
	hasher := sha256.New()
	written, err := io.Copy(io.MultiWriter(out, hasher), src)
	if err != nil {
		return fail(fmt.Errorf("write upload: %w", err))
	}
	if maxBytes > 0 && written > maxBytes {
		return fail(fmt.Errorf("%w: more than %d bytes", ErrTooLarge, maxBytes))
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(path)
		return StoredFile{}, fmt.Errorf("close upload: %w", err)
	}
	return StoredFile{Path: path, Size: written, SHA256: hex.EncodeToString(hasher.Sum(nil))}, nil
}

// RemoveQuietly deletes path, ignoring a missing file. It reports other failures.
func RemoveQuietly(path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
