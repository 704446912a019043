package analysis

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"mediasig/internal/testsupport"
)

func TestNewSkipsOversizedVideoWithoutProbing(t *testing.T) {
	marker := filepath.Join(t.TempDir(), "probed")
	testsupport.StubBinary(t, "ffprobe", "touch "+marker+"\nexit 1\n")
	cfg := testsupport.NewConfig(t, testsupport.WithVideoLimit(1024))

	d, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	path := filepath.Join(t.TempDir(), "huge.mp4")
	testsupport.WriteFile(t, path, 4096)

	result, err := d.Dispatch(context.Background(), Request{FilePath: path, Kind: KindVideo})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if hashes := result.(VideoResult).FrameHashes; hashes == nil || len(hashes) != 0 {
		t.Fatalf("expected empty hashes, got %#v", hashes)
	}
	if _, err := os.Stat(marker); !os.IsNotExist(err) {
		t.Fatal("ffprobe must not run for an oversized video")
	}
}

func TestNewFingerprintsThroughAudfprint(t *testing.T) {
	testsupport.StubBinary(t, "python3", `
db=""
while [ $# -gt 0 ]; do
  case "$1" in
    --dbase) db="$2"; shift ;;
  esac
  shift
done
printf '%080d' 0 > "$db"
`)
	cfg := testsupport.NewConfig(t)
	d, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	path := filepath.Join(t.TempDir(), "song.wav")
	testsupport.WriteFile(t, path, 128)

	result, err := d.Dispatch(context.Background(), Request{FilePath: path, Kind: KindAudio})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	fp := result.(AudioResult).AudioFingerprint
	if fp == nil || len(*fp) != 128 {
		t.Fatalf("expected 128-char fingerprint, got %v", fp)
	}

	entries, err := os.ReadDir(cfg.Paths.TempDir)
	if err != nil {
		t.Fatalf("read temp dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no temp artifacts, found %d", len(entries))
	}
}
