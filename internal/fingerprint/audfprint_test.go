package fingerprint

import (
	"context"
	"path/filepath"
	"slices"
	"testing"

	"mediasig/internal/testsupport"
)

func TestAudfprintNewWritesDatabase(t *testing.T) {
	python := testsupport.StubBinary(t, "fake-python", `
db=""
while [ $# -gt 0 ]; do
  case "$1" in
    --dbase) db="$2"; shift ;;
  esac
  shift
done
printf '%064d' 0 > "$db"
`)
	engine := NewAudfprint(python, "/opt/audfprint/audfprint.py")
	fp := &Fingerprinter{Engine: engine, TempDir: t.TempDir()}

	audio := filepath.Join(t.TempDir(), "clip.wav")
	testsupport.WriteFile(t, audio, 16)

	out, err := fp.Fingerprint(context.Background(), audio, "")
	if err != nil {
		t.Fatalf("Fingerprint: %v", err)
	}
	if len(out.Hex) != 128 {
		t.Fatalf("expected 128 hex chars, got %d", len(out.Hex))
	}
	for i := 0; i < len(out.Hex); i += 2 {
		if out.Hex[i:i+2] != "30" {
			t.Fatalf("unexpected byte at %d: %q", i, out.Hex[i:i+2])
		}
	}
}

func TestAudfprintNonZeroExit(t *testing.T) {
	python := testsupport.StubBinary(t, "fake-python", "echo 'bad file' >&2\nexit 1\n")
	engine := NewAudfprint(python, "audfprint.py")
	if err := engine.Fingerprint(context.Background(), "clip.wav", filepath.Join(t.TempDir(), "x.afp")); err == nil {
		t.Fatal("expected error from non-zero exit")
	}
}

func TestAudfprintArguments(t *testing.T) {
	engine := NewAudfprint("", "/opt/audfprint.py")
	var gotName string
	var gotArgs []string
	engine.WithCommandRunner(func(_ context.Context, name string, args ...string) ([]byte, error) {
		gotName, gotArgs = name, args
		return []byte("Matched q.wav 9.9 sec 310 raw hashes as ref/a.mp3 at 12.3 s with 52 of 104 common hashes at rank 0\n"), nil
	})

	matches, err := engine.Match(context.Background(), "/in/q.wav", "/refs/db.pklz")
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if gotName != "python3" {
		t.Fatalf("expected python3 fallback, got %q", gotName)
	}
	want := []string{"/opt/audfprint.py", "match", "--dbase", "/refs/db.pklz", "/in/q.wav"}
	if !slices.Equal(gotArgs, want) {
		t.Fatalf("args = %v, want %v", gotArgs, want)
	}
	if len(matches) != 1 || matches[0].File != "ref/a.mp3" || matches[0].Confidence != 0.5 {
		t.Fatalf("unexpected matches %+v", matches)
	}
}

func TestParseMatches(t *testing.T) {
	output := []byte(`Analyzed q.wav of 9.900 s to 310 hashes
Matched q.wav 9.9 sec 310 raw hashes as ref/a.mp3 at 12.3 s with 52 of 118 common hashes at rank 0
Matched something unusual
NOMATCH q.wav 9.9 sec 310 raw hashes
`)
	matches := ParseMatches(output)
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %+v", matches)
	}
	first := matches[0]
	if first.File != "ref/a.mp3" || first.OffsetSeconds != 12.3 || first.CommonHashes != 52 || first.TotalHashes != 118 {
		t.Fatalf("unexpected first match %+v", first)
	}
	if matches[1].File != "something unusual" || matches[1].Confidence != 0 {
		t.Fatalf("unexpected fallback match %+v", matches[1])
	}
	if ParseMatches(nil) != nil {
		t.Fatal("expected nil for empty output")
	}
}
