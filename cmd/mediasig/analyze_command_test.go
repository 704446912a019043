package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"mediasig/internal/testsupport"
)

func TestAnalyzeOversizedVideoPrintsEmptyHashes(t *testing.T) {
	marker := filepath.Join(t.TempDir(), "probed")
	testsupport.StubBinary(t, "ffprobe", "touch "+marker+"\nexit 1\n")
	env := setupCLITestEnv(t, testsupport.WithVideoLimit(1024))

	input := filepath.Join(t.TempDir(), "huge.mp4")
	testsupport.WriteFile(t, input, 4096)

	out, _, err := runCLI(t, []string{"analyze", input, "--kind", "VIDEO"}, env.configPath)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	var envelope map[string][]string
	if err := json.Unmarshal([]byte(out), &envelope); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}
	hashes, ok := envelope["frameHashes"]
	if !ok || len(hashes) != 0 {
		t.Fatalf("expected empty frameHashes, got %q", out)
	}
	if _, err := os.Stat(marker); !os.IsNotExist(err) {
		t.Fatal("ffprobe must not run for an oversized video")
	}
}

func TestAnalyzeRejectsInvalidRequests(t *testing.T) {
	env := setupCLITestEnv(t)
	input := filepath.Join(t.TempDir(), "clip.mp4")
	testsupport.WriteFile(t, input, 16)

	cases := []struct {
		name string
		args []string
	}{
		{name: "unknown kind", args: []string{"analyze", input, "--kind", "image"}},
		{name: "missing file", args: []string{"analyze", filepath.Join(t.TempDir(), "absent.mp4"), "--kind", "video"}},
		{name: "bad language", args: []string{"analyze", input, "--kind", "transcript", "--language", "12345"}},
		{name: "missing kind flag", args: []string{"analyze", input}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, _, err := runCLI(t, tc.args, env.configPath)
			if err == nil {
				t.Fatalf("expected error, got output %q", out)
			}
		})
	}
}
