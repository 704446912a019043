package whisperx

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"mediasig/internal/services"
)

func argValue(args []string, flag string) string {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag {
			return args[i+1]
		}
	}
	return ""
}

func TestTranscribeJoinsSegments(t *testing.T) {
	tmp := t.TempDir()
	svc := NewService(Config{Model: "small", TempDir: tmp})

	var outputDir string
	var gotArgs []string
	svc.WithCommandRunner(func(_ context.Context, name string, args ...string) error {
		if name != UVXCommand {
			t.Fatalf("unexpected command %q", name)
		}
		gotArgs = args
		outputDir = argValue(args, "--output_dir")
		payload := `{"segments":[{"text":" hello ","start":0,"end":1},{"text":""},{"text":"world","start":1,"end":2}]}`
		return os.WriteFile(filepath.Join(outputDir, "clip.json"), []byte(payload), 0o644)
	})

	text, err := svc.Transcribe(context.Background(), "/media/clip.wav", "en-US")
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if text != "hello world" {
		t.Fatalf("unexpected transcript %q", text)
	}
	if argValue(gotArgs, "--model") != "small" {
		t.Fatalf("expected model flag, got %v", gotArgs)
	}
	if argValue(gotArgs, "--language") != "en" {
		t.Fatalf("expected normalized language flag, got %v", gotArgs)
	}
	if argValue(gotArgs, "--device") != CPUDevice {
		t.Fatalf("expected cpu device, got %v", gotArgs)
	}
	if _, err := os.Stat(outputDir); !os.IsNotExist(err) {
		t.Fatalf("expected output dir %s removed", outputDir)
	}
}

func TestTranscribeOmitsLanguageWhenAuto(t *testing.T) {
	svc := NewService(Config{TempDir: t.TempDir(), CUDAEnabled: true, VADMethod: VADMethodPyannote, HFToken: "hf"})
	var gotArgs []string
	svc.WithCommandRunner(func(_ context.Context, _ string, args ...string) error {
		gotArgs = args
		return os.WriteFile(filepath.Join(argValue(args, "--output_dir"), "a.json"), []byte(`{"segments":[]}`), 0o644)
	})

	text, err := svc.Transcribe(context.Background(), "a.wav", "")
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if text != "" {
		t.Fatalf("expected empty transcript, got %q", text)
	}
	if slices.Contains(gotArgs, "--language") {
		t.Fatalf("language flag should be omitted: %v", gotArgs)
	}
	if argValue(gotArgs, "--device") != CUDADevice || argValue(gotArgs, "--hf_token") != "hf" {
		t.Fatalf("expected cuda + pyannote token args: %v", gotArgs)
	}
	if argValue(gotArgs, "--model") != DefaultModel {
		t.Fatalf("expected default model, got %v", gotArgs)
	}
}

func TestTranscribeFailures(t *testing.T) {
	svc := NewService(Config{TempDir: t.TempDir()})
	svc.WithCommandRunner(func(context.Context, string, ...string) error {
		return errors.New("exit status 1")
	})
	if _, err := svc.Transcribe(context.Background(), "a.wav", ""); !errors.Is(err, services.ErrModel) {
		t.Fatalf("expected ErrModel for failed run, got %v", err)
	}

	svc.WithCommandRunner(func(context.Context, string, ...string) error { return nil })
	if _, err := svc.Transcribe(context.Background(), "a.wav", ""); !errors.Is(err, services.ErrModel) {
		t.Fatalf("expected ErrModel for missing json, got %v", err)
	}

	if _, err := svc.Transcribe(context.Background(), " ", ""); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for blank source, got %v", err)
	}
}
