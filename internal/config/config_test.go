package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"mediasig/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("MEDIASIG_API_BIND", "")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantState := filepath.Join(tempHome, ".local", "share", "mediasig")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if cfg.Paths.TempDir == "" {
		t.Fatal("expected temp dir default")
	}
	if cfg.Paths.UploadDir != filepath.Join(cfg.Paths.TempDir, "mediasig-uploads") {
		t.Fatalf("unexpected upload dir: %q", cfg.Paths.UploadDir)
	}
	if cfg.LockPath() != filepath.Join(wantState, "mediasig.lock") {
		t.Fatalf("unexpected lock path: %q", cfg.LockPath())
	}
	if cfg.Limits.MaxVideoBytes != 500*1024*1024 {
		t.Fatalf("unexpected video limit: %d", cfg.Limits.MaxVideoBytes)
	}
	if cfg.Limits.MaxAudioBytes != 0 || cfg.Limits.MaxTranscriptBytes != 0 {
		t.Fatalf("expected audio and transcript limits disabled, got %+v", cfg.Limits)
	}
	if cfg.Video.FrameIntervalSeconds != 10 || cfg.Video.MaxFrames != 100 {
		t.Fatalf("unexpected video sampling defaults: %+v", cfg.Video)
	}
	if cfg.Transcription.Provider != config.ProviderWhisperX {
		t.Fatalf("unexpected transcription provider: %q", cfg.Transcription.Provider)
	}
	if cfg.Transcription.Model != "base" {
		t.Fatalf("unexpected transcription model: %q", cfg.Transcription.Model)
	}
	if cfg.Jobs.Store != config.JobStoreMemory {
		t.Fatalf("unexpected job store: %q", cfg.Jobs.Store)
	}
	if cfg.Jobs.MaxConcurrent != 2 {
		t.Fatalf("unexpected max concurrent: %d", cfg.Jobs.MaxConcurrent)
	}
	if cfg.API.Bind != "127.0.0.1:7491" {
		t.Fatalf("unexpected api bind: %q", cfg.API.Bind)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("MEDIASIG_API_BIND", "")

	configPath := filepath.Join(t.TempDir(), "config.toml")
	payload := map[string]any{
		"paths": map[string]any{
			"temp_dir":  "~/scratch",
			"state_dir": "~/state",
		},
		"limits": map[string]any{
			"max_audio_bytes": 1024,
		},
		"transcription": map[string]any{
			"provider": "OpenAI",
			"api_key":  "sk-test",
		},
		"jobs": map[string]any{
			"store":          "sqlite",
			"max_concurrent": 4,
		},
		"logging": map[string]any{
			"format": "JSON",
			"level":  "Debug",
		},
	}
	data, err := toml.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected custom path to be used, got %q exists=%v", resolved, exists)
	}
	if cfg.Paths.TempDir != filepath.Join(tempHome, "scratch") {
		t.Fatalf("unexpected temp dir: %q", cfg.Paths.TempDir)
	}
	if cfg.Paths.UploadDir != filepath.Join(tempHome, "scratch", "mediasig-uploads") {
		t.Fatalf("unexpected upload dir: %q", cfg.Paths.UploadDir)
	}
	if cfg.Limits.MaxAudioBytes != 1024 {
		t.Fatalf("unexpected audio limit: %d", cfg.Limits.MaxAudioBytes)
	}
	if cfg.Transcription.Provider != config.ProviderOpenAI {
		t.Fatalf("expected provider lowercased, got %q", cfg.Transcription.Provider)
	}
	if cfg.Transcription.Model != "whisper-1" {
		t.Fatalf("expected openai model default, got %q", cfg.Transcription.Model)
	}
	if cfg.Jobs.Store != config.JobStoreSQLite || cfg.Jobs.MaxConcurrent != 4 {
		t.Fatalf("unexpected jobs config: %+v", cfg.Jobs)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging config: %+v", cfg.Logging)
	}
}

func TestLoadYAML(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("MEDIASIG_API_BIND", "")

	configPath := filepath.Join(t.TempDir(), "mediasig.yaml")
	content := "video:\n  frame_interval_seconds: 5\n  max_frames: 20\napi:\n  bind: \"0.0.0.0:9000\"\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected yaml config to exist")
	}
	if cfg.Video.FrameIntervalSeconds != 5 || cfg.Video.MaxFrames != 20 {
		t.Fatalf("unexpected video config: %+v", cfg.Video)
	}
	if cfg.API.Bind != "0.0.0.0:9000" {
		t.Fatalf("unexpected bind: %q", cfg.API.Bind)
	}
}

func TestLoadYAMLRejectsUnknownFields(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	configPath := filepath.Join(t.TempDir(), "mediasig.yml")
	if err := os.WriteFile(configPath, []byte("bogus: true\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected unknown yaml field to fail")
	}
}

func TestEnvFallbacks(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("MEDIASIG_API_BIND", "127.0.0.1:9999")
	t.Setenv("MEDIASIG_API_TOKEN", " secret ")

	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Embedding.APIKey != "sk-env" {
		t.Fatalf("expected embedding key from env, got %q", cfg.Embedding.APIKey)
	}
	if cfg.Transcription.APIKey != "sk-env" {
		t.Fatalf("expected transcription key from env, got %q", cfg.Transcription.APIKey)
	}
	if cfg.API.Bind != "127.0.0.1:9999" {
		t.Fatalf("expected bind from env, got %q", cfg.API.Bind)
	}
	if cfg.API.Token != "secret" {
		t.Fatalf("expected token from env, got %q", cfg.API.Token)
	}
}

func TestCreateSample(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "nested", "config.toml")
	if err := config.CreateSample(target); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	content := string(data)
	for _, section := range []string{"[paths]", "[limits]", "[video]", "[transcription]", "[embedding]", "[jobs]", "[api]"} {
		if !strings.Contains(content, section) {
			t.Fatalf("sample config missing %s section", section)
		}
	}

	t.Setenv("HOME", t.TempDir())
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("MEDIASIG_API_BIND", "")
	if _, _, _, err := config.Load(target); err != nil {
		t.Fatalf("sample config should load cleanly: %v", err)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"negative limit", func(c *config.Config) { c.Limits.MaxAudioBytes = -1 }, "limits.max_audio_bytes"},
		{"zero interval", func(c *config.Config) { c.Video.FrameIntervalSeconds = 0 }, "frame_interval_seconds"},
		{"zero frames", func(c *config.Config) { c.Video.MaxFrames = 0 }, "max_frames"},
		{"unknown provider", func(c *config.Config) { c.Transcription.Provider = "vosk" }, "transcription.provider"},
		{"bad language", func(c *config.Config) { c.Transcription.Language = "12345" }, "transcription.language"},
		{"bad vad", func(c *config.Config) { c.Transcription.VADMethod = "webrtc" }, "vad_method"},
		{"openai without key", func(c *config.Config) {
			c.Transcription.Provider = config.ProviderOpenAI
			c.Transcription.APIKey = ""
			c.Transcription.BaseURL = ""
		}, "transcription.api_key"},
		{"bad embedding provider", func(c *config.Config) { c.Embedding.Provider = "cohere" }, "embedding.provider"},
		{"bad store", func(c *config.Config) { c.Jobs.Store = "redis" }, "jobs.store"},
		{"zero workers", func(c *config.Config) { c.Jobs.MaxConcurrent = 0 }, "jobs.max_concurrent"},
		{"empty bind", func(c *config.Config) { c.API.Bind = " " }, "api.bind"},
		{"bad log format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"bad log level", func(c *config.Config) { c.Logging.Level = "trace" }, "logging.level"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}

func TestDefaultValidates(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}
