package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and scratch-space configuration.
type Paths struct {
	TempDir   string `toml:"temp_dir" yaml:"temp_dir"`
	UploadDir string `toml:"upload_dir" yaml:"upload_dir"`
	LogDir    string `toml:"log_dir" yaml:"log_dir"`
	StateDir  string `toml:"state_dir" yaml:"state_dir"`
}

// Limits contains per-kind input size ceilings in bytes. Zero disables a limit.
type Limits struct {
	MaxVideoBytes      int64 `toml:"max_video_bytes" yaml:"max_video_bytes"`
	MaxAudioBytes      int64 `toml:"max_audio_bytes" yaml:"max_audio_bytes"`
	MaxTranscriptBytes int64 `toml:"max_transcript_bytes" yaml:"max_transcript_bytes"`
}

// Video contains frame sampling settings.
type Video struct {
	FrameIntervalSeconds int `toml:"frame_interval_seconds" yaml:"frame_interval_seconds"`
	MaxFrames            int `toml:"max_frames" yaml:"max_frames"`
}

// Tools contains external executable locations.
type Tools struct {
	FFmpeg          string `toml:"ffmpeg" yaml:"ffmpeg"`
	FFprobe         string `toml:"ffprobe" yaml:"ffprobe"`
	Python          string `toml:"python" yaml:"python"`
	AudfprintScript string `toml:"audfprint_script" yaml:"audfprint_script"`
}

// Transcription contains speech-recognition settings.
type Transcription struct {
	// Provider selects the adapter: "whisperx" (local, via uvx) or "openai".
	Provider string `toml:"provider" yaml:"provider"`
	Model    string `toml:"model" yaml:"model"`
	// Language is the default hint for requests that carry none. Empty means auto-detect.
	Language    string `toml:"language" yaml:"language"`
	CUDAEnabled bool   `toml:"cuda_enabled" yaml:"cuda_enabled"`
	VADMethod   string `toml:"vad_method" yaml:"vad_method"`
	HFToken     string `toml:"hf_token" yaml:"hf_token"`
	APIKey      string `toml:"api_key" yaml:"api_key"`
	BaseURL     string `toml:"base_url" yaml:"base_url"`
}

// Embedding contains sentence-embedding settings.
type Embedding struct {
	Provider       string `toml:"provider" yaml:"provider"`
	Model          string `toml:"model" yaml:"model"`
	BaseURL        string `toml:"base_url" yaml:"base_url"`
	APIKey         string `toml:"api_key" yaml:"api_key"`
	Dimensions     int    `toml:"dimensions" yaml:"dimensions"`
	TimeoutSeconds int    `toml:"timeout_seconds" yaml:"timeout_seconds"`
}

// Jobs contains asynchronous job tracking settings.
type Jobs struct {
	// Store selects the job store: "memory" or "sqlite".
	Store         string `toml:"store" yaml:"store"`
	SQLiteDSN     string `toml:"sqlite_dsn" yaml:"sqlite_dsn"`
	MaxConcurrent int    `toml:"max_concurrent" yaml:"max_concurrent"`
}

// API contains HTTP surface settings.
type API struct {
	Bind           string   `toml:"bind" yaml:"bind"`
	AllowedOrigins []string `toml:"allowed_origins" yaml:"allowed_origins"`
	IncludeTrace   bool     `toml:"include_trace" yaml:"include_trace"`
	// Token enables bearer authentication on /v1 routes when set.
	Token          string `toml:"token" yaml:"token"`
	MaxUploadBytes int64  `toml:"max_upload_bytes" yaml:"max_upload_bytes"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format" yaml:"format"`
	Level  string `toml:"level" yaml:"level"`
}

// Config encapsulates all configuration values for mediasig.
//
// Configuration sections by subsystem:
//   - Paths: scratch, upload, log and state directories
//   - Limits: per-kind input size ceilings
//   - Video: frame sampling cadence and budget
//   - Tools: ffmpeg, ffprobe and audfprint locations
//   - Transcription / Embedding: model providers
//   - Jobs: asynchronous job store and concurrency
//   - API: HTTP bind address, CORS and upload limits
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths" yaml:"paths"`
	Limits        Limits        `toml:"limits" yaml:"limits"`
	Video         Video         `toml:"video" yaml:"video"`
	Tools         Tools         `toml:"tools" yaml:"tools"`
	Transcription Transcription `toml:"transcription" yaml:"transcription"`
	Embedding     Embedding     `toml:"embedding" yaml:"embedding"`
	Jobs          Jobs          `toml:"jobs" yaml:"jobs"`
	API           API           `toml:"api" yaml:"api"`
	Logging       Logging       `toml:"logging" yaml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized. Files ending in .yaml or .yml are decoded as YAML,
// everything else as TOML.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		if err := decodeFile(resolvedPath, &cfg); err != nil {
			return nil, "", false, err
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func decodeFile(path string, cfg *Config) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		decoder := yaml.NewDecoder(file)
		decoder.KnownFields(true)
		if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("parse config: %w", err)
		}
	default:
		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(cfg); err != nil {
			return fmt.Errorf("parse config: %w", err)
		}
	}
	return nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("mediasig.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the pipeline and daemon write to.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.TempDir, c.Paths.UploadDir, c.Paths.LogDir, c.Paths.StateDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable used for normalization and frame grabs.
func (c *Config) FFmpegBinary() string {
	if v := strings.TrimSpace(c.Tools.FFmpeg); v != "" {
		return v
	}
	return defaultFFmpeg
}

// FFprobeBinary returns the ffprobe executable used for media inspection.
func (c *Config) FFprobeBinary() string {
	if v := strings.TrimSpace(c.Tools.FFprobe); v != "" {
		return v
	}
	return defaultFFprobe
}

// FrameInterval returns the video sampling cadence.
func (c *Config) FrameInterval() time.Duration {
	return time.Duration(c.Video.FrameIntervalSeconds) * time.Second
}

// EmbeddingTimeout returns the per-request timeout for embedding calls.
func (c *Config) EmbeddingTimeout() time.Duration {
	return time.Duration(c.Embedding.TimeoutSeconds) * time.Second
}

// LockPath returns the daemon single-instance lock file.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "mediasig.lock")
}

// LogPath returns the log file written alongside console output.
func (c *Config) LogPath() string {
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return ""
	}
	return filepath.Join(c.Paths.LogDir, "mediasig.log")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// SampleConfig returns the embedded sample configuration.
func SampleConfig() string {
	return sampleConfig
}
