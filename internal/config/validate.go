package config

import (
	"errors"
	"fmt"
	"strings"

	"mediasig/internal/language"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLimits(); err != nil {
		return err
	}
	if err := c.validateVideo(); err != nil {
		return err
	}
	if err := c.validateTranscription(); err != nil {
		return err
	}
	if err := c.validateEmbedding(); err != nil {
		return err
	}
	if err := c.validateJobs(); err != nil {
		return err
	}
	if err := c.validateAPI(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateLimits() error {
	for key, value := range map[string]int64{
		"limits.max_video_bytes":      c.Limits.MaxVideoBytes,
		"limits.max_audio_bytes":      c.Limits.MaxAudioBytes,
		"limits.max_transcript_bytes": c.Limits.MaxTranscriptBytes,
	} {
		if value < 0 {
			return fmt.Errorf("%s must not be negative (0 disables the limit)", key)
		}
	}
	return nil
}

func (c *Config) validateVideo() error {
	if c.Video.FrameIntervalSeconds <= 0 {
		return errors.New("video.frame_interval_seconds must be positive")
	}
	if c.Video.MaxFrames <= 0 {
		return errors.New("video.max_frames must be positive")
	}
	return nil
}

func (c *Config) validateTranscription() error {
	if _, err := language.Normalize(c.Transcription.Language); err != nil {
		return fmt.Errorf("transcription.language: %w", err)
	}
	switch c.Transcription.Provider {
	case ProviderWhisperX:
		switch c.Transcription.VADMethod {
		case "silero", "pyannote":
		default:
			return fmt.Errorf("transcription.vad_method: unsupported value %q", c.Transcription.VADMethod)
		}
	case ProviderOpenAI:
		if c.Transcription.APIKey == "" && c.Transcription.BaseURL == "" {
			return errors.New("transcription.api_key is required for the openai provider. Set OPENAI_API_KEY or transcription.base_url for a local server")
		}
	default:
		return fmt.Errorf("transcription.provider: unsupported value %q", c.Transcription.Provider)
	}
	return nil
}

func (c *Config) validateEmbedding() error {
	if c.Embedding.Provider != ProviderOpenAI {
		return fmt.Errorf("embedding.provider: unsupported value %q", c.Embedding.Provider)
	}
	if c.Embedding.Dimensions < 0 {
		return errors.New("embedding.dimensions must not be negative")
	}
	if c.Embedding.TimeoutSeconds <= 0 {
		return errors.New("embedding.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateJobs() error {
	switch c.Jobs.Store {
	case JobStoreMemory, JobStoreSQLite:
	default:
		return fmt.Errorf("jobs.store: unsupported value %q", c.Jobs.Store)
	}
	if c.Jobs.MaxConcurrent <= 0 {
		return errors.New("jobs.max_concurrent must be positive")
	}
	return nil
}

func (c *Config) validateAPI() error {
	if strings.TrimSpace(c.API.Bind) == "" {
		return errors.New("api.bind must be set")
	}
	if c.API.MaxUploadBytes < 0 {
		return errors.New("api.max_upload_bytes must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
