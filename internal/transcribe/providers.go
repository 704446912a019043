package transcribe

import (
	"fmt"
	"log/slog"
	"strings"

	"mediasig/internal/config"
	"mediasig/internal/services"
	"mediasig/internal/services/openai"
	"mediasig/internal/services/whisperx"
)

// NewFromConfig wires the transcription and embedding adapters selected by cfg.
func NewFromConfig(cfg *config.Config, logger *slog.Logger) (*Service, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "transcribe", "configure", "config is required", nil)
	}
	transcriber, err := NewTranscriber(cfg)
	if err != nil {
		return nil, err
	}
	return &Service{
		Transcriber: transcriber,
		Embedder:    NewEmbedder(cfg),
		Logger:      logger,
	}, nil
}

// NewTranscriber returns the speech-recognition adapter for the configured provider.
func NewTranscriber(cfg *config.Config) (Transcriber, error) {
	t := cfg.Transcription
	switch strings.ToLower(strings.TrimSpace(t.Provider)) {
	case config.ProviderWhisperX, "":
		return whisperx.NewService(whisperx.Config{
			Model:       t.Model,
			CUDAEnabled: t.CUDAEnabled,
			VADMethod:   t.VADMethod,
			HFToken:     t.HFToken,
			TempDir:     cfg.Paths.TempDir,
		}), nil
	case config.ProviderOpenAI:
		return openai.NewTranscriber(openai.Config{
			APIKey:  t.APIKey,
			BaseURL: t.BaseURL,
			Model:   t.Model,
		}), nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, "transcribe", "configure",
			fmt.Sprintf("unsupported transcription provider %q", t.Provider), nil)
	}
}

// NewEmbedder returns the embedding adapter.
func NewEmbedder(cfg *config.Config) Embedder {
	e := cfg.Embedding
	return openai.NewEmbedder(openai.Config{
		APIKey:     e.APIKey,
		BaseURL:    e.BaseURL,
		Model:      e.Model,
		Dimensions: e.Dimensions,
		Timeout:    cfg.EmbeddingTimeout(),
	})
}
