// Package transcribe turns speech into text and text into a semantic vector.
package transcribe

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"mediasig/internal/language"
	"mediasig/internal/logging"
	"mediasig/internal/services"
)

// Transcriber converts speech in an audio file to text.
type Transcriber interface {
	Transcribe(ctx context.Context, path, language string) (string, error)
}

// Embedder encodes text into a fixed-dimension vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Output pairs a transcript with its embedding. Embedding is never nil.
type Output struct {
	Transcript string
	Embedding  []float32
}

// Empty is the collapsed result of a failed stage.
func Empty() Output {
	return Output{Embedding: []float32{}}
}

// Service runs a Transcriber followed by an Embedder.
type Service struct {
	Transcriber Transcriber
	Embedder    Embedder
	Logger      *slog.Logger
}

// TranscribeAndEmbed transcribes path and embeds the transcript. Failures of
// either model are ErrModel and come back with Empty().
func (s *Service) TranscribeAndEmbed(ctx context.Context, path, lang string) (Output, error) {
	logger := logging.WithContext(ctx, logging.NewComponentLogger(s.Logger, "transcribe"))
	if s.Transcriber == nil || s.Embedder == nil {
		return Empty(), services.Wrap(services.ErrConfiguration, "transcribe", "models", "transcriber and embedder are required", nil)
	}

	start := time.Now()
	text, err := s.Transcriber.Transcribe(ctx, path, lang)
	if err != nil {
		return Empty(), services.Wrap(services.ErrModel, "transcribe", "speech recognition", "", err)
	}
	vector, err := s.Embedder.Embed(ctx, text)
	if err != nil {
		return Empty(), services.Wrap(services.ErrModel, "transcribe", "embedding", "", err)
	}
	if vector == nil {
		vector = []float32{}
	}
	for i, v := range vector {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return Empty(), services.Wrap(services.ErrModel, "transcribe", "embedding", fmt.Sprintf("non-finite value at index %d", i), nil)
		}
	}

	logger.Info("transcript embedded",
		logging.String(logging.FieldEventType, "transcript_embedded"),
		logging.Int("transcript_chars", len(text)),
		logging.Int("dimensions", len(vector)),
		logging.String("language", language.DisplayName(lang)),
		logging.Duration("elapsed", time.Since(start)),
	)
	return Output{Transcript: text, Embedding: vector}, nil
}
