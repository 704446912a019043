// Package openai adapts OpenAI-compatible HTTP APIs to the transcription and
// embedding ports. Any server speaking the OpenAI wire format works when
// BaseURL points at it (a local all-MiniLM embedding server, for example).
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	langpkg "mediasig/internal/language"
	"mediasig/internal/services"
)

// Config describes one OpenAI-compatible endpoint.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int
	Timeout    time.Duration
}

// Default models.
const (
	DefaultEmbeddingModel     = string(goopenai.SmallEmbedding3)
	DefaultTranscriptionModel = goopenai.Whisper1
)

// emptyInputPlaceholder stands in for an empty transcript: the embeddings API
// rejects empty input, and callers still need a vector of the model's size.
const emptyInputPlaceholder = " "

func newAPIClient(cfg Config) *goopenai.Client {
	clientCfg := goopenai.DefaultConfig(cfg.APIKey)
	if base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); base != "" {
		clientCfg.BaseURL = base
	}
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	return goopenai.NewClientWithConfig(clientCfg)
}

// HealthCheck lists models to confirm the endpoint is reachable and the key accepted.
func HealthCheck(ctx context.Context, cfg Config) error {
	if _, err := newAPIClient(cfg).ListModels(ctx); err != nil {
		return describeAPIError(err)
	}
	return nil
}

// Embedder produces sentence embeddings.
type Embedder struct {
	client *goopenai.Client
	model  string
	dims   int
}

// NewEmbedder constructs an Embedder for cfg.
func NewEmbedder(cfg Config) *Embedder {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultEmbeddingModel
	}
	return &Embedder{client: newAPIClient(cfg), model: model, dims: cfg.Dimensions}
}

// Model returns the embedding model name for logging.
func (e *Embedder) Model() string { return e.model }

// Embed returns the embedding vector for text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	input := text
	if strings.TrimSpace(input) == "" {
		input = emptyInputPlaceholder
	}
	resp, err := e.client.CreateEmbeddings(ctx, goopenai.EmbeddingRequest{
		Input:      []string{input},
		Model:      goopenai.EmbeddingModel(e.model),
		Dimensions: e.dims,
	})
	if err != nil {
		return nil, services.Wrap(services.ErrModel, "embed", "create embeddings", e.model, describeAPIError(err))
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, services.Wrap(services.ErrModel, "embed", "create embeddings", "response contained no vectors", nil)
	}
	return resp.Data[0].Embedding, nil
}

// Transcriber converts speech to text through the audio transcription endpoint.
type Transcriber struct {
	client *goopenai.Client
	model  string
}

// NewTranscriber constructs a Transcriber for cfg.
func NewTranscriber(cfg Config) *Transcriber {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultTranscriptionModel
	}
	return &Transcriber{client: newAPIClient(cfg), model: model}
}

// Model returns the transcription model name for logging.
func (t *Transcriber) Model() string { return t.model }

// Transcribe uploads the audio file at path and returns the recognized text.
func (t *Transcriber) Transcribe(ctx context.Context, path, language string) (string, error) {
	req := goopenai.AudioRequest{
		Model:    t.model,
		FilePath: path,
		Format:   goopenai.AudioResponseFormatJSON,
	}
	if lang, err := langpkg.Normalize(language); err == nil {
		req.Language = lang
	}
	resp, err := t.client.CreateTranscription(ctx, req)
	if err != nil {
		return "", services.Wrap(services.ErrModel, "transcribe", "create transcription", t.model, describeAPIError(err))
	}
	return strings.TrimSpace(resp.Text), nil
}

func describeAPIError(err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("api status %d: %s: %w", apiErr.HTTPStatusCode, apiErr.Message, err)
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("api status %d: %w", reqErr.HTTPStatusCode, err)
	}
	return err
}
