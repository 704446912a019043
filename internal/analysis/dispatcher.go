package analysis

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"mediasig/internal/fingerprint"
	"mediasig/internal/guard"
	"mediasig/internal/logging"
	"mediasig/internal/media/audio"
	"mediasig/internal/services"
	"mediasig/internal/transcribe"
)

// Fingerprinter produces an acoustic fingerprint for an audio file.
type Fingerprinter interface {
	Fingerprint(ctx context.Context, path, referenceDB string) (fingerprint.Outcome, error)
}

// FrameHasher samples and hashes video frames.
type FrameHasher interface {
	SampleAndHash(ctx context.Context, path string) ([]string, error)
}

// AudioNormalizer produces canonical audio for transcription.
type AudioNormalizer interface {
	Normalize(ctx context.Context, src string) (audio.Normalized, error)
}

// SpeechEmbedder transcribes audio and embeds the transcript.
type SpeechEmbedder interface {
	TranscribeAndEmbed(ctx context.Context, path, language string) (transcribe.Output, error)
}

// Dispatcher routes requests to the stage pipeline for their kind.
type Dispatcher struct {
	Fingerprinter Fingerprinter
	Frames        FrameHasher
	Normalizer    AudioNormalizer
	Speech        SpeechEmbedder
	// DefaultLanguage applies when a request carries no hint.
	DefaultLanguage string
	// Limits holds the transcript ceiling, checked against the request input
	// before normalization or transcription.
	Limits guard.Limits
	Logger *slog.Logger
}

// Dispatch validates req and runs its pipeline. The returned error is always
// an ErrValidation; every stage failure is logged and collapsed into the
// result.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (Result, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	ctx = services.WithKind(ctx, string(req.Kind))
	logger := logging.WithContext(ctx, logging.NewComponentLogger(d.Logger, "dispatcher"))

	start := time.Now()
	logger.Info("analysis started",
		logging.String(logging.FieldEventType, "analysis_started"),
		logging.String("file", req.FilePath),
	)

	var result Result
	switch req.Kind {
	case KindAudio:
		result = d.runAudio(ctx, logger, req)
	case KindVideo:
		result = d.runVideo(ctx, logger, req)
	case KindTranscript:
		if d.overLimit(logger, req) {
			result = TranscriptResult{Embedding: []float32{}}
			break
		}
		result = d.runSpeech(ctx, logger, req.FilePath, d.language(req))
	case KindText:
		if d.overLimit(logger, req) {
			result = TextResult{TranscriptResult{Embedding: []float32{}}}
			break
		}
		result = TextResult{d.runText(ctx, logger, req)}
	}

	logger.Info("analysis finished",
		logging.String(logging.FieldEventType, "analysis_finished"),
		logging.Duration("elapsed", time.Since(start)),
	)
	return result, nil
}

// overLimit stats the input without opening it. A stat failure is left to the
// stage itself.
func (d *Dispatcher) overLimit(logger *slog.Logger, req Request) bool {
	kind := string(req.Kind)
	if d.Limits.For(kind) <= 0 {
		return false
	}
	size, err := guard.Stat(req.FilePath)
	if err != nil || !d.Limits.Exceeds(kind, size) {
		return false
	}
	logger.Info("input exceeds transcript size limit; skipping",
		logging.String(logging.FieldEventType, "transcript_size_limit"),
		logging.Int64("size_bytes", size),
		logging.Int64("limit_bytes", d.Limits.For(kind)),
	)
	return true
}

func (d *Dispatcher) language(req Request) string {
	if hint := strings.TrimSpace(req.Language); hint != "" {
		return hint
	}
	return d.DefaultLanguage
}

func (d *Dispatcher) runAudio(ctx context.Context, logger *slog.Logger, req Request) AudioResult {
	if d.Fingerprinter == nil {
		logger.Warn("no fingerprinter configured", logging.String(logging.FieldEventType, "stage_unavailable"))
		return AudioResult{}
	}
	ctx = services.WithStage(ctx, "fingerprint")
	outcome, err := d.Fingerprinter.Fingerprint(ctx, req.FilePath, req.ReferenceDatabase)
	if err != nil {
		logging.StageFailure(logging.WithContext(ctx, logger), "fingerprint failed; returning no fingerprint", "fingerprint_failed", err)
		return AudioResult{}
	}
	if outcome.Hex == "" {
		return AudioResult{}
	}
	hexValue := outcome.Hex
	return AudioResult{AudioFingerprint: &hexValue, Matches: outcome.Matches}
}

func (d *Dispatcher) runVideo(ctx context.Context, logger *slog.Logger, req Request) VideoResult {
	if d.Frames == nil {
		logger.Warn("no frame hasher configured", logging.String(logging.FieldEventType, "stage_unavailable"))
		return VideoResult{FrameHashes: []string{}}
	}
	ctx = services.WithStage(ctx, "frame_hash")
	hashes, err := d.Frames.SampleAndHash(ctx, req.FilePath)
	if err != nil {
		logging.StageFailure(logging.WithContext(ctx, logger), "frame hashing failed; returning no hashes", "frame_hash_failed", err)
		return VideoResult{FrameHashes: []string{}}
	}
	if hashes == nil {
		hashes = []string{}
	}
	return VideoResult{FrameHashes: hashes}
}

func (d *Dispatcher) runSpeech(ctx context.Context, logger *slog.Logger, path, language string) TranscriptResult {
	if d.Speech == nil {
		logger.Warn("no transcriber configured", logging.String(logging.FieldEventType, "stage_unavailable"))
		return TranscriptResult{Embedding: []float32{}}
	}
	ctx = services.WithStage(ctx, "transcribe")
	out, err := d.Speech.TranscribeAndEmbed(ctx, path, language)
	if err != nil {
		logging.StageFailure(logging.WithContext(ctx, logger), "transcription failed; returning empty transcript", "transcribe_failed", err)
		return TranscriptResult{Embedding: []float32{}}
	}
	if out.Embedding == nil {
		out.Embedding = []float32{}
	}
	return TranscriptResult{Transcript: out.Transcript, Embedding: out.Embedding}
}

func (d *Dispatcher) runText(ctx context.Context, logger *slog.Logger, req Request) TranscriptResult {
	path := req.FilePath
	if d.Normalizer != nil {
		normCtx := services.WithStage(ctx, "normalize")
		normalized, err := d.Normalizer.Normalize(normCtx, req.FilePath)
		if err != nil {
			logging.StageFailure(logging.WithContext(normCtx, logger), "audio normalization failed; returning empty transcript", "normalize_failed", err)
			return TranscriptResult{Embedding: []float32{}}
		}
		defer normalized.Cleanup()
		path = normalized.Path
	}
	return d.runSpeech(ctx, logger, path, d.language(req))
}
