package analysis

import (
	"log/slog"

	"mediasig/internal/config"
	"mediasig/internal/fingerprint"
	"mediasig/internal/guard"
	"mediasig/internal/media/audio"
	"mediasig/internal/media/frames"
	"mediasig/internal/transcribe"
	"mediasig/internal/videohash"
)

// New wires the production stage adapters described by cfg.
func New(cfg *config.Config, logger *slog.Logger) (*Dispatcher, error) {
	limits := guard.Limits{
		Video:      cfg.Limits.MaxVideoBytes,
		Audio:      cfg.Limits.MaxAudioBytes,
		Transcript: cfg.Limits.MaxTranscriptBytes,
	}

	speech, err := transcribe.NewFromConfig(cfg, logger)
	if err != nil {
		return nil, err
	}

	return &Dispatcher{
		Fingerprinter: &fingerprint.Fingerprinter{
			Engine:   fingerprint.NewAudfprint(cfg.Tools.Python, cfg.Tools.AudfprintScript),
			TempDir:  cfg.Paths.TempDir,
			MaxBytes: limits.For(string(KindAudio)),
			Logger:   logger,
		},
		Frames: &videohash.Sampler{
			Source: frames.FFmpegSource{
				FFmpegBinary:  cfg.FFmpegBinary(),
				FFprobeBinary: cfg.FFprobeBinary(),
			},
			Interval:  cfg.FrameInterval(),
			MaxFrames: cfg.Video.MaxFrames,
			MaxBytes:  limits.For(string(KindVideo)),
			Logger:    logger,
		},
		Normalizer: &audio.Normalizer{
			FFmpegBinary: cfg.FFmpegBinary(),
			TempDir:      cfg.Paths.TempDir,
			Logger:       logger,
		},
		Speech:          speech,
		Limits:          limits,
		DefaultLanguage: cfg.Transcription.Language,
		Logger:          logger,
	}, nil
}
