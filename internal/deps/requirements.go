package deps

import "mediasig/internal/config"

// Requirements lists the external tools the configured pipeline invokes.
func Requirements(cfg *config.Config) []Requirement {
	if cfg == nil {
		return nil
	}
	reqs := []Requirement{
		{Name: "FFmpeg", Command: cfg.FFmpegBinary(), Description: "Audio normalization and frame extraction"},
		{Name: "FFprobe", Command: cfg.FFprobeBinary(), Description: "Video stream inspection"},
		{Name: "Python", Command: cfg.Tools.Python, Description: "Runs the audfprint fingerprinter"},
		{Name: "audfprint", Command: cfg.Tools.AudfprintScript, Description: "Landmark fingerprint script", File: true},
	}
	reqs = append(reqs, Requirement{
		Name:        "uvx",
		Command:     "uvx",
		Description: "Launches WhisperX transcription",
		Optional:    cfg.Transcription.Provider != config.ProviderWhisperX,
	})
	return reqs
}
