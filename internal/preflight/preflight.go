package preflight

import (
	"context"

	"mediasig/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// minScratchBytes is the free space expected in the temp dir: normalized
// 16 kHz mono PCM runs about 115 MiB per hour of input.
const minScratchBytes = 1 << 30

// RunAll executes the preflight checks that apply to the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Temp directory", cfg.Paths.TempDir),
		CheckDirectoryAccess("Upload directory", cfg.Paths.UploadDir),
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
		CheckFreeSpace("Temp free space", cfg.Paths.TempDir, minScratchBytes),
		CheckEmbedding(ctx, cfg),
	}
	if cfg.Transcription.Provider == config.ProviderOpenAI {
		results = append(results, CheckTranscriptionAPI(ctx, cfg))
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
