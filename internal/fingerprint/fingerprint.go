package fingerprint

import (
	"context"
	"encoding/hex"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"mediasig/internal/fileutil"
	"mediasig/internal/guard"
	"mediasig/internal/logging"
	"mediasig/internal/services"
)

// MaxHexLength bounds the rendered fingerprint: the first 64 bytes of the engine output.
const MaxHexLength = 128

// Outcome is the result of one fingerprint call.
type Outcome struct {
	// Hex is empty when the stage was skipped by the size guard.
	Hex     string
	Matches []Match
}

// Fingerprinter turns an audio file into a hex fingerprint through an Engine.
type Fingerprinter struct {
	Engine  Engine
	TempDir string
	// MaxBytes skips inputs larger than this without invoking the engine. Zero disables the check.
	MaxBytes int64
	Logger   *slog.Logger
}

// Fingerprint returns the truncated hex fingerprint of path. When referenceDB
// is set, matches from the engine are attached; a failed match only drops them.
func (f *Fingerprinter) Fingerprint(ctx context.Context, path, referenceDB string) (Outcome, error) {
	logger := logging.WithContext(ctx, logging.NewComponentLogger(f.Logger, "fingerprint"))
	if f.Engine == nil {
		return Outcome{}, services.Wrap(services.ErrConfiguration, "fingerprint", "engine", "no fingerprint engine configured", nil)
	}

	if f.MaxBytes > 0 {
		size, err := guard.Stat(path)
		if err != nil {
			return Outcome{}, services.Wrap(services.ErrToolInvocation, "fingerprint", "stat input", path, err)
		}
		if size > f.MaxBytes {
			logger.Info("audio exceeds size limit; skipping fingerprint",
				logging.String(logging.FieldEventType, "audio_size_limit"),
				logging.Int64("size_bytes", size),
				logging.Int64("limit_bytes", f.MaxBytes),
			)
			return Outcome{}, nil
		}
	}

	dir, cleanup, err := fileutil.PrivateTempDir(f.TempDir, "mediasig-afp-*")
	if err != nil {
		return Outcome{}, services.Wrap(services.ErrToolInvocation, "fingerprint", "create temp dir", "", err)
	}
	defer cleanup()
	dbPath := filepath.Join(dir, "fingerprint.afp")

	if err := f.Engine.Fingerprint(ctx, path, dbPath); err != nil {
		return Outcome{}, services.Wrap(services.ErrToolInvocation, "fingerprint", "run engine", "", err)
	}
	raw, err := os.ReadFile(dbPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Outcome{}, services.Wrap(services.ErrToolInvocation, "fingerprint", "read output", "engine produced no database", nil)
		}
		return Outcome{}, services.Wrap(services.ErrToolInvocation, "fingerprint", "read output", "", err)
	}
	if len(raw) == 0 {
		return Outcome{}, services.Wrap(services.ErrToolInvocation, "fingerprint", "read output", "engine produced an empty database", nil)
	}

	outcome := Outcome{Hex: Truncate(hex.EncodeToString(raw))}
	if strings.TrimSpace(referenceDB) != "" {
		matches, err := f.Engine.Match(ctx, path, referenceDB)
		if err != nil {
			logging.StageFailure(logger, "reference match failed; returning fingerprint only", "match_failed", err,
				logging.String("reference_db", referenceDB))
		} else {
			outcome.Matches = matches
		}
	}

	logger.Info("audio fingerprinted",
		logging.String(logging.FieldEventType, "audio_fingerprinted"),
		logging.Int("raw_bytes", len(raw)),
		logging.Int("matches", len(outcome.Matches)),
	)
	return outcome, nil
}

// Truncate keeps the first MaxHexLength characters of a hex string.
func Truncate(hexValue string) string {
	if len(hexValue) > MaxHexLength {
		return hexValue[:MaxHexLength]
	}
	return hexValue
}
