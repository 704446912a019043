package analysis

import (
	"strings"

	"mediasig/internal/guard"
	"mediasig/internal/language"
	"mediasig/internal/services"
)

// Request asks for one analysis of a local file.
type Request struct {
	FilePath string `json:"filePath"`
	Kind     Kind   `json:"kind"`
	// Language is an optional ISO 639 / BCP 47 hint for transcription.
	Language string `json:"language,omitempty"`
	// ReferenceDatabase is an optional fingerprint database to match audio against.
	ReferenceDatabase string `json:"referenceDatabase,omitempty"`
}

// Validate rejects requests that cannot be dispatched: unknown kind, blank,
// missing, unreadable or non-regular file, unparseable language hint.
func Validate(req Request) error {
	if !req.Kind.Valid() {
		return invalidKind(string(req.Kind))
	}
	if strings.TrimSpace(req.FilePath) == "" {
		return services.Wrap(services.ErrValidation, "analysis", "validate request", "filePath is required", nil)
	}
	if _, err := guard.Check(req.FilePath); err != nil {
		return err
	}
	if _, err := language.Normalize(req.Language); err != nil {
		return err
	}
	return nil
}
