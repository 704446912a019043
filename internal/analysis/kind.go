package analysis

import (
	"fmt"
	"strings"

	"mediasig/internal/services"
)

// Kind selects an analysis pipeline.
type Kind string

const (
	KindAudio      Kind = "audio"
	KindVideo      Kind = "video"
	KindTranscript Kind = "transcript"
	KindText       Kind = "text"
)

// Kinds lists every supported kind in display order.
func Kinds() []Kind {
	return []Kind{KindAudio, KindVideo, KindTranscript, KindText}
}

// ParseKind accepts a kind name case-insensitively.
func ParseKind(value string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(value)))
	if k.Valid() {
		return k, nil
	}
	return "", invalidKind(value)
}

func invalidKind(value string) error {
	return services.Wrap(services.ErrValidation, "analysis", "parse kind",
		fmt.Sprintf("unsupported kind %q (want audio, video, transcript or text)", value), nil)
}

// Valid reports whether k is one of the supported kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindAudio, KindVideo, KindTranscript, KindText:
		return true
	}
	return false
}

func (k Kind) String() string { return string(k) }
