package analysis

import (
	"encoding/json"

	"mediasig/internal/fingerprint"
	"mediasig/internal/services"
)

// Result is one of AudioResult, VideoResult, TranscriptResult or TextResult.
type Result interface {
	Kind() Kind
	isResult()
}

// AudioResult carries the acoustic fingerprint. A nil AudioFingerprint means
// the fingerprint stage failed or was skipped.
type AudioResult struct {
	AudioFingerprint *string             `json:"audioFingerprint"`
	Matches          []fingerprint.Match `json:"matches,omitempty"`
}

// VideoResult carries perceptual frame hashes in timestamp order.
type VideoResult struct {
	FrameHashes []string `json:"frameHashes"`
}

// TranscriptResult carries a transcript and its embedding.
type TranscriptResult struct {
	Transcript string    `json:"transcript"`
	Embedding  []float32 `json:"embedding"`
}

// TextResult is a TranscriptResult produced from normalized audio.
type TextResult struct {
	TranscriptResult
}

// ScanTypeText tags TextResult envelopes.
const ScanTypeText = "text"

func (AudioResult) Kind() Kind      { return KindAudio }
func (VideoResult) Kind() Kind      { return KindVideo }
func (TranscriptResult) Kind() Kind { return KindTranscript }
func (TextResult) Kind() Kind       { return KindText }

func (AudioResult) isResult()      {}
func (VideoResult) isResult()      {}
func (TranscriptResult) isResult() {}
func (TextResult) isResult()       {}

// MarshalJSON renders a nil hash list as [].
func (r VideoResult) MarshalJSON() ([]byte, error) {
	hashes := r.FrameHashes
	if hashes == nil {
		hashes = []string{}
	}
	return json.Marshal(struct {
		FrameHashes []string `json:"frameHashes"`
	}{hashes})
}

type transcriptWire struct {
	ScanType   string    `json:"scanType,omitempty"`
	Transcript string    `json:"transcript"`
	Embedding  []float32 `json:"embedding"`
}

func (r TranscriptResult) wire(scanType string) transcriptWire {
	embedding := r.Embedding
	if embedding == nil {
		embedding = []float32{}
	}
	return transcriptWire{ScanType: scanType, Transcript: r.Transcript, Embedding: embedding}
}

// MarshalJSON renders a nil embedding as [].
func (r TranscriptResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.wire(""))
}

// MarshalJSON adds the scanType tag.
func (r TextResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.TranscriptResult.wire(ScanTypeText))
}

// DecodeResult rebuilds the variant for kind from its JSON envelope.
func DecodeResult(kind Kind, raw []byte) (Result, error) {
	var (
		result Result
		err    error
	)
	switch kind {
	case KindAudio:
		var r AudioResult
		err = json.Unmarshal(raw, &r)
		result = r
	case KindVideo:
		var r VideoResult
		err = json.Unmarshal(raw, &r)
		if r.FrameHashes == nil {
			r.FrameHashes = []string{}
		}
		result = r
	case KindTranscript, KindText:
		var w transcriptWire
		err = json.Unmarshal(raw, &w)
		tr := TranscriptResult{Transcript: w.Transcript, Embedding: w.Embedding}
		if tr.Embedding == nil {
			tr.Embedding = []float32{}
		}
		if kind == KindText {
			result = TextResult{tr}
		} else {
			result = tr
		}
	default:
		return nil, invalidKind(string(kind))
	}
	if err != nil {
		return nil, services.Wrap(services.ErrDecode, "analysis", "decode result", string(kind), err)
	}
	return result, nil
}

// Fields flattens a result into its envelope keys, for callers that merge it
// with other fields such as a job status.
func Fields(result Result) (map[string]any, error) {
	raw, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	fields := map[string]any{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// Empty returns the fully-collapsed result for kind.
func Empty(kind Kind) Result {
	switch kind {
	case KindAudio:
		return AudioResult{}
	case KindVideo:
		return VideoResult{FrameHashes: []string{}}
	case KindText:
		return TextResult{TranscriptResult{Embedding: []float32{}}}
	default:
		return TranscriptResult{Embedding: []float32{}}
	}
}
