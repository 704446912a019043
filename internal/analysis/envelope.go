package analysis

import (
	"errors"
	"strings"

	"mediasig/internal/services"
)

// FailureEnvelope is the top-level failure body. Trace is filled only when
// the operator enables it.
type FailureEnvelope struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
	Trace string `json:"trace,omitempty"`
}

// NewFailure builds the envelope for err. With includeTrace the full wrap
// chain is attached, outermost first.
func NewFailure(err error, includeTrace bool) FailureEnvelope {
	if err == nil {
		return FailureEnvelope{}
	}
	env := FailureEnvelope{Error: err.Error(), Kind: services.Kind(err)}
	if includeTrace {
		env.Trace = errorChain(err)
	}
	return env
}

func errorChain(err error) string {
	var lines []string
	for current := err; current != nil; current = errors.Unwrap(current) {
		lines = append(lines, current.Error())
	}
	return strings.Join(lines, "\n")
}
