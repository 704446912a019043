package services_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"mediasig/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExtraction, "normalize", "ffmpeg", "exit status 1", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExtraction) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"normalize", "ffmpeg", "exit status 1"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrToolInvocation) {
		t.Fatalf("expected default marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestKindMapping(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{services.Wrap(services.ErrValidation, "guard", "check", "missing", nil), "validation"},
		{services.Wrap(services.ErrExtraction, "normalize", "", "", nil), "extraction"},
		{services.Wrap(services.ErrToolInvocation, "fingerprint", "", "", nil), "tool_invocation"},
		{services.Wrap(services.ErrDecode, "videohash", "", "", nil), "decode"},
		{services.Wrap(services.ErrModel, "transcribe", "", "", nil), "model"},
		{fmt.Errorf("outer: %w", services.ErrNotFound), "not_found"},
		{errors.New("plain"), "internal"},
	}
	for _, tc := range cases {
		if got := services.Kind(tc.err); got != tc.want {
			t.Fatalf("Kind(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestIsUserFacing(t *testing.T) {
	if !services.IsUserFacing(services.Wrap(services.ErrValidation, "", "", "bad kind", nil)) {
		t.Fatal("validation errors should surface")
	}
	if services.IsUserFacing(services.Wrap(services.ErrDecode, "", "", "", nil)) {
		t.Fatal("decode errors should collapse")
	}
}
