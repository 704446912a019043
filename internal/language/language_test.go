package language

import (
	"errors"
	"testing"

	"mediasig/internal/services"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"en", "en"},
		{"EN", "en"},
		{"en-US", "en"},
		{"pt-BR", "pt"},
		{"eng", "en"},
		{"spa", "es"},
		{"deu", "de"},
		{"fre", "fr"},
		{"ger", "de"},
		{"chi", "zh"},
		{"english", "en"},
		{"French", "fr"},
		{"", ""},
		{" ", ""},
		{"und", ""},
		{"auto", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Normalize(tt.input)
			if err != nil {
				t.Fatalf("Normalize(%q) returned error: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizeRejectsGarbage(t *testing.T) {
	for _, input := range []string{"not a language", "e_n!!", "12345"} {
		_, err := Normalize(input)
		if err == nil {
			t.Fatalf("expected error for %q", input)
		}
		if !errors.Is(err, services.ErrValidation) {
			t.Fatalf("expected validation error for %q, got %v", input, err)
		}
	}
}

func TestDisplayName(t *testing.T) {
	tests := map[string]string{
		"en":  "English",
		"fra": "French",
		"":    "Auto-detect",
	}
	for input, want := range tests {
		if got := DisplayName(input); got != want {
			t.Errorf("DisplayName(%q) = %q, want %q", input, got, want)
		}
	}
}
