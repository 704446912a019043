package language

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"mediasig/internal/services"
)

// Bibliographic ISO 639-2 codes and English words that BCP-47 parsing does
// not accept on its own.
var aliases = map[string]string{
	"fre":        "fr",
	"ger":        "de",
	"chi":        "zh",
	"dut":        "nl",
	"english":    "en",
	"spanish":    "es",
	"french":     "fr",
	"german":     "de",
	"italian":    "it",
	"portuguese": "pt",
	"japanese":   "ja",
	"korean":     "ko",
	"chinese":    "zh",
	"russian":    "ru",
	"arabic":     "ar",
	"hindi":      "hi",
	"dutch":      "nl",
	"polish":     "pl",
	"swedish":    "sv",
}

// Normalize converts a language hint to the ISO 639-1 code the transcription
// models expect. An empty hint (or "und"/"auto") means auto-detect and yields "".
func Normalize(hint string) (string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(hint))
	switch trimmed {
	case "", "und", "auto":
		return "", nil
	}
	if mapped, ok := aliases[trimmed]; ok {
		trimmed = mapped
	}
	tag, err := language.Parse(trimmed)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "language", "parse hint", "unrecognized language "+hint, err)
	}
	base, confidence := tag.Base()
	if confidence == language.No || base.String() == "und" {
		return "", services.Wrap(services.ErrValidation, "language", "parse hint", "unrecognized language "+hint, nil)
	}
	return base.String(), nil
}

// DisplayName returns the English name for a hint. Empty hints read as
// "Auto-detect"; unknown hints are echoed upper-cased.
func DisplayName(hint string) string {
	trimmed := strings.TrimSpace(hint)
	code, err := Normalize(trimmed)
	if err != nil {
		return strings.ToUpper(trimmed)
	}
	if code == "" {
		return "Auto-detect"
	}
	base, err := language.ParseBase(code)
	if err != nil {
		return strings.ToUpper(code)
	}
	if name := display.English.Languages().Name(base); name != "" {
		return name
	}
	return strings.ToUpper(code)
}
