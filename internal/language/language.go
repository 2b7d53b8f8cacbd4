// Package language normalizes the language tags collected by the setup
// wizard (UI language, default content language) into the lowercase BCP-47
// form the rest of the application stores and compares.
package language

import (
	"strings"

	"golang.org/x/text/language"
)

// Normalize parses code as a BCP-47 tag and returns its canonical form in
// lowercase (e.g. "DE-de" becomes "de-de"). Unparseable or empty input
// returns fallback unchanged; the wizard must never fail a save over a
// cosmetic language value.
func Normalize(code, fallback string) string {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return fallback
	}
	tag, err := language.Parse(trimmed)
	if err != nil {
		return fallback
	}
	return strings.ToLower(tag.String())
}

// IsValid reports whether code parses as a BCP-47 language tag.
func IsValid(code string) bool {
	_, err := language.Parse(strings.TrimSpace(code))
	return err == nil
}
