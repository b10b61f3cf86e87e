// Package i18n selects the user-facing language and holds localized messages.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
)

// Default is used when nothing better is known.
const Default = "pl"

// Supported lists the language codes the application speaks. The first entry
// is the fallback.
var Supported = []string{"pl", "en", "de", "uk", "es"}

var (
	tags    = []language.Tag{language.Polish, language.English, language.German, language.Ukrainian, language.Spanish}
	matcher = language.NewMatcher(tags)
)

// IsSupported reports whether code is one of the supported languages.
func IsSupported(code string) bool {
	_, ok := Normalize(code)
	return ok
}

// Normalize maps a language code or tag ("en-US", "DE") to a supported code.
func Normalize(code string) (string, bool) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", false
	}
	tag, err := language.Parse(code)
	if err != nil {
		return "", false
	}
	base, _ := tag.Base()
	for _, s := range Supported {
		if base.String() == s {
			return s, true
		}
	}
	return "", false
}

// Match picks the best supported language for an Accept-Language header.
func Match(acceptLanguage string) string {
	if strings.TrimSpace(acceptLanguage) == "" {
		return Default
	}
	prefs, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(prefs) == 0 {
		return Default
	}
	_, idx, conf := matcher.Match(prefs...)
	if conf == language.No {
		return Default
	}
	return Supported[idx]
}

// Resolve applies the precedence explicit > user preference > header > default.
func Resolve(explicit, userPreferred, acceptLanguage string) string {
	if code, ok := Normalize(explicit); ok {
		return code
	}
	if code, ok := Normalize(userPreferred); ok {
		return code
	}
	return Match(acceptLanguage)
}
