package languages

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Names reported by detectors that differ from the tags users configure.
var aliases = map[string]string{
	"Mandarin":              "Chinese",
	"Cantonese":             "Chinese",
	"Chinese (Simplified)":  "Chinese",
	"Chinese (Traditional)": "Chinese",
	"Simplified Chinese":    "Chinese",
	"Traditional Chinese":   "Chinese",
	"Farsi":                 "Persian",
}

// Canonical normalizes a language name to the form registry tags take:
// trimmed, title-cased, aliases resolved. Configured tags and detected
// names both pass through it so they compare equal.
func Canonical(name string) string {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return ""
	}
	// Casers keep state and are not shared between goroutines.
	name = cases.Title(language.English).String(name)
	if alias, ok := aliases[name]; ok {
		return alias
	}
	return name
}
