package cook

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Fallback names for unnamed outputs.
const (
	FallbackObject = "emptyObject"
	FallbackGeo    = "emptyGeo"
	FallbackPart   = "emptyPart"
)

// SanitizeNodeName turns a cook name into a valid host node name.
//
// The name is NFC normalised, every rune outside [A-Za-z0-9_] becomes '_',
// and a leading digit gets a '_' prefix. An empty name yields fallback.
func SanitizeNodeName(name, fallback string) string {
	name = norm.NFC.String(strings.TrimSpace(name))
	if name == "" {
		return fallback
	}
	var b strings.Builder
	for i, r := range name {
		if i == 0 && unicode.IsDigit(r) {
			b.WriteByte('_')
		}
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

// Basename returns the part of a path after the last '/'.
func Basename(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}
