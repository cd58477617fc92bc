package util

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var asciiFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// ASCIIFileName folds accents ("Résumé" -> "Resume") and drops whatever is
// still outside printable ASCII.
func ASCIIFileName(name string) string {
	folded, _, err := transform.String(asciiFold, name)
	if err != nil {
		folded = name
	}
	var b strings.Builder
	for _, r := range folded {
		if r >= 0x20 && r < 0x7f && r != '/' && r != '\\' {
			b.WriteRune(r)
		}
	}
	out := strings.TrimSpace(b.String())
	if out == "" {
		return "file"
	}
	return out
}

// ObjectKey builds the storage key "<unix-ms>-<kind>-<ascii name>".
func ObjectKey(now time.Time, kind, fileName string) string {
	return fmt.Sprintf("%d-%s-%s", now.UnixMilli(), kind, ASCIIFileName(fileName))
}
