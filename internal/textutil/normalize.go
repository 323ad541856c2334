// Package textutil holds the value coercions applied to feed cells and
// request input: key normalization, accent folding, truthy tokens and
// numeric parsing.
package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes s and drops combining marks ("Categoría" -> "Categoria").
func stripMarks(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// NormalizeKey turns a header cell into a matching key: diacritics removed,
// lowercased, every run of non [a-z0-9] characters collapsed to a single
// underscore and leading/trailing underscores trimmed.
//
//	NormalizeKey("  Código Producto ") == "codigo_producto"
func NormalizeKey(s string) string {
	s = strings.ToLower(stripMarks(s))

	var b strings.Builder
	b.Grow(len(s))
	pendingSep := false
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	return b.String()
}

// Fold removes diacritics and lowercases s. It is the comparison form used
// for catalog search; unlike NormalizeKey it keeps punctuation and spaces.
func Fold(s string) string {
	if s == "" {
		return ""
	}
	return strings.ToLower(stripMarks(s))
}
