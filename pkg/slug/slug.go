// Package slug genera slugs URL-safe a partir de nombres con acentos o
// caracteres fuera de ASCII.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Make convierte un nombre en slug: minúsculas, sin marcas diacríticas y con
// los separadores colapsados a un guion. "Bodega Medellín" -> "bodega-medellin".
func Make(name string) string {
	clean, _, err := transform.String(deaccent, name)
	if err != nil {
		clean = name
	}
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(clean) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
		default:
			pendingDash = true
		}
	}
	return b.String()
}
