// Package sanitize normalizes feed metadata for broadcast. The encoder
// and downstream receiver units only understand printable ASCII, so
// fields are folded to that range, uppercased and whitespace-collapsed
// before they enter the pipeline.
package sanitize

import (
	"strings"
	"unicode"
)

// DisplayTextLimit is the encoder's bound on the TEXT value
const DisplayTextLimit = 64

// latinFold maps the accented Latin runes that show up in real-world
// track metadata to their ASCII base letters. Anything not covered here
// and outside ASCII is dropped.
var latinFold = map[rune]string{
	'À': "A", 'Á': "A", 'Â': "A", 'Ã': "A", 'Ä': "A", 'Å': "A", 'Æ': "AE",
	'Ç': "C", 'È': "E", 'É': "E", 'Ê': "E", 'Ë': "E",
	'Ì': "I", 'Í': "I", 'Î': "I", 'Ï': "I",
	'Ñ': "N", 'Ò': "O", 'Ó': "O", 'Ô': "O", 'Õ': "O", 'Ö': "O", 'Ø': "O",
	'Ù': "U", 'Ú': "U", 'Û': "U", 'Ü': "U", 'Ý': "Y", 'ß': "SS",
	'à': "a", 'á': "a", 'â': "a", 'ã': "a", 'ä': "a", 'å': "a", 'æ': "ae",
	'ç': "c", 'è': "e", 'é': "e", 'ê': "e", 'ë': "e",
	'ì': "i", 'í': "i", 'î': "i", 'ï': "i",
	'ñ': "n", 'ò': "o", 'ó': "o", 'ô': "o", 'õ': "o", 'ö': "o", 'ø': "o",
	'ù': "u", 'ú': "u", 'û': "u", 'ü': "u", 'ý': "y", 'ÿ': "y",
	'’': "'", '‘': "'", '“': `"`, '”': `"`, '–': "-", '—': "-", '…': "...",
}

// Field sanitizes one metadata field: fold to ASCII, drop what cannot
// be folded, uppercase, collapse runs of whitespace and trim.
func Field(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))

	for _, r := range raw {
		switch {
		case r <= unicode.MaxASCII && unicode.IsPrint(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		default:
			if folded, ok := latinFold[r]; ok {
				b.WriteString(folded)
			}
		}
	}

	return strings.ToUpper(strings.Join(strings.Fields(b.String()), " "))
}

// Truncate bounds s to limit bytes. Sanitized text is pure ASCII, so
// byte and character counts agree.
func Truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
