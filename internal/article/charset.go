package article

import (
	"mime"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// NormalizeHeaderValues decodes RFC 2047 MIME encoded-words and falls
// back to a Latin-1-to-UTF-8 conversion for header values that arrive as
// invalid UTF-8, the same two-step the teacher's models.ConvertToUTF8
// applies to newsgroup text (see DESIGN.md, SPEC_FULL.md §6.10). Parse
// applies it to every header value, so stored headers and all header
// output (ARTICLE/HEAD as well as OVER/XOVER) carry the normalized
// values; body text is kept verbatim per spec.md's "stored verbatim"
// invariant.
func NormalizeHeaderValues(h Headers) {
	dec := mime.WordDecoder{}
	for name, values := range h {
		for i, v := range values {
			if decoded, err := dec.DecodeHeader(v); err == nil {
				v = decoded
			}
			if !utf8.ValidString(v) {
				if fixed, _, err := transform.String(charmap.ISO8859_1.NewDecoder(), v); err == nil {
					v = fixed
				}
			}
			values[i] = v
		}
		h[name] = values
	}
}

// SanitizeOverviewField replaces CR, LF and TAB with a single space, the
// per-field sanitization spec.md §4.11 requires for every OVER field.
func SanitizeOverviewField(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch r {
		case '\r', '\n', '\t':
			out = append(out, ' ')
		default:
			out = append(out, r)
		}
	}
	return string(out)
}
