// Package wildmat implements the RFC 3977 §4.2 wildmat pattern language
// used by LIST, NEWGROUPS and NEWNEWS: *, ?, [set], [!set], backslash
// escapes, and comma-separated alternation with leading "!" exclusion.
//
// This generalizes the teacher's INN2-style send/exclude/reject pattern
// matcher (which only supported "*"/"?") to the full wildmat grammar;
// see DESIGN.md for the grounding note.
package wildmat

import (
	"strings"
)

// subPattern is one compiled comma-separated term of a wildmat expression.
type subPattern struct {
	exclusive bool // true if the term was prefixed with "!"
	glob      string
}

// Pattern is a compiled wildmat expression, ready to be evaluated
// repeatedly against candidate strings without re-parsing.
type Pattern struct {
	inclusive []subPattern
	exclusive []subPattern
}

// Compile parses a wildmat expression into a reusable Pattern. An empty
// expression compiles to a Pattern that matches everything (spec.md §4.6:
// "when absent, match all groups").
func Compile(expr string) *Pattern {
	p := &Pattern{}
	if expr == "" {
		return p
	}
	for _, term := range splitUnescaped(expr, ',') {
		if term == "" {
			continue
		}
		if strings.HasPrefix(term, "!") {
			p.exclusive = append(p.exclusive, subPattern{exclusive: true, glob: term[1:]})
		} else {
			p.inclusive = append(p.inclusive, subPattern{glob: term})
		}
	}
	return p
}

// Match reports whether s matches the compiled wildmat: at least one
// inclusive sub-pattern matches (or there are none, the "match all" case)
// AND no exclusive sub-pattern matches. Exclusion overrides inclusion.
func (p *Pattern) Match(s string) bool {
	included := len(p.inclusive) == 0
	for _, sp := range p.inclusive {
		if matchGlob(s, sp.glob) {
			included = true
			break
		}
	}
	if !included {
		return false
	}
	for _, sp := range p.exclusive {
		if matchGlob(s, sp.glob) {
			return false
		}
	}
	return true
}

// splitUnescaped splits s on sep, ignoring occurrences of sep preceded by
// an unescaped backslash.
func splitUnescaped(s string, sep byte) []string {
	var parts []string
	var cur strings.Builder
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			cur.WriteByte(c)
			escaped = false
		case c == '\\':
			cur.WriteByte(c)
			escaped = true
		case c == sep:
			parts = append(parts, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	parts = append(parts, cur.String())
	return parts
}

// matchGlob matches text against a single wildmat glob (no comma
// alternation or "!"/exclusion prefix at this level — those are handled
// by Pattern.Match).
func matchGlob(text, glob string) bool {
	return matchRunes([]rune(text), []rune(glob))
}

func matchRunes(text, pat []rune) bool {
	// Fast path: no '*' means a direct length-bounded walk suffices, but
	// the general recursive matcher below handles both cases uniformly.
	return matchAt(text, pat, 0, 0)
}

func matchAt(text, pat []rune, ti, pi int) bool {
	for pi < len(pat) {
		switch pat[pi] {
		case '*':
			// Collapse consecutive '*' and try every split point.
			for pi < len(pat) && pat[pi] == '*' {
				pi++
			}
			if pi == len(pat) {
				return true
			}
			for i := ti; i <= len(text); i++ {
				if matchAt(text, pat, i, pi) {
					return true
				}
			}
			return false
		case '?':
			if ti >= len(text) {
				return false
			}
			ti++
			pi++
		case '[':
			end, negate, set := parseClass(pat, pi)
			if end < 0 {
				// Malformed class: treat '[' as a literal.
				if ti >= len(text) || text[ti] != '[' {
					return false
				}
				ti++
				pi++
				continue
			}
			if ti >= len(text) {
				return false
			}
			if classMatches(set, text[ti]) == negate {
				return false
			}
			ti++
			pi = end
		case '\\':
			if pi+1 < len(pat) {
				pi++
			}
			if ti >= len(text) || text[ti] != pat[pi] {
				return false
			}
			ti++
			pi++
		default:
			if ti >= len(text) || text[ti] != pat[pi] {
				return false
			}
			ti++
			pi++
		}
	}
	return ti == len(text)
}

// parseClass parses a "[...]" character class starting at pat[start] == '['.
// It returns the index just past the closing ']', whether the class is
// negated ("[!...]"), and the literal set of characters (escapes resolved).
// Returns end == -1 if no closing ']' is found.
func parseClass(pat []rune, start int) (end int, negate bool, set []rune) {
	i := start + 1
	if i < len(pat) && pat[i] == '!' {
		negate = true
		i++
	}
	first := true
	for i < len(pat) {
		c := pat[i]
		if c == ']' && !first {
			return i + 1, negate, set
		}
		first = false
		if c == '\\' && i+1 < len(pat) {
			i++
			set = append(set, pat[i])
			i++
			continue
		}
		set = append(set, c)
		i++
	}
	return -1, false, nil
}

func classMatches(set []rune, c rune) bool {
	for _, r := range set {
		if r == c {
			return true
		}
	}
	return false
}

// MatchAny is a convenience for one-shot matching without keeping the
// compiled Pattern around.
func MatchAny(expr, s string) bool {
	return Compile(expr).Match(s)
}
