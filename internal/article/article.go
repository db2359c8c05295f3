// Package article implements RFC 5322-ish article parsing: reading a
// dot-terminated stream off the wire, splitting headers from body,
// normalizing multivalued headers, and validating the mandatory header
// set required by spec.md §3.
//
// Grounded on the teacher's internal/nntp/nntp-cmd-posting.go
// readArticleData (header continuation handling, comma-split
// Newsgroups/References, dot-unstuffing).
package article

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-while/postus/internal/wire"
)

// Headers maps a lower-cased header name to its (possibly multiple)
// values. Newsgroups and References are split on "," at parse time per
// spec.md §3.
type Headers map[string][]string

// Get returns the first value for name, or "" if absent.
func (h Headers) Get(name string) string {
	vs := h[strings.ToLower(name)]
	if len(vs) == 0 {
		return ""
	}
	return vs[0]
}

// Values returns all values for name.
func (h Headers) Values(name string) []string {
	return h[strings.ToLower(name)]
}

// Set replaces all values for name with a single value.
func (h Headers) Set(name, value string) {
	h[strings.ToLower(name)] = []string{value}
}

// Has reports whether name has at least one value.
func (h Headers) Has(name string) bool {
	return len(h[strings.ToLower(name)]) > 0
}

// multivaluedCommaSplit header names that are split on "," into separate
// values (spec.md §3).
var multivaluedCommaSplit = map[string]bool{
	"newsgroups": true,
	"references": true,
}

// requiredHeaders must be present (post-normalization) for an article to
// validate, per spec.md §3.
var requiredHeaders = []string{"message-id", "newsgroups", "from", "subject", "date", "path"}

// Article is the (MessageId, Headers, body) tuple of spec.md §3. Body is
// stored verbatim as it arrived after dot-unstuffing, newline-joined.
type Article struct {
	ID      wire.MessageId
	Headers Headers
	Body    string
}

// ParseHeaders builds a Headers map from raw header lines (as returned by
// ReadDotTerminated), handling RFC 5322 continuation lines (leading
// space/tab) and comma-splitting the Newsgroups header.
func ParseHeaders(lines []string) Headers {
	h := make(Headers)
	currentName := ""
	for _, line := range lines {
		if line == "" {
			continue
		}
		if (line[0] == ' ' || line[0] == '\t') && currentName != "" {
			vals := h[currentName]
			if len(vals) > 0 {
				vals[len(vals)-1] = vals[len(vals)-1] + " " + strings.TrimSpace(line)
				h[currentName] = vals
			}
			continue
		}
		colon := strings.Index(line, ":")
		if colon < 0 {
			continue
		}
		name := strings.ToLower(strings.TrimSpace(line[:colon]))
		value := strings.TrimSpace(line[colon+1:])
		currentName = name
		if multivaluedCommaSplit[name] {
			for _, part := range strings.Split(value, ",") {
				part = strings.TrimSpace(part)
				if part != "" {
					h[name] = append(h[name], part)
				}
			}
		} else {
			h[name] = append(h[name], value)
		}
	}
	return h
}

// Validate checks the invariants spec.md §3 requires after header
// normalization: all required headers present, and exactly one
// Message-ID value.
func Validate(h Headers) error {
	for _, name := range requiredHeaders {
		if !h.Has(name) {
			return fmt.Errorf("article: missing required header %q", name)
		}
	}
	if len(h.Values("message-id")) != 1 {
		return fmt.Errorf("article: expected exactly one Message-ID, got %d", len(h.Values("message-id")))
	}
	return nil
}

// Newsgroups returns the article's Newsgroups header values in the order
// parsed.
func (a *Article) Newsgroups() []wire.NewsgroupName {
	vals := a.Headers.Values("newsgroups")
	out := make([]wire.NewsgroupName, 0, len(vals))
	for _, v := range vals {
		out = append(out, wire.NewsgroupName(v))
	}
	return out
}

// RenderHeaderLines renders every header as one "Name: value" line per
// value, for emission by ARTICLE/HEAD. Header names are sorted for
// deterministic output; spec.md does not require insertion-order
// preservation for reads (§9).
func (h Headers) RenderHeaderLines() []string {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []string
	for _, name := range names {
		display := canonicalHeaderName(name)
		for _, v := range h[name] {
			out = append(out, fmt.Sprintf("%s: %s", display, v))
		}
	}
	return out
}

// canonicalHeaderName title-cases hyphen-delimited header names for
// display, e.g. "message-id" -> "Message-ID".
func canonicalHeaderName(lower string) string {
	switch lower {
	case "message-id":
		return "Message-ID"
	}
	parts := strings.Split(lower, "-")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, "-")
}
