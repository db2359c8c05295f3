// Package wire implements the RFC 3977 wire primitives: message and
// newsgroup identifiers, article numbers, compact date/time, and the
// dot-stuffing transport escape.
package wire

import (
	"fmt"
	"strings"
)

// MessageId is an opaque article identifier of the form <id-left@id-right>.
type MessageId string

// ParseMessageId validates and returns a MessageId. The form required is a
// non-empty token wrapped in angle brackets; a "@" separator is preferred
// but not mandated beyond that, matching spec.md §3's "at minimum a
// non-empty token wrapped in <...>" fallback.
func ParseMessageId(s string) (MessageId, error) {
	if len(s) < 3 || s[0] != '<' || s[len(s)-1] != '>' {
		return "", fmt.Errorf("wire: invalid message-id %q", s)
	}
	inner := s[1 : len(s)-1]
	if inner == "" {
		return "", fmt.Errorf("wire: empty message-id %q", s)
	}
	if strings.ContainsAny(inner, " \t\r\n") {
		return "", fmt.Errorf("wire: message-id contains whitespace %q", s)
	}
	return MessageId(s), nil
}

// String returns the wire form, e.g. "<foo@bar>".
func (m MessageId) String() string { return string(m) }

// NewsgroupName is a dot-separated hierarchical newsgroup label.
type NewsgroupName string

// ParseNewsgroupName validates a newsgroup name: non-empty, no whitespace,
// dot-separated labels with no empty component.
func ParseNewsgroupName(s string) (NewsgroupName, error) {
	if s == "" {
		return "", fmt.Errorf("wire: empty newsgroup name")
	}
	if strings.ContainsAny(s, " \t\r\n") {
		return "", fmt.Errorf("wire: newsgroup name contains whitespace %q", s)
	}
	for _, part := range strings.Split(s, ".") {
		if part == "" {
			return "", fmt.Errorf("wire: newsgroup name has empty component %q", s)
		}
	}
	return NewsgroupName(s), nil
}

// IsLocal reports whether the group is under the reserved "local." prefix,
// which peers must never inject articles into via IHAVE (spec.md §3).
func (n NewsgroupName) IsLocal() bool {
	return strings.HasPrefix(string(n), "local.")
}

func (n NewsgroupName) String() string { return string(n) }

// ArticleNumber is a positive per-newsgroup article sequence number.
// The sentinel values LowestWhenEmpty/HighestWhenEmpty represent "no articles".
type ArticleNumber int64

const (
	LowestWhenEmpty  ArticleNumber = 0
	HighestWhenEmpty ArticleNumber = -1
)
